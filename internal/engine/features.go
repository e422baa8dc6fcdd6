package engine

// Feature represents a statement capability that may vary between engines.
type Feature int

const (
	// FeaturePreparedStatements indicates support for server or driver side prepared statements.
	FeaturePreparedStatements Feature = iota

	// FeatureReturning indicates generated values can be read back, through a
	// RETURNING clause or driver-reported insert ids.
	FeatureReturning

	// FeatureCallableStatements indicates support for stored procedure calls.
	FeatureCallableStatements

	// FeatureScrollableCursors indicates cursors may move backwards.
	FeatureScrollableCursors

	// FeatureUpdatableCursors indicates rows may be updated through a cursor.
	FeatureUpdatableCursors

	// FeatureHoldableCursors indicates cursors may outlive a commit.
	FeatureHoldableCursors
)

var featureNames = map[Feature]string{
	FeaturePreparedStatements: "prepared_statements",
	FeatureReturning:          "returning",
	FeatureCallableStatements: "callable_statements",
	FeatureScrollableCursors:  "scrollable_cursors",
	FeatureUpdatableCursors:   "updatable_cursors",
	FeatureHoldableCursors:    "holdable_cursors",
}

// String returns the human-readable name of a feature.
func (f Feature) String() string {
	if name, ok := featureNames[f]; ok {
		return name
	}
	return "unknown"
}
