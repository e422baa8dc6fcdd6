package workload

import (
	"errors"
	"testing"

	"github.com/electwix/stmtpool/internal/stmtcache"
	"github.com/electwix/stmtpool/internal/testing/chaos"
)

var validWorkloads = []string{
	`exec "CREATE TABLE t (v INTEGER)"`,
	`prepare "INSERT INTO t (v) VALUES (?)" generated_keys return args (1) times 2`,
	`prepare "SELECT v FROM t" names ("v") -- trailing comment`,
	`call "SELECT 1" type forward_only concurrency read_only holdability hold`,
}

// Damaged workloads must either parse or fail with a positioned error.
func TestParseChaos(t *testing.T) {
	corruptor := chaos.NewCorruptor(42)

	for _, valid := range validWorkloads {
		for _, src := range corruptor.Corpus(valid, 200) {
			steps, err := Parse("chaos.stmt", src)
			if err == nil {
				for _, step := range steps {
					if step.Times < 1 {
						t.Fatalf("Parse(%q) produced step with Times %d", src, step.Times)
					}
				}
				continue
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) returned %T, want *ParseError: %v", src, err, err)
			}
			if perr.Line < 1 {
				t.Fatalf("Parse(%q) error has line %d", src, perr.Line)
			}
		}
	}
}

func FuzzParse(f *testing.F) {
	for _, src := range validWorkloads {
		f.Add(src)
	}
	f.Fuzz(func(t *testing.T, src string) {
		steps, err := Parse("fuzz.stmt", src)
		if err != nil {
			return
		}
		for _, step := range steps {
			if step.Exec && step.Key.Kind() != stmtcache.KindText {
				t.Fatalf("exec step with kind %s", step.Key.Kind())
			}
		}
	})
}
