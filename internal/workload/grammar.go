package workload

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var workloadLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Whitespace", `[ \t\r\n]+`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Comment", `--[^\n]*`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"String", `"(?:[^"\\]|\\.)*"`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Int", `-?[0-9]+`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		//nolint:govet // Participle DSL uses unkeyed fields
		{"Symbol", `[(),]`, nil},
	},
})

var workloadParser = participle.MustBuild[fileNode](
	participle.Lexer(workloadLexer),
	participle.Elide("Whitespace", "Comment"),
)

//nolint:govet // Participle struct tags are DSL, not reflect tags
type fileNode struct {
	Steps []*stepNode `@@*`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type stepNode struct {
	Pos lexer.Position

	Verb string `@("exec" | "prepare" | "call")`
	SQL  string `@String`

	GeneratedKeys string      `( "generated_keys" @("return" | "none")`
	Columns       []int       `| "columns" "(" @Int ( "," @Int )* ")"`
	Names         []string    `| "names" "(" @String ( "," @String )* ")"`
	Cursor        *cursorNode `| @@ )?`

	Args  []*argNode `( "args" "(" ( @@ ( "," @@ )* )? ")" )?`
	Times *timesNode `@@?`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type cursorNode struct {
	Pos lexer.Position

	Type        string `"type" @("forward_only" | "scroll_insensitive" | "scroll_sensitive")`
	Concurrency string `"concurrency" @("read_only" | "updatable")`
	Holdability string `( "holdability" @("hold" | "close") )?`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type argNode struct {
	String *string `  @String`
	Int    *int64  `| @Int`
	Null   bool    `| @"null"`
}

//nolint:govet // Participle struct tags are DSL, not reflect tags
type timesNode struct {
	Pos lexer.Position

	Count int `"times" @Int`
}
