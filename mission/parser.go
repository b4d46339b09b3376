package mission

import (
	"fmt"
	"io"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

type Script struct {
	Statements []*Statement `parser:"@@*"`
}

type Statement struct {
	Pos lexer.Position

	Create *Create `parser:"  @@"`
	Rename *Rename `parser:"| @@"`
	Move   *Move   `parser:"| @@"`
	Show   *Show   `parser:"| @@"`
}

type Create struct {
	ID   int    `parser:"'rover' @Int"`
	Name string `parser:"@String"`
}

type Rename struct {
	ID   int    `parser:"'rename' @Int"`
	Name string `parser:"@String"`
}

// Move takes a bare word (MRM) or a quoted string, so "" can express the
// empty command sequence
type Move struct {
	ID       int    `parser:"'move' @Int"`
	Commands string `parser:"@(Ident | String)"`
}

type Show struct {
	ID int `parser:"'show' @Int"`
}

var missionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `[-+]?\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[Script](
	participle.Lexer(missionLexer),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
)

// Parse parses a mission script. name is used in error positions.
func Parse(name, src string) (*Script, error) {
	script, err := parser.ParseString(name, src)
	if err != nil {
		return nil, fmt.Errorf("parse mission: %w", err)
	}
	return script, nil
}

// ParseReader is Parse for an io.Reader
func ParseReader(name string, r io.Reader) (*Script, error) {
	script, err := parser.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parse mission: %w", err)
	}
	return script, nil
}
