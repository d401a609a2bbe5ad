package main

import (
	"github.com/cobra-lang/cobra/internal/ast"
	"github.com/pkg/errors"
)

// ParseSource turns source text into an AST this core can lower. Lexing
// and parsing are an external collaborator contract (spec.md §1), not
// part of this core, so this is a seam: a real front end replaces this
// variable (or links a package that does) rather than this repo growing
// a lexer. Left unset, it reports that plainly instead of pretending to
// parse.
var ParseSource = func(path, src string) (*ast.Program, error) {
	return nil, errors.Errorf("no source front end linked in; %s was not parsed (lexer/parser is a collaborator contract, not part of this core - see spec §1/§6)", path)
}
