// Package config loads the project registry and process settings.
//
// The registry is CUE, validated against an embedded schema. Settings
// come from ARCADE_* environment variables; the CLI may override them
// with flags.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/arcade/internal/query"
	"github.com/roach88/arcade/internal/record"
)

//go:embed schema.cue
var schemaCUE string

// Error is a registry error with its CUE source position when known.
type Error struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type editionFields struct {
	Namespace string `json:"namespace"`
	Model     string `json:"model"`
	Name      string `json:"name"`
	Game      string `json:"game"`
	Priority  int    `json:"priority"`
}

// LoadRegistry reads a CUE registry file.
func LoadRegistry(path string) ([]record.Edition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return ParseRegistry(path, src)
}

// ParseRegistry validates src against the registry schema and returns
// its editions, highest priority first, then by project.
func ParseRegistry(filename string, src []byte) ([]record.Edition, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("registry schema: %w", err)
	}

	data := ctx.CompileBytes(src, cue.Filename(filename))
	if err := data.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v := schema.LookupPath(cue.ParsePath("#Registry")).Unify(data)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	iter, err := v.LookupPath(cue.ParsePath("edition")).Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	editions := []record.Edition{}
	for iter.Next() {
		var f editionFields
		if err := iter.Value().Decode(&f); err != nil {
			return nil, formatCUEError(err)
		}
		e := record.Edition{
			Project:   iter.Label(),
			Namespace: f.Namespace,
			Model:     f.Model,
			Name:      f.Name,
			Game:      f.Game,
			Priority:  f.Priority,
		}
		if err := e.Validate(); err != nil {
			return nil, &Error{Field: "edition." + e.Project, Message: err.Error(), Pos: iter.Value().Pos()}
		}
		editions = append(editions, e)
	}

	return query.Sort(editions,
		query.Desc(func(e record.Edition) int { return e.Priority }),
		query.Asc(func(e record.Edition) string { return e.Project }),
	), nil
}

// formatCUEError keeps the first error and its position.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &Error{Field: "cue", Message: first.Error(), Pos: positions[0]}
	}
	return err
}
