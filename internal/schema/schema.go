// Package schema checks raw project documents against the CUE definition
// in project.cue before they are decoded.
//
// Structural checks live here; the business rules the persistence engine
// enforces (unique ids, positions on save) stay in ldl.Validate.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/ast"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/roach88/lumos/internal/ldl"
)

//go:embed project.cue
var projectSchema string

// Violation is one structural problem found in a document.
type Violation struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	if v.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", v.Line, v.Path, v.Message)
	}
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Source returns the embedded CUE schema.
func Source() string {
	return projectSchema
}

// Validate checks data against #Project and returns every violation found,
// sorted by line then path. A nil result means the document is well formed.
// Syntax errors are reported as a single violation at path "document".
func Validate(data []byte, format ldl.Format) []Violation {
	ctx := cuecontext.New()

	def := ctx.CompileString(projectSchema, cue.Filename("project.cue")).
		LookupPath(cue.ParsePath("#Project"))
	if err := def.Err(); err != nil {
		// The schema is embedded; a compile failure is a programming error.
		panic(fmt.Sprintf("schema: compile project.cue: %v", err))
	}

	value, err := build(ctx, data, format)
	if err != nil {
		return fromCUE(err, "document")
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fromCUE(err, "")
	}
	return nil
}

func build(ctx *cue.Context, data []byte, format ldl.Format) (cue.Value, error) {
	var expr ast.Expr
	switch format {
	case ldl.FormatYAML:
		f, err := cueyaml.Extract("document.yaml", data)
		if err != nil {
			return cue.Value{}, err
		}
		v := ctx.BuildFile(f)
		return v, v.Err()
	case ldl.FormatJSON, "":
		e, err := cuejson.Extract("document.json", data)
		if err != nil {
			return cue.Value{}, err
		}
		expr = e
	default:
		return cue.Value{}, fmt.Errorf("unknown document format %q", format)
	}
	v := ctx.BuildExpr(expr)
	return v, v.Err()
}

// fromCUE flattens a CUE error list. fallback replaces an empty path.
func fromCUE(err error, fallback string) []Violation {
	var out []Violation
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		v := Violation{
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
			Line:    line(e.Position()),
		}
		if v.Path == "" {
			v.Path = fallback
		}
		key := v.Path + "\x00" + v.Message
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		out = append(out, Violation{Path: fallback, Message: err.Error()})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Path < out[j].Path
	})
	return out
}

func line(pos token.Pos) int {
	if pos.IsValid() {
		return pos.Line()
	}
	return 0
}
