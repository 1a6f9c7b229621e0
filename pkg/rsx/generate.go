package rsx

import (
	"fmt"

	"github.com/vango-dev/rsx/internal/compiler"
	"github.com/vango-dev/rsx/internal/errors"
	"github.com/vango-dev/rsx/internal/parser"
)

// GenOptions controls the Go file produced by Generate.
type GenOptions = compiler.GenOptions

// Generate compiles a template to a gofmt'd Go file declaring a function
// that builds the template's tree with the node package. The returned
// list holds every diagnostic, including warnings on success.
func Generate(name string, src []byte, opts GenOptions) ([]byte, *errors.List, error) {
	res, err := parser.Parse(name, src)
	if err != nil {
		var list *errors.List
		if errors.As(err, &list) {
			return nil, list, err
		}
		return nil, &errors.List{}, err
	}

	compiler.Analyze(res)
	if res.Tainted() {
		return nil, res.Diagnostics, fmt.Errorf("generate %s: %w", name, ErrTainted)
	}

	out, err := compiler.Generate(res, opts)
	if err != nil {
		var re *errors.RsxError
		if errors.As(err, &re) {
			res.Diagnostics.Add(re)
			return nil, res.Diagnostics, res.Diagnostics
		}
		return nil, res.Diagnostics, err
	}
	return out, res.Diagnostics, nil
}
