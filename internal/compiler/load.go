package compiler

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadDocument reads the CUE files at paths, unifies them and compiles the
// result as one document.
func LoadDocument(paths []string, extra map[string]string) (*Document, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no plan files given")
	}

	ctx := cuecontext.New()
	var v cue.Value
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read plan file: %w", err)
		}
		file := ctx.CompileBytes(data, cue.Filename(path))
		if i == 0 {
			v = file
			continue
		}
		v = v.Unify(file)
	}

	if err := v.Validate(); err != nil {
		return nil, formatCUEError(err)
	}
	return CompileDocument(v, extra)
}
