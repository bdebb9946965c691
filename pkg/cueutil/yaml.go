// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
)

// ValidateYAML checks a YAML document against the schema definition at
// schemaPath. Unlike ParseAndDecode it does not decode into a Go struct;
// it returns one ValidationError per violation so callers can surface each
// individually (e.g., as separate lint diagnostics).
//
// Line numbers in the returned errors are 1-based and relative to the YAML
// document, not to any enclosing file.
func ValidateYAML(schema string, schemaPath string, body []byte, opts ...Option) []*ValidationError {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	filename := options.filename
	if filename == "" {
		filename = "<input>"
	}

	if err := CheckFileSize(body, options.maxFileSize, filename); err != nil {
		return []*ValidationError{{FilePath: filename, Message: err.Error()}}
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(schema)
	if schemaValue.Err() != nil {
		return []*ValidationError{{
			FilePath: filename,
			Message:  fmt.Sprintf("internal error: failed to compile schema: %v", schemaValue.Err()),
		}}
	}

	schemaRoot := schemaValue.LookupPath(cue.ParsePath(schemaPath))
	if schemaRoot.Err() != nil {
		return []*ValidationError{{
			FilePath: filename,
			Message:  fmt.Sprintf("internal error: schema definition %s not found", schemaPath),
		}}
	}

	file, err := cueyaml.Extract(filename, body)
	if err != nil {
		return splitError(err, filename)
	}

	dataValue := ctx.BuildFile(file)
	if dataValue.Err() != nil {
		return splitError(dataValue.Err(), filename)
	}

	unified := schemaRoot.Unify(dataValue)
	var verr error
	if options.concrete {
		verr = unified.Validate(cue.Concrete(true))
	} else {
		verr = unified.Validate()
	}
	if verr != nil {
		return splitError(verr, filename)
	}

	return nil
}

// splitError breaks a (possibly aggregated) CUE error into one
// ValidationError per underlying violation, attaching the JSON path and the
// best-effort line number within the validated document.
func splitError(err error, filename string) []*ValidationError {
	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return []*ValidationError{{FilePath: filename, Message: err.Error()}}
	}

	out := make([]*ValidationError, 0, len(cueErrs))
	for _, e := range cueErrs {
		ve := &ValidationError{
			FilePath: filename,
			CUEPath:  formatPath(cueerrors.Path(e)),
			Message:  trimPathPrefix(e.Error(), formatPath(cueerrors.Path(e))),
		}

		// Prefer a position inside the validated document over schema
		// positions; unification errors typically carry both.
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == filename {
				ve.Line = pos.Line()
				break
			}
		}

		out = append(out, ve)
	}

	return out
}
