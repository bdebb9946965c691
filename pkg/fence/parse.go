// SPDX-License-Identifier: MPL-2.0

package fence

import (
	_ "embed"
	"fmt"
	"regexp"
	"strconv"

	"kurso/pkg/cueutil"

	"gopkg.in/yaml.v3"
)

// Stable machine-readable codes attached to validation findings. The lint
// layer reports these verbatim, so they are part of the tool's contract.
const (
	// CodeYAMLInvalid marks a body that is not parseable YAML.
	CodeYAMLInvalid = "fence_yaml_invalid"
	// CodeSchema marks a shape violation found by the CUE schema.
	CodeSchema = "fence_schema"
	// CodeQuizCorrectCount marks a quiz whose correct-option count breaks
	// the single/multiple-choice rules.
	CodeQuizCorrectCount = "quiz_correct_count"
	// CodeQuizDuplicateOption marks repeated option texts within a quiz.
	CodeQuizDuplicateOption = "quiz_duplicate_option"
	// CodeShellSyntax marks a command that does not parse as POSIX shell.
	CodeShellSyntax = "shell_syntax"
	// CodeCommandBuilderExample marks an example that does not start with
	// the base command.
	CodeCommandBuilderExample = "command_builder_example"
	// CodeCommandBuilderFlagDuplicate marks repeated flags within a
	// command-builder.
	CodeCommandBuilderFlagDuplicate = "command_builder_flag_duplicate"
	// CodeExerciseSolutionMissing marks an exercise without a solution that
	// is not declared solution_optional.
	CodeExerciseSolutionMissing = "exercise_solution_missing"
	// CodeExerciseHintEmpty marks a blank hint.
	CodeExerciseHintEmpty = "exercise_hint_empty"
	// CodeWalkthroughLineBounds marks an annotation outside the code
	// listing's line range.
	CodeWalkthroughLineBounds = "walkthrough_line_bounds"
	// CodeWalkthroughAnnotationOrder marks annotations that are unsorted or
	// repeat a line.
	CodeWalkthroughAnnotationOrder = "walkthrough_annotation_order"
)

//go:embed fence_schema.cue
var fenceSchema string

// schemaPath maps each fence type to its CUE definition.
var schemaPath = map[Type]string{
	TypeQuiz:           "#Quiz",
	TypeTerminal:       "#Terminal",
	TypeCommandBuilder: "#CommandBuilder",
	TypeExercise:       "#Exercise",
	TypeWalkthrough:    "#CodeWalkthrough",
}

// yamlLineRe extracts the line number yaml.v3 embeds in its error messages.
var yamlLineRe = regexp.MustCompile(`line (\d+)`)

// Parse decodes and validates a fence block body.
//
// The pipeline has three stages, matching the rendering contract:
//
//  1. YAML parse — failure yields a single CodeYAMLInvalid finding and a
//     nil Config (renderers fall back to a warning admonition).
//  2. CUE schema check — shape violations yield CodeSchema findings and a
//     nil Config.
//  3. Semantic validation — cross-field rules; the Config is returned even
//     when findings exist, since warning-level findings still render.
//
// Finding lines are relative to the body; callers offset by Block.BodyLine.
func Parse(b Block) (Config, ValidationErrors) {
	if valid, errs := b.Type.IsValid(); !valid {
		return nil, ValidationErrors{{
			Code:     CodeSchema,
			Message:  errs[0].Error(),
			Severity: SeverityError,
		}}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(b.Body, &doc); err != nil {
		return nil, ValidationErrors{{
			Code:     CodeYAMLInvalid,
			Message:  fmt.Sprintf("body is not valid YAML: %v", err),
			Severity: SeverityError,
			Line:     yamlErrorLine(err),
		}}
	}

	if schemaErrs := validateSchema(b); len(schemaErrs) > 0 {
		return nil, schemaErrs
	}

	cfg := newConfig(b.Type)
	if doc.Kind != 0 {
		if err := doc.Decode(cfg); err != nil {
			return nil, ValidationErrors{{
				Code:     CodeSchema,
				Message:  fmt.Sprintf("body does not decode as %s: %v", b.Type, err),
				Severity: SeverityError,
				Line:     yamlErrorLine(err),
			}}
		}
	}

	return cfg, cfg.Validate()
}

// validateSchema checks the body against the fence type's CUE definition and
// converts each violation into a CodeSchema finding.
func validateSchema(b Block) ValidationErrors {
	filename := b.Path
	if filename == "" {
		filename = "<fence>"
	}

	cueErrs := cueutil.ValidateYAML(fenceSchema, schemaPath[b.Type], b.Body, cueutil.WithFilename(filename))
	if len(cueErrs) == 0 {
		return nil
	}

	out := make(ValidationErrors, 0, len(cueErrs))
	for _, ce := range cueErrs {
		out = append(out, ValidationError{
			Code:     CodeSchema,
			Field:    ce.CUEPath,
			Message:  ce.Message,
			Severity: SeverityError,
			Line:     ce.Line,
		})
	}
	return out
}

// newConfig returns a zero config for the given fence type. The type must
// already be validated.
func newConfig(t Type) Config {
	switch t {
	case TypeQuiz:
		return &Quiz{}
	case TypeTerminal:
		return &Terminal{}
	case TypeCommandBuilder:
		return &CommandBuilder{}
	case TypeExercise:
		return &Exercise{}
	case TypeWalkthrough:
		return &Walkthrough{}
	default:
		return nil
	}
}

// yamlErrorLine pulls the 1-based line number out of a yaml.v3 error
// message, or 0 when none is present.
func yamlErrorLine(err error) int {
	if err == nil {
		return 0
	}
	m := yamlLineRe.FindStringSubmatch(err.Error())
	if m == nil {
		return 0
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return n
}
