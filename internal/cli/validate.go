package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/softwarepub/loam/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	if r.Valid {
		return "document is valid"
	}
	out := fmt.Sprintf("document has %d schema violations", len(r.Errors))
	for _, e := range r.Errors {
		out += "\n  " + e.Error()
	}
	return out
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [document.json]",
		Short: "Validate a document against the CodeMeta schema",
		Long: `Validate a compacted CodeMeta document. With a file argument the file
is validated as-is; without one the cached sources are assembled
first and the result is validated.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runValidate(rootOpts, file, cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	var doc map[string]any
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			formatter.Error(ErrCodeSchema, err.Error(), nil)
			return WrapExitError(ExitCommandError, "read document", err)
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			formatter.Error(ErrCodeSchema, err.Error(), nil)
			return WrapExitError(ExitCommandError, "parse document", err)
		}
	} else {
		result, err := assembleFromCache(opts, formatter, cmd)
		if err != nil {
			return err
		}
		doc = result.Document
	}

	validator, err := schema.NewValidator()
	if err != nil {
		formatter.Error(ErrCodeSchema, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load schema", err)
	}

	errs := validator.Validate(doc)
	result := ValidationResult{Valid: len(errs) == 0, Errors: errs}
	if err := formatter.Success(result); err != nil {
		return err
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d schema violations", len(errs)))
	}
	return nil
}
