package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softwarepub/loam/internal/assemble"
	"github.com/softwarepub/loam/internal/config"
	"github.com/softwarepub/loam/internal/harvest"
	"github.com/softwarepub/loam/internal/merge"
)

// AssembleResult holds the assembled document and its conflict
// report.
type AssembleResult struct {
	Document  map[string]any `json:"document"`
	Conflicts []string       `json:"conflicts,omitempty"`
}

func (r AssembleResult) String() string {
	var b strings.Builder
	doc, err := json.MarshalIndent(r.Document, "", "  ")
	if err != nil {
		fmt.Fprintf(&b, "%v\n", r.Document)
	} else {
		b.Write(doc)
		b.WriteByte('\n')
	}
	for _, c := range r.Conflicts {
		fmt.Fprintf(&b, "conflict: %s\n", c)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewAssembleCommand creates the assemble command.
func NewAssembleCommand(rootOpts *RootOptions) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "assemble",
		Short: "Merge cached sources into one document",
		Long: `Load the cached accumulators of all configured sources and merge them
into a single CodeMeta document. Sources merge in configuration
order; the first source to claim a field wins it, and losing values
are reported as conflicts and kept in the document's provenance
graph.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(rootOpts, strict, cmd)
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when merge conflicts occur")
	return cmd
}

func runAssemble(opts *RootOptions, strict bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	result, err := assembleFromCache(opts, formatter, cmd)
	if err != nil {
		return err
	}

	if err := formatter.Success(result); err != nil {
		return err
	}
	if strict && len(result.Conflicts) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d merge conflicts", len(result.Conflicts)))
	}
	return nil
}

// assembleFromCache runs the shared load-and-merge pipeline used by
// both assemble and validate.
func assembleFromCache(opts *RootOptions, formatter *OutputFormatter, cmd *cobra.Command) (*AssembleResult, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	store, err := openCache(cfg)
	if err != nil {
		formatter.Error(ErrCodeCache, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "open cache", err)
	}
	defer store.Close()

	var accs []*harvest.Accumulator
	for _, name := range cfg.Sources {
		acc, err := store.Load(cmd.Context(), name)
		if err != nil {
			formatter.Error(ErrCodeCache, err.Error(), nil)
			return nil, WrapExitError(ExitCommandError, "load "+name, err)
		}
		if acc.Len() == 0 {
			formatter.VerboseLog("source %s has no cached data", name)
			continue
		}
		accs = append(accs, acc)
	}

	a := assemble.New(merge.Default(), cfg.Vocabularies)
	var errs []error
	for _, acc := range accs {
		errs = append(errs, a.Merge(acc)...)
	}

	result := &AssembleResult{}
	for _, err := range errs {
		if merge.IsConflict(err) {
			result.Conflicts = append(result.Conflicts, err.Error())
			continue
		}
		formatter.Error(ErrCodeAssemble, err.Error(), nil)
		return nil, WrapExitError(ExitFailure, "assemble", err)
	}

	result.Document, err = a.Finalize()
	if err != nil {
		formatter.Error(ErrCodeAssemble, err.Error(), nil)
		return nil, WrapExitError(ExitFailure, "assemble", err)
	}
	return result, nil
}
