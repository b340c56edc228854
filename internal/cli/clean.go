package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softwarepub/loam/internal/config"
)

// CleanResult lists the sources whose cached state was removed.
type CleanResult struct {
	Cleaned []string `json:"cleaned"`
}

func (r CleanResult) String() string {
	if len(r.Cleaned) == 0 {
		return "nothing to clean"
	}
	return "cleaned " + strings.Join(r.Cleaned, ", ")
}

// NewCleanCommand creates the clean command.
func NewCleanCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [source...]",
		Short: "Remove cached harvest data",
		Long: `Remove the cached state of the named sources, or of every cached
source when no names are given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runClean(opts *RootOptions, sources []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		formatter.Error(ErrCodeConfig, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load config", err)
	}

	store, err := openCache(cfg)
	if err != nil {
		formatter.Error(ErrCodeCache, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open cache", err)
	}
	defer store.Close()

	if len(sources) == 0 {
		sources, err = store.Sources(cmd.Context())
		if err != nil {
			formatter.Error(ErrCodeCache, err.Error(), nil)
			return WrapExitError(ExitCommandError, "list sources", err)
		}
	}

	result := CleanResult{}
	for _, name := range sources {
		if err := store.Clean(cmd.Context(), name); err != nil {
			formatter.Error(ErrCodeCache, err.Error(), nil)
			return WrapExitError(ExitCommandError, fmt.Sprintf("clean %s", name), err)
		}
		result.Cleaned = append(result.Cleaned, name)
	}

	return formatter.Success(result)
}
