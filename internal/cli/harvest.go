package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/softwarepub/loam/internal/config"
	"github.com/softwarepub/loam/internal/harvest"
	"github.com/softwarepub/loam/internal/harvester"
)

// HarvestResult summarizes one harvest run.
type HarvestResult struct {
	Harvested []SourceSummary `json:"harvested"`
	Skipped   []string        `json:"skipped,omitempty"`
}

// SourceSummary reports what one source contributed.
type SourceSummary struct {
	Source  string `json:"source"`
	Entries int    `json:"entries"`
}

func (r HarvestResult) String() string {
	var b strings.Builder
	for _, s := range r.Harvested {
		fmt.Fprintf(&b, "harvested %s: %d entries\n", s.Source, s.Entries)
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "skipped %s: no source file\n", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// NewHarvestCommand creates the harvest command.
func NewHarvestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "harvest [project-dir]",
		Short: "Run harvesters and cache their results",
		Long: `Run the configured harvesters against a project directory and write
each source's accumulated values to the harvest cache. Sources whose
files are missing are skipped.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runHarvest(rootOpts, dir, cmd)
		},
	}
	return cmd
}

func runHarvest(opts *RootOptions, dir string, cmd *cobra.Command) error {
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

	result := HarvestResult{}
	for _, name := range cfg.Sources {
		h, ok := harvester.ByName(name)
		if !ok {
			msg := fmt.Sprintf("unknown source %q", name)
			formatter.Error(ErrCodeHarvest, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}

		acc, err := h.Harvest(cmd.Context(), dir)
		if errors.Is(err, fs.ErrNotExist) {
			formatter.VerboseLog("skipping %s: %v", name, err)
			result.Skipped = append(result.Skipped, name)
			continue
		}
		if err != nil {
			formatter.Error(ErrCodeHarvest, err.Error(), nil)
			return WrapExitError(ExitFailure, "harvest "+name, err)
		}

		if err := store.Save(cmd.Context(), acc); err != nil {
			formatter.Error(ErrCodeCache, err.Error(), nil)
			return WrapExitError(ExitCommandError, "cache "+name, err)
		}
		result.Harvested = append(result.Harvested, SourceSummary{
			Source:  acc.Source(),
			Entries: acc.Len(),
		})
	}

	return formatter.Success(result)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func openCache(cfg *config.Config) (*harvest.Store, error) {
	if dir := filepath.Dir(cfg.Cache); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	return harvest.Open(cfg.Cache)
}
