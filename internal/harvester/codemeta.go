package harvester

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/softwarepub/loam/internal/harvest"
	"github.com/softwarepub/loam/internal/ld"
)

// CodeMeta harvests a codemeta.json file from the project root. The
// file's own @context travels with the accumulator so prefixed terms
// keep their meaning through assembly.
type CodeMeta struct{}

// Name implements Harvester.
func (CodeMeta) Name() string { return "codemeta" }

// Harvest implements Harvester.
func (CodeMeta) Harvest(ctx context.Context, dir string) (*harvest.Accumulator, error) {
	file := filepath.Join(dir, "codemeta.json")
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("codemeta: %w", err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("codemeta: parse %s: %w", file, err)
	}

	acc := harvest.New("codemeta")
	if rawCtx, ok := data["@context"]; ok {
		fragments, err := ld.ParseContextValue(rawCtx)
		if err != nil {
			return nil, fmt.Errorf("codemeta: %s: %w", file, err)
		}
		acc.AddContext(fragments...)
		delete(data, "@context")
	}

	acc.AccumulateFrom(data, harvest.Attrs{AttrPath: file})
	return acc, nil
}
