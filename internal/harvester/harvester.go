// Package harvester collects raw metadata from a project directory
// into per-source accumulators. Harvesters never write to the
// assembled document; they only stage candidate values, and the
// assembler decides what survives.
package harvester

import (
	"context"

	"github.com/softwarepub/loam/internal/harvest"
)

// AttrPath is the provenance attribute naming the file a value was
// read from.
const AttrPath = "local_path"

// Harvester reads one kind of metadata source from a project
// directory. Harvest returns an error wrapping fs.ErrNotExist when
// the source file is absent, so callers can skip missing sources.
type Harvester interface {
	Name() string
	Harvest(ctx context.Context, dir string) (*harvest.Accumulator, error)
}

// Builtin returns the built-in harvesters in their default priority
// order: earlier harvesters win contested fields during assembly.
func Builtin() []Harvester {
	return []Harvester{CFF{}, CodeMeta{}}
}

// ByName looks up a built-in harvester.
func ByName(name string) (Harvester, bool) {
	for _, h := range Builtin() {
		if h.Name() == name {
			return h, true
		}
	}
	return nil, false
}
