package harvester

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestBuiltin_Order(t *testing.T) {
	hs := Builtin()
	if len(hs) != 2 {
		t.Fatalf("expected 2 built-in harvesters, got %d", len(hs))
	}
	if hs[0].Name() != "cff" || hs[1].Name() != "codemeta" {
		t.Errorf("unexpected order: %s, %s", hs[0].Name(), hs[1].Name())
	}
}

func TestByName(t *testing.T) {
	if _, ok := ByName("codemeta"); !ok {
		t.Error("codemeta harvester not found")
	}
	if _, ok := ByName("nope"); ok {
		t.Error("unknown harvester found")
	}
}

func TestHarvest_MissingFileIsNotExist(t *testing.T) {
	dir := t.TempDir()
	for _, h := range Builtin() {
		_, err := h.Harvest(context.Background(), dir)
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("%s: error does not wrap fs.ErrNotExist: %v", h.Name(), err)
		}
	}
}

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return dir
}
