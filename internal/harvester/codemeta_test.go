package harvester

import (
	"context"
	"testing"
)

const codemetaFixture = `{
	"@context": "https://doi.org/10.5063/schema/codemeta-2.0",
	"@type": "SoftwareSourceCode",
	"name": "loam",
	"version": "1.0.0",
	"author": [
		{"@type": "Person", "name": "Ada Lovelace", "email": "ada@example.org"}
	]
}`

func TestCodeMeta_Harvest(t *testing.T) {
	dir := writeFixture(t, "codemeta.json", codemetaFixture)

	acc, err := CodeMeta{}.Harvest(context.Background(), dir)
	if err != nil {
		t.Fatalf("Harvest() failed: %v", err)
	}
	if acc.Source() != "codemeta" {
		t.Errorf("source = %q", acc.Source())
	}

	got := map[string]any{}
	for _, e := range acc.Entries() {
		got[e.Key] = e.Value
	}
	checks := map[string]any{
		"@type":           "SoftwareSourceCode",
		"name":            "loam",
		"version":         "1.0.0",
		"author[0].name":  "Ada Lovelace",
		"author[0].email": "ada@example.org",
	}
	for key, want := range checks {
		if got[key] != want {
			t.Errorf("%s = %v, want %v", key, got[key], want)
		}
	}
	if _, ok := got["@context"]; ok {
		t.Error("@context leaked into entries")
	}
}

func TestCodeMeta_ContextTravelsAsFragment(t *testing.T) {
	dir := writeFixture(t, "codemeta.json", codemetaFixture)

	acc, err := CodeMeta{}.Harvest(context.Background(), dir)
	if err != nil {
		t.Fatalf("Harvest() failed: %v", err)
	}
	frags := acc.Fragments()
	if len(frags) != 1 || frags[0].URL != "https://doi.org/10.5063/schema/codemeta-2.0" {
		t.Errorf("fragments = %v", frags)
	}
}

func TestCodeMeta_AttrsCarryPath(t *testing.T) {
	dir := writeFixture(t, "codemeta.json", codemetaFixture)

	acc, err := CodeMeta{}.Harvest(context.Background(), dir)
	if err != nil {
		t.Fatalf("Harvest() failed: %v", err)
	}
	e := acc.Entries()[0]
	if e.Attrs[AttrPath] == "" {
		t.Errorf("no %s attr: %v", AttrPath, e.Attrs)
	}
}

func TestCodeMeta_RejectsBrokenJSON(t *testing.T) {
	dir := writeFixture(t, "codemeta.json", `{"name": `)

	if _, err := (CodeMeta{}).Harvest(context.Background(), dir); err == nil {
		t.Error("broken JSON accepted")
	}
}
