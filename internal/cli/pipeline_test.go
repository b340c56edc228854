package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testCodemeta = `{
	"@context": "https://doi.org/10.5063/schema/codemeta-2.0",
	"@type": "SoftwareSourceCode",
	"name": "loam",
	"version": "1.0.0"
}`

const testCFF = `cff-version: 1.2.0
message: please cite
title: loam
license: Apache-2.0
authors:
  - given-names: Ada
    family-names: Lovelace
`

// setupProject writes source fixtures and a config pointing the
// cache into the same temp dir, returning the config path and
// project dir.
func setupProject(t *testing.T) (configPath, projectDir string) {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"codemeta.json": testCodemeta,
		"CITATION.cff":  testCFF,
		"loam.yaml":     "cache: " + filepath.Join(dir, "cache.db") + "\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return filepath.Join(dir, "loam.yaml"), dir
}

func execute(t *testing.T, args ...string) (stdout string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), err
}

func TestPipeline_HarvestAssembleValidate(t *testing.T) {
	configPath, dir := setupProject(t)

	out, err := execute(t, "--config", configPath, "harvest", dir)
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if !strings.Contains(out, "harvested cff") || !strings.Contains(out, "harvested codemeta") {
		t.Errorf("harvest output: %q", out)
	}

	out, err = execute(t, "--config", configPath, "--format", "json", "assemble")
	if err != nil {
		t.Fatalf("assemble failed: %v", err)
	}
	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Document  map[string]any `json:"document"`
			Conflicts []string       `json:"conflicts"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("assemble output is not JSON: %v\n%s", err, out)
	}
	if resp.Status != "ok" {
		t.Fatalf("assemble status = %q", resp.Status)
	}
	// Both sources agree on the name, so no conflict there; the cff
	// source owns license, codemeta owns version.
	doc := resp.Data.Document
	if doc["name"] != "loam" {
		t.Errorf("name = %v", doc["name"])
	}
	if doc["version"] != "1.0.0" {
		t.Errorf("version = %v", doc["version"])
	}
	if doc["license"] != "https://spdx.org/licenses/Apache-2.0" {
		t.Errorf("license = %v", doc["license"])
	}

	if _, err := execute(t, "--config", configPath, "validate"); err != nil {
		t.Fatalf("validate failed: %v", err)
	}
}

func TestPipeline_CleanRemovesCache(t *testing.T) {
	configPath, dir := setupProject(t)

	if _, err := execute(t, "--config", configPath, "harvest", dir); err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	out, err := execute(t, "--config", configPath, "clean")
	if err != nil {
		t.Fatalf("clean failed: %v", err)
	}
	if !strings.Contains(out, "cleaned") {
		t.Errorf("clean output: %q", out)
	}

	out, err = execute(t, "--config", configPath, "clean")
	if err != nil {
		t.Fatalf("second clean failed: %v", err)
	}
	if !strings.Contains(out, "nothing to clean") {
		t.Errorf("clean of empty cache: %q", out)
	}
}

func TestHarvest_SkipsMissingSources(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "loam.yaml")
	content := "cache: " + filepath.Join(dir, "cache.db") + "\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execute(t, "--config", configPath, "harvest", dir)
	if err != nil {
		t.Fatalf("harvest failed: %v", err)
	}
	if !strings.Contains(out, "skipped cff") || !strings.Contains(out, "skipped codemeta") {
		t.Errorf("harvest output: %q", out)
	}
}

func TestValidate_FileArgument(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.json")
	if err := os.WriteFile(file, []byte(testCodemeta), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	out, err := execute(t, "validate", file)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "document is valid") {
		t.Errorf("validate output: %q", out)
	}
}

func TestValidate_ReportsViolations(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "doc.json")
	broken := `{"@context": "https://doi.org/10.5063/schema/codemeta-2.0", "@type": "SoftwareSourceCode", "name": 5}`
	if err := os.WriteFile(file, []byte(broken), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	_, err := execute(t, "validate", file)
	if err == nil {
		t.Fatal("invalid document accepted")
	}
	if GetExitCode(err) != ExitFailure {
		t.Errorf("exit code = %d, want %d", GetExitCode(err), ExitFailure)
	}
}
