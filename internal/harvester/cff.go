package harvester

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/softwarepub/loam/internal/harvest"
)

const spdxLicenseBase = "https://spdx.org/licenses/"

// CFF harvests a CITATION.cff file from the project root and maps
// its fields onto CodeMeta terms.
type CFF struct{}

// Name implements Harvester.
func (CFF) Name() string { return "cff" }

// Harvest implements Harvester.
func (CFF) Harvest(ctx context.Context, dir string) (*harvest.Accumulator, error) {
	file := filepath.Join(dir, "CITATION.cff")
	raw, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("cff: %w", err)
	}

	var data map[string]any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("cff: parse %s: %w", file, err)
	}
	if _, ok := data["cff-version"]; !ok {
		return nil, fmt.Errorf("cff: %s has no cff-version", file)
	}

	acc := harvest.New("cff")
	acc.AccumulateFrom(convertCFF(data), harvest.Attrs{AttrPath: file})
	return acc, nil
}

// convertCFF maps the common CFF fields onto their CodeMeta terms.
// Fields without a CodeMeta equivalent (message, cff-version) are
// dropped.
func convertCFF(cff map[string]any) map[string]any {
	out := map[string]any{}

	if v, ok := cff["title"]; ok {
		out["name"] = v
	}
	if v, ok := cff["version"]; ok {
		out["version"] = stringify(v)
	}
	if v, ok := cff["abstract"]; ok {
		out["description"] = v
	}
	if v, ok := cff["keywords"]; ok {
		out["keywords"] = v
	}
	if v, ok := cff["license"].(string); ok {
		out["license"] = spdxLicenseBase + v
	}
	if v, ok := cff["repository-code"]; ok {
		out["codeRepository"] = v
	}
	if v, ok := cff["repository-artifact"]; ok {
		out["downloadUrl"] = v
	}
	if v, ok := cff["url"]; ok {
		out["url"] = v
	}
	if v, ok := cff["date-released"]; ok {
		out["datePublished"] = stringify(v)
	}
	if v, ok := cff["doi"].(string); ok {
		out["identifier"] = "https://doi.org/" + v
	}

	if authors, ok := cff["authors"].([]any); ok {
		var list []any
		for _, a := range authors {
			if m, ok := a.(map[string]any); ok {
				list = append(list, convertAgent(m))
			}
		}
		if len(list) > 0 {
			out["author"] = list
		}
	}

	return out
}

// convertAgent maps one CFF author entry to a schema:Person, or a
// schema:Organization when only an entity name is given.
func convertAgent(m map[string]any) map[string]any {
	if _, ok := m["given-names"]; !ok {
		if _, ok := m["family-names"]; !ok {
			if name, ok := m["name"]; ok {
				return map[string]any{"@type": "Organization", "name": name}
			}
		}
	}

	p := map[string]any{"@type": "Person"}
	if v, ok := m["given-names"]; ok {
		p["givenName"] = v
	}
	if v, ok := m["family-names"]; ok {
		p["familyName"] = v
	}
	if v, ok := m["email"]; ok {
		p["email"] = v
	}
	if v, ok := m["orcid"]; ok {
		p["@id"] = v
	}
	if v, ok := m["affiliation"].(string); ok {
		p["affiliation"] = map[string]any{"@type": "Organization", "name": v}
	}
	return p
}

// stringify renders CFF scalar values as strings. yaml.v3 decodes
// date-released as time.Time; CodeMeta wants the ISO date.
func stringify(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format("2006-01-02")
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
