package vocab

// SchemaPrefix is the canonical prefix table entry for schema.org.
var SchemaPrefix = map[string]string{"schema": SchemaOrg}

// ProvPrefix maps the prov prefix for provenance nodes.
var ProvPrefix = map[string]string{"prov": Prov}

// RuntimePrefix maps the loam-rt prefix for runtime audit properties.
var RuntimePrefix = map[string]string{"loam-rt": Runtime}

// ContentPrefix maps the loam prefix for non-CodeMeta harvested data.
var ContentPrefix = map[string]string{"loam": Content}

// Bundled resolves remote context URLs that ship with the binary.
// The merge hot path must not perform network I/O, so the CodeMeta
// context is inlined here: it sets schema.org as the default
// vocabulary, which is how CodeMeta terms expand.
var Bundled = map[string]map[string]string{
	CodeMetaContextURL: {
		"":         SchemaOrg,
		"schema":   SchemaOrg,
		"codemeta": CodeMetaContextURL + "/",
	},
}

// BaseTerms is the prefix table for a freshly created document:
// CodeMeta as default vocabulary plus the schema/loam prefixes.
func BaseTerms() map[string]string {
	terms := map[string]string{
		"":     SchemaOrg,
		"loam": Content,
	}
	for k, v := range SchemaPrefix {
		terms[k] = v
	}
	return terms
}

// ProvTerms is the prefix table installed when the runtime starts
// recording provenance edges on a document.
func ProvTerms() map[string]string {
	terms := map[string]string{}
	for _, t := range []map[string]string{SchemaPrefix, ProvPrefix, RuntimePrefix} {
		for k, v := range t {
			terms[k] = v
		}
	}
	return terms
}
