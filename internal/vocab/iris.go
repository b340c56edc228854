package vocab

// CodeMetaContextURL is the published CodeMeta context document.
// It is the default context of every assembled document.
const CodeMetaContextURL = "https://doi.org/10.5063/schema/codemeta-2.0"

// SchemaOrg is the base IRI for schema.org terms.
const SchemaOrg = "http://schema.org/"

// Prov is the base IRI for W3C PROV-O terms.
const Prov = "http://www.w3.org/ns/prov#"

// Runtime is the namespace for values the merge runtime attaches to a
// document: the provenance graph and the replace/reject audit edges.
const Runtime = "https://schema.software-metadata.pub/loam-runtime/1.0/"

// Content is the namespace for harvested attributes that have no
// CodeMeta equivalent (branch names, build identifiers and the like).
const Content = "https://schema.software-metadata.pub/loam-content/1.0/"

// schema.org property IRIs used by the built-in merge strategies.
const (
	SchemaAuthor        = SchemaOrg + "author"
	SchemaEmail         = SchemaOrg + "email"
	SchemaName          = SchemaOrg + "name"
	SchemaValue         = SchemaOrg + "value"
	SchemaPropertyValue = SchemaOrg + "PropertyValue"
	SchemaSourceCode    = SchemaOrg + "SoftwareSourceCode"
	SchemaDate          = SchemaOrg + "Date"
	SchemaDateTime      = SchemaOrg + "DateTime"
	SchemaTime          = SchemaOrg + "Time"
)

// Runtime property IRIs. RuntimeGraph holds the provenance node graph,
// RuntimeReplace and RuntimeReject hold audit edges pointing at values
// that were discarded during a merge.
const (
	RuntimeGraph   = Runtime + "graph"
	RuntimeReplace = Runtime + "replace"
	RuntimeReject  = Runtime + "reject"
)
