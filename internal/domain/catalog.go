package domain

import "fmt"

// FilterAttribute describes one metadata field exposed to the natural-language
// query translator.
type FilterAttribute struct {
	Name        string // attribute name as documented to the translator
	Alias       string // FT index field alias the condition compiles to
	Type        string // "string" or "boolean"
	Description string
}

// FieldIsCurrent is the currency flag attribute. It is force-applied as true
// on every retrieval and never offered to the translator.
const FieldIsCurrent = "is_current"

// FilterCatalog is the static attribute schema for structured-filter
// translation. The set is fixed; ValidateCatalog checks it at startup.
var FilterCatalog = []FilterAttribute{
	{
		Name:        "section_header",
		Alias:       "section_header",
		Type:        "string",
		Description: "The specific header or title of the section (e.g., Introduction, Methodology)",
	},
	{
		Name:        "insight_types",
		Alias:       "insight_types",
		Type:        "string",
		Description: "The category of insight: Risk, Deadline, Decision, or Recommendation",
	},
	{
		Name:        "parent_doc_id",
		Alias:       "parent_doc_id",
		Type:        "string",
		Description: "The unique ID of the document to filter by a specific file",
	},
	{
		Name:        "entities.name",
		Alias:       "entities_name",
		Type:        "string",
		Description: "Names of specific entities mentioned (e.g., 'NLP', 'Researchers')",
	},
	{
		Name:        "entities.type",
		Alias:       "entities_type",
		Type:        "string",
		Description: "The category of the entity (e.g., 'Stakeholder', 'Legal Reference')",
	},
	{
		Name:        "relationships.relation",
		Alias:       "relationships_relation",
		Type:        "string",
		Description: "The type of connection detected (e.g., 'aims to address', 'supports')",
	},
}

// CatalogAttribute looks up a catalog entry by its documented name.
func CatalogAttribute(name string) (FilterAttribute, bool) {
	for _, a := range FilterCatalog {
		if a.Name == name {
			return a, true
		}
	}
	return FilterAttribute{}, false
}

// ValidateCatalog checks the static catalog for duplicates and missing fields.
// Called once from the composition root.
func ValidateCatalog() error {
	names := make(map[string]struct{}, len(FilterCatalog))
	aliases := make(map[string]struct{}, len(FilterCatalog))
	for _, a := range FilterCatalog {
		if a.Name == "" || a.Alias == "" || a.Description == "" {
			return fmt.Errorf("catalog attribute %+v is incomplete", a)
		}
		if a.Type != "string" {
			return fmt.Errorf("catalog attribute %q has unsupported type %q", a.Name, a.Type)
		}
		if a.Name == FieldIsCurrent {
			return fmt.Errorf("catalog must not expose %q to the translator", FieldIsCurrent)
		}
		if _, dup := names[a.Name]; dup {
			return fmt.Errorf("duplicate catalog attribute %q", a.Name)
		}
		if _, dup := aliases[a.Alias]; dup {
			return fmt.Errorf("duplicate catalog alias %q", a.Alias)
		}
		names[a.Name] = struct{}{}
		aliases[a.Alias] = struct{}{}
	}
	return nil
}
