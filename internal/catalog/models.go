// Package catalog defines audit event schemas and resolves event names to
// their attribute definitions. Catalogs are externally authored, loaded once
// at startup, and immutable afterwards, so lookups need no locking.
package catalog

// DefaultCatalogID is assumed for events that do not name a catalog.
const DefaultCatalogID = "DEFAULT"

// Constraint is a named validation rule with an opaque argument, e.g.
// {Type: "maxLength", Value: "32"}. The constraint registry interprets the
// argument; the catalog only transports it.
type Constraint struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Attribute is a catalog-owned attribute definition. Events reference
// attributes by name and never copy them, so a definition change applies to
// every event using it.
type Attribute struct {
	Name string `yaml:"name"`
	// Required marks the attribute mandatory for every event referencing it.
	Required bool `yaml:"required"`
	// RequestContext marks the attribute as sourced from the ambient request
	// context rather than the caller-supplied attribute map.
	RequestContext bool         `yaml:"requestContext"`
	Constraints    []Constraint `yaml:"constraints"`
}

// EventAttribute is an event's reference to an attribute definition, with an
// optional per-event required override.
type EventAttribute struct {
	Name     string `yaml:"name"`
	Required bool   `yaml:"required"`
}

// Event is the schema for a named audit event: the ordered set of attribute
// references plus the catalog the event belongs to.
type Event struct {
	Name        string           `yaml:"name"`
	DisplayName string           `yaml:"displayName"`
	CatalogID   string           `yaml:"catalogId"`
	Attributes  []EventAttribute `yaml:"attributes"`
}

// Catalog is a loaded catalog document: attribute definitions plus the events
// that reference them.
type Catalog struct {
	Attributes []Attribute `yaml:"attributes"`
	Events     []Event     `yaml:"events"`
}
