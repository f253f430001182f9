package catalog

import "sort"

// Manager resolves event names to schemas and attribute definitions. All
// methods are read-only and safe for concurrent use; implementations must be
// fully initialized before the first lookup.
//
// GetAttributes and GetAttributeNames both describe event membership but
// deliberately resolve through different paths: GetAttributes goes through
// the attribute definition index, GetAttributeNames reads the names listed on
// the event itself. The validator consults both as independent guard rails
// against catalogs where the two drift apart (an event referencing an
// attribute with no definition, for example).
type Manager interface {
	// GetEvent resolves an event in the default catalog.
	GetEvent(name string) (*Event, bool)
	// GetEventInCatalog resolves an event in a specific catalog.
	GetEventInCatalog(name, catalogID string) (*Event, bool)
	// GetAttribute resolves an attribute definition by name.
	GetAttribute(name string) (*Attribute, bool)
	// GetAttributes returns the resolved definition for every attribute the
	// event references that has a definition.
	GetAttributes(eventName, catalogID string) map[string]Attribute
	// GetAttributeNames returns the attribute names the event lists, in
	// declaration order. Nil for an unknown event.
	GetAttributeNames(eventName, catalogID string) []string
	// GetRequiredContextAttributes returns the names of request-context
	// attributes the event requires, in declaration order.
	GetRequiredContextAttributes(eventName, catalogID string) []string
	// GetRequestContextAttributes returns every request-context attribute
	// definition in the catalog.
	GetRequestContextAttributes() map[string]Attribute
	// EventNames returns the name of every defined event across all
	// catalogs, sorted, without duplicates.
	EventNames() []string
}

type eventKey struct {
	name      string
	catalogID string
}

// MemoryManager is the immutable in-memory Manager used on the hot path.
// Build one from a loaded Catalog document; never mutate it afterwards.
type MemoryManager struct {
	events            map[eventKey]*Event
	byName            map[string]*Event
	attributes        map[string]*Attribute
	contextAttributes map[string]Attribute
}

// NewManager indexes a catalog document for lookup.
func NewManager(cat *Catalog) *MemoryManager {
	m := &MemoryManager{
		events:            make(map[eventKey]*Event, len(cat.Events)),
		byName:            make(map[string]*Event, len(cat.Events)),
		attributes:        make(map[string]*Attribute, len(cat.Attributes)),
		contextAttributes: make(map[string]Attribute),
	}
	for i := range cat.Attributes {
		attr := cat.Attributes[i]
		m.attributes[attr.Name] = &attr
		if attr.RequestContext {
			m.contextAttributes[attr.Name] = attr
		}
	}
	for i := range cat.Events {
		event := cat.Events[i]
		if event.CatalogID == "" {
			event.CatalogID = DefaultCatalogID
		}
		m.events[eventKey{event.Name, event.CatalogID}] = &event
		if _, taken := m.byName[event.Name]; !taken || event.CatalogID == DefaultCatalogID {
			m.byName[event.Name] = &event
		}
	}
	return m
}

func (m *MemoryManager) GetEvent(name string) (*Event, bool) {
	event, ok := m.byName[name]
	return event, ok
}

func (m *MemoryManager) GetEventInCatalog(name, catalogID string) (*Event, bool) {
	if catalogID == "" {
		return m.GetEvent(name)
	}
	event, ok := m.events[eventKey{name, catalogID}]
	return event, ok
}

func (m *MemoryManager) GetAttribute(name string) (*Attribute, bool) {
	attr, ok := m.attributes[name]
	return attr, ok
}

func (m *MemoryManager) GetAttributes(eventName, catalogID string) map[string]Attribute {
	event, ok := m.GetEventInCatalog(eventName, catalogID)
	if !ok {
		return nil
	}
	resolved := make(map[string]Attribute, len(event.Attributes))
	for _, ref := range event.Attributes {
		if attr, ok := m.attributes[ref.Name]; ok {
			resolved[ref.Name] = *attr
		}
	}
	return resolved
}

func (m *MemoryManager) GetAttributeNames(eventName, catalogID string) []string {
	event, ok := m.GetEventInCatalog(eventName, catalogID)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(event.Attributes))
	for _, ref := range event.Attributes {
		names = append(names, ref.Name)
	}
	return names
}

func (m *MemoryManager) GetRequiredContextAttributes(eventName, catalogID string) []string {
	event, ok := m.GetEventInCatalog(eventName, catalogID)
	if !ok {
		return nil
	}
	var names []string
	for _, ref := range event.Attributes {
		attr, ok := m.attributes[ref.Name]
		if !ok || !attr.RequestContext {
			continue
		}
		if attr.Required || ref.Required {
			names = append(names, ref.Name)
		}
	}
	return names
}

func (m *MemoryManager) GetRequestContextAttributes() map[string]Attribute {
	return m.contextAttributes
}

func (m *MemoryManager) EventNames() []string {
	seen := make(map[string]struct{}, len(m.events))
	names := make([]string, 0, len(m.events))
	for key := range m.events {
		if _, dup := seen[key.name]; dup {
			continue
		}
		seen[key.name] = struct{}{}
		names = append(names, key.name)
	}
	sort.Strings(names)
	return names
}
