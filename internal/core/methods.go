package core

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// DefaultCommunicationMethods returns the catalogue a fresh installation
// starts with.
func DefaultCommunicationMethods() []models.CommunicationMethod {
	return []models.CommunicationMethod{
		{ID: "1", Name: string(models.TypeLinkedInPost), Description: "Post content on LinkedIn company page", Sequence: 1, Mandatory: true},
		{ID: "2", Name: string(models.TypeLinkedInMessage), Description: "Direct message through LinkedIn", Sequence: 2, Mandatory: true},
		{ID: "3", Name: string(models.TypeEmail), Description: "Email communication", Sequence: 3, Mandatory: true},
		{ID: "4", Name: string(models.TypePhoneCall), Description: "Direct phone communication", Sequence: 4, Mandatory: false},
		{ID: "5", Name: string(models.TypeOther), Description: "Other forms of communication", Sequence: 5, Mandatory: false},
	}
}

// MethodCatalogue is the ordered list of outreach methods.
type MethodCatalogue interface {
	// Add appends a method after the current last sequence.
	Add(method models.CommunicationMethod) (models.CommunicationMethod, error)
	// Update replaces the method with the same id. A missing id is ignored.
	Update(method models.CommunicationMethod) error
	// Delete removes the method if present and reports whether it did.
	Delete(id string) bool
	// Reorder assigns sequences 1..n following ids.
	Reorder(ids []string) error
	// List returns every method ordered by sequence.
	List() []models.CommunicationMethod
	// Restore replaces the catalogue.
	Restore(methods []models.CommunicationMethod) error
}

type memMethodCatalogue struct {
	mu      sync.RWMutex
	methods []models.CommunicationMethod
	ids     IDGenerator
	events  EventLogger
}

// NewMethodCatalogue creates a catalogue seeded with DefaultCommunicationMethods.
func NewMethodCatalogue(ids IDGenerator, events EventLogger) MethodCatalogue {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &memMethodCatalogue{
		methods: DefaultCommunicationMethods(),
		ids:     ids,
		events:  events,
	}
}

func (c *memMethodCatalogue) Add(method models.CommunicationMethod) (models.CommunicationMethod, error) {
	if err := normalizeMethod(&method); err != nil {
		return models.CommunicationMethod{}, fmt.Errorf("adding communication method: %w", err)
	}

	c.mu.Lock()
	method.ID = c.ids.NewID()
	method.Sequence = 1
	for _, m := range c.methods {
		if m.Sequence >= method.Sequence {
			method.Sequence = m.Sequence + 1
		}
	}
	c.methods = append(c.methods, method)
	c.mu.Unlock()

	logEvent(c.events, "method.added", map[string]any{"method_id": method.ID, "name": method.Name})
	return method, nil
}

func (c *memMethodCatalogue) Update(method models.CommunicationMethod) error {
	if err := normalizeMethod(&method); err != nil {
		return fmt.Errorf("updating communication method %s: %w", method.ID, err)
	}

	c.mu.Lock()
	idx := c.indexOf(method.ID)
	if idx >= 0 {
		if method.Sequence < 1 {
			method.Sequence = c.methods[idx].Sequence
		}
		c.methods[idx] = method
	}
	c.mu.Unlock()

	if idx >= 0 {
		logEvent(c.events, "method.updated", map[string]any{"method_id": method.ID})
	}
	return nil
}

func (c *memMethodCatalogue) Delete(id string) bool {
	c.mu.Lock()
	idx := c.indexOf(id)
	if idx >= 0 {
		c.methods = slices.Delete(c.methods, idx, idx+1)
	}
	c.mu.Unlock()

	if idx < 0 {
		return false
	}
	logEvent(c.events, "method.deleted", map[string]any{"method_id": id})
	return true
}

func (c *memMethodCatalogue) Reorder(ids []string) error {
	if err := c.reorder(ids); err != nil {
		return err
	}
	logEvent(c.events, "method.reordered", map[string]any{"method_ids": ids})
	return nil
}

func (c *memMethodCatalogue) reorder(ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(ids))
	positions := make([]int, 0, len(ids))
	for _, id := range ids {
		idx := c.indexOf(id)
		if idx < 0 {
			return fmt.Errorf("reordering communication methods: %w", &ValidationError{Field: "id", Reason: fmt.Sprintf("unknown method %q", id)})
		}
		if seen[id] {
			return fmt.Errorf("reordering communication methods: %w", &ValidationError{Field: "id", Reason: fmt.Sprintf("method %q listed twice", id)})
		}
		seen[id] = true
		positions = append(positions, idx)
	}

	for i, idx := range positions {
		c.methods[idx].Sequence = i + 1
	}
	// Methods not named keep their relative order after the named ones.
	next := len(positions) + 1
	for _, m := range c.sortedLocked() {
		if seen[m.ID] {
			continue
		}
		c.methods[c.indexOf(m.ID)].Sequence = next
		next++
	}
	return nil
}

func (c *memMethodCatalogue) List() []models.CommunicationMethod {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.sortedLocked()
}

func (c *memMethodCatalogue) Restore(methods []models.CommunicationMethod) error {
	restored, err := normalizeMethods(methods)
	if err != nil {
		return fmt.Errorf("restoring communication methods: %w", err)
	}

	c.mu.Lock()
	c.methods = restored
	c.mu.Unlock()
	return nil
}

// sortedLocked must be called with c.mu held.
func (c *memMethodCatalogue) sortedLocked() []models.CommunicationMethod {
	out := slices.Clone(c.methods)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sequence < out[j].Sequence })
	if out == nil {
		out = []models.CommunicationMethod{}
	}
	return out
}

// indexOf must be called with c.mu held.
func (c *memMethodCatalogue) indexOf(id string) int {
	return slices.IndexFunc(c.methods, func(m models.CommunicationMethod) bool { return m.ID == id })
}

func normalizeMethod(m *models.CommunicationMethod) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	if m.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	return nil
}

// normalizeMethods validates a persisted catalogue, which must already carry
// unique non-empty ids.
func normalizeMethods(methods []models.CommunicationMethod) ([]models.CommunicationMethod, error) {
	out := make([]models.CommunicationMethod, 0, len(methods))
	seen := make(map[string]bool, len(methods))
	for _, m := range methods {
		if m.ID == "" {
			return nil, &ValidationError{Field: "method.id", Reason: "must not be empty"}
		}
		if seen[m.ID] {
			return nil, &ValidationError{Field: "method.id", Reason: fmt.Sprintf("duplicate id %q", m.ID)}
		}
		seen[m.ID] = true
		if err := normalizeMethod(&m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
