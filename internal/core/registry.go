package core

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// UnknownCompanyName is displayed wherever a communication references a
// company that is no longer (or never was) registered.
const UnknownCompanyName = "Unknown Company"

// UnknownCompany returns the placeholder record for a dangling company id.
func UnknownCompany(id string) models.Company {
	return models.Company{
		ID:           id,
		Name:         UnknownCompanyName,
		Emails:       []string{},
		PhoneNumbers: []string{},
	}
}

// CompanyRegistry owns the set of tracked companies.
type CompanyRegistry interface {
	// Add validates the record, assigns a fresh id and stores it.
	Add(company models.Company) (models.Company, error)
	// Update replaces the record with the same id. A missing id is ignored.
	Update(company models.Company) error
	// Delete removes the record if present and reports whether it did.
	Delete(id string) bool
	// Get returns the record or the UnknownCompany placeholder.
	Get(id string) models.Company
	// Lookup returns the record and whether it exists.
	Lookup(id string) (models.Company, bool)
	// List returns all records in insertion order.
	List() []models.Company
	// Restore replaces the whole registry with the given records.
	Restore(companies []models.Company) error
}

type memCompanyRegistry struct {
	mu                 sync.RWMutex
	companies          []models.Company
	ids                IDGenerator
	events             EventLogger
	defaultPeriodicity int
}

// NewCompanyRegistry creates an empty in-memory CompanyRegistry. events may be
// nil. A defaultPeriodicity below 1 falls back to
// models.DefaultCommunicationPeriodicity.
func NewCompanyRegistry(ids IDGenerator, events EventLogger, defaultPeriodicity int) CompanyRegistry {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if defaultPeriodicity < 1 {
		defaultPeriodicity = models.DefaultCommunicationPeriodicity
	}
	return &memCompanyRegistry{
		companies:          []models.Company{},
		ids:                ids,
		events:             events,
		defaultPeriodicity: defaultPeriodicity,
	}
}

func (r *memCompanyRegistry) Add(company models.Company) (models.Company, error) {
	normalized, err := normalizeCompany(company, r.defaultPeriodicity)
	if err != nil {
		return models.Company{}, fmt.Errorf("adding company: %w", err)
	}

	r.mu.Lock()
	normalized.ID = r.ids.NewID()
	r.companies = append(r.companies, normalized)
	r.mu.Unlock()

	logEvent(r.events, "company.added", map[string]any{
		"company_id": normalized.ID,
		"name":       normalized.Name,
	})
	return cloneCompany(normalized), nil
}

func (r *memCompanyRegistry) Update(company models.Company) error {
	normalized, err := normalizeCompany(company, r.defaultPeriodicity)
	if err != nil {
		return fmt.Errorf("updating company %s: %w", company.ID, err)
	}

	r.mu.Lock()
	idx := r.indexOf(company.ID)
	if idx >= 0 {
		r.companies[idx] = normalized
	}
	r.mu.Unlock()

	if idx >= 0 {
		logEvent(r.events, "company.updated", map[string]any{"company_id": company.ID})
	}
	return nil
}

func (r *memCompanyRegistry) Delete(id string) bool {
	r.mu.Lock()
	idx := r.indexOf(id)
	if idx >= 0 {
		r.companies = slices.Delete(r.companies, idx, idx+1)
	}
	r.mu.Unlock()

	if idx < 0 {
		return false
	}
	logEvent(r.events, "company.deleted", map[string]any{"company_id": id})
	return true
}

func (r *memCompanyRegistry) Get(id string) models.Company {
	if c, ok := r.Lookup(id); ok {
		return c
	}
	return UnknownCompany(id)
}

func (r *memCompanyRegistry) Lookup(id string) (models.Company, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := r.indexOf(id)
	if idx < 0 {
		return models.Company{}, false
	}
	return cloneCompany(r.companies[idx]), true
}

func (r *memCompanyRegistry) List() []models.Company {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Company, len(r.companies))
	for i, c := range r.companies {
		out[i] = cloneCompany(c)
	}
	return out
}

func (r *memCompanyRegistry) Restore(companies []models.Company) error {
	restored, err := normalizeCompanies(companies, r.defaultPeriodicity)
	if err != nil {
		return fmt.Errorf("restoring companies: %w", err)
	}

	r.mu.Lock()
	r.companies = restored
	r.mu.Unlock()
	return nil
}

// indexOf must be called with r.mu held.
func (r *memCompanyRegistry) indexOf(id string) int {
	return slices.IndexFunc(r.companies, func(c models.Company) bool { return c.ID == id })
}

// normalizeCompanies validates a full set of persisted records, which must
// already carry unique non-empty ids.
func normalizeCompanies(companies []models.Company, defaultPeriodicity int) ([]models.Company, error) {
	out := make([]models.Company, 0, len(companies))
	seen := make(map[string]bool, len(companies))
	for _, c := range companies {
		if c.ID == "" {
			return nil, &ValidationError{Field: "company.id", Reason: "must not be empty"}
		}
		if seen[c.ID] {
			return nil, &ValidationError{Field: "company.id", Reason: fmt.Sprintf("duplicate id %q", c.ID)}
		}
		seen[c.ID] = true
		n, err := normalizeCompany(c, defaultPeriodicity)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func normalizeCompany(c models.Company, defaultPeriodicity int) (models.Company, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Location = strings.TrimSpace(c.Location)
	if c.Name == "" {
		return models.Company{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if c.Location == "" {
		return models.Company{}, &ValidationError{Field: "location", Reason: "must not be empty"}
	}
	if c.CommunicationPeriodicity < 0 {
		return models.Company{}, &ValidationError{Field: "communication_periodicity", Reason: "must be at least 1 day"}
	}
	if c.CommunicationPeriodicity == 0 {
		c.CommunicationPeriodicity = defaultPeriodicity
	}
	c.LinkedInProfile = strings.TrimSpace(c.LinkedInProfile)
	c.Emails = NormalizeList(c.Emails)
	c.PhoneNumbers = NormalizeList(c.PhoneNumbers)
	return c, nil
}

func cloneCompany(c models.Company) models.Company {
	c.Emails = slices.Clone(c.Emails)
	c.PhoneNumbers = slices.Clone(c.PhoneNumbers)
	return c
}
