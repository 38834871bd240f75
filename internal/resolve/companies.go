package resolve

import (
	"sort"
	"strings"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/normalize"
)

// DomainSuffix is appended to a company reference that has no exact match,
// so "Anadolu" finds "Anadolu Sigorta".
const DomainSuffix = "sigorta"

// minContainment keeps one- and two-letter references from matching
// every company that happens to contain them.
const minContainment = 3

type companyEntry struct {
	norm    string
	company model.Company
}

// Companies resolves company names against the reference set.
type Companies struct {
	byID    map[string]model.Company
	entries []companyEntry
}

// NewCompanies indexes companies sorted by normalized name, then id.
func NewCompanies(companies []model.Company) *Companies {
	c := &Companies{
		entries: make([]companyEntry, 0, len(companies)),
		byID:    make(map[string]model.Company, len(companies)),
	}
	for _, company := range companies {
		c.entries = append(c.entries, companyEntry{norm: normalize.Normalize(company.Name), company: company})
		c.byID[company.ID] = company
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].norm != c.entries[j].norm {
			return c.entries[i].norm < c.entries[j].norm
		}
		return c.entries[i].company.ID < c.entries[j].company.ID
	})
	return c
}

// Resolve finds the company named by text. It tries, in order, an exact
// normalized match, the text with DomainSuffix appended, and containment in
// either direction. The first hit in sorted order wins at each step.
func (c *Companies) Resolve(text string) (model.Company, error) {
	n := normalize.Normalize(text)
	if n == "" {
		return model.Company{}, notFound(KindCompany, text)
	}

	for _, e := range c.entries {
		if e.norm == n {
			return e.company, nil
		}
	}

	if !strings.HasSuffix(n, " "+DomainSuffix) {
		withSuffix := n + " " + DomainSuffix
		for _, e := range c.entries {
			if e.norm == withSuffix {
				return e.company, nil
			}
		}
	}

	for _, e := range c.entries {
		if e.norm == "" {
			continue
		}
		if (len(e.norm) >= minContainment && strings.Contains(n, e.norm)) ||
			(len(n) >= minContainment && strings.Contains(e.norm, n)) {
			return e.company, nil
		}
	}

	return model.Company{}, notFound(KindCompany, text)
}

// ByID returns the company with the given id.
func (c *Companies) ByID(id string) (model.Company, bool) {
	company, ok := c.byID[id]
	return company, ok
}

// Len returns the number of companies in the reference set.
func (c *Companies) Len() int {
	return len(c.entries)
}
