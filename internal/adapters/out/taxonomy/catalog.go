// Package taxonomy serves the billing taxonomy from memory.
package taxonomy

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/ports"
	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"
)

// Catalog implements ports.TaxonomyCatalog over a fixed entry list.
type Catalog struct {
	byCode  map[string]ports.TaxonomyEntry
	ordered []ports.TaxonomyEntry
}

// NewCatalog indexes entries. Codes must be unique and match their parts.
func NewCatalog(entries []ports.TaxonomyEntry) (*Catalog, error) {
	c := &Catalog{
		byCode:  make(map[string]ports.TaxonomyEntry, len(entries)),
		ordered: make([]ports.TaxonomyEntry, 0, len(entries)),
	}
	for _, e := range entries {
		if err := validateEntry(e); err != nil {
			return nil, err
		}
		if _, dup := c.byCode[e.Code]; dup {
			return nil, errs.NewValueIsInvalidErrorWithCause("taxonomy code", fmt.Errorf("%s is listed twice", e.Code))
		}
		c.byCode[e.Code] = e
		c.ordered = append(c.ordered, e)
	}
	sort.Slice(c.ordered, func(i, j int) bool { return c.ordered[i].Code < c.ordered[j].Code })
	return c, nil
}

// NewSeededCatalog returns the catalog of Seed.
func NewSeededCatalog() *Catalog {
	c, err := NewCatalog(Seed)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) Lookup(_ context.Context, code string) (ports.TaxonomyEntry, error) {
	e, ok := c.byCode[strings.TrimSpace(code)]
	if !ok {
		return ports.TaxonomyEntry{}, errs.NewObjectNotFoundError("taxonomy code", code)
	}
	return e, nil
}

func (c *Catalog) Entries(_ context.Context) ([]ports.TaxonomyEntry, error) {
	return append([]ports.TaxonomyEntry(nil), c.ordered...), nil
}

// Has reports whether code is in the catalog.
func (c *Catalog) Has(code string) bool {
	_, ok := c.byCode[code]
	return ok
}

func validateEntry(e ports.TaxonomyEntry) error {
	if e.Code == "" {
		return errs.NewValueIsRequiredError("taxonomy code")
	}
	want := e.Domain + "." + e.ServiceItem + "." + e.BillingComponent
	if e.Code != want {
		return errs.NewValueIsInvalidErrorWithCause("taxonomy code", fmt.Errorf("%s does not match %s", e.Code, want))
	}
	return nil
}
