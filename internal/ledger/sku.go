package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// SKU is a packaging recipe for a finished product.
type SKU struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	UnitWeightKg  float64 `json:"unit_weight_kg"`
	PackagingCost float64 `json:"packaging_cost"`
	Description   string  `json:"description"`
}

// Validate checks the fields a production run divides by or multiplies with.
func (s SKU) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return invalid("id", "is required")
	}
	if s.UnitWeightKg <= 0 {
		return invalid("unit_weight_kg", "must be greater than 0")
	}
	if s.PackagingCost < 0 {
		return invalid("packaging_cost", "must be greater than or equal to 0")
	}
	return nil
}

// Catalog is the active SKU registry. Runs keep their own copy of the SKU they used, so
// editing or removing an entry never rewrites history.
type Catalog struct {
	skus map[string]SKU
}

// NewCatalog returns a catalog holding skus.
func NewCatalog(skus ...SKU) (*Catalog, error) {
	c := &Catalog{skus: make(map[string]SKU, len(skus))}
	for _, s := range skus {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers a new SKU.
func (c *Catalog) Add(s SKU) error {
	s.ID = strings.TrimSpace(s.ID)
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := c.skus[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSKU, s.ID)
	}
	c.skus[s.ID] = s
	return nil
}

// Update replaces an existing SKU.
func (c *Catalog) Update(s SKU) error {
	s.ID = strings.TrimSpace(s.ID)
	if err := s.Validate(); err != nil {
		return err
	}
	if _, ok := c.skus[s.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrSKUNotFound, s.ID)
	}
	c.skus[s.ID] = s
	return nil
}

// Remove drops id from the catalog.
func (c *Catalog) Remove(id string) error {
	if _, ok := c.skus[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSKUNotFound, id)
	}
	delete(c.skus, id)
	return nil
}

// Get looks up an SKU by id.
func (c *Catalog) Get(id string) (SKU, bool) {
	s, ok := c.skus[id]
	return s, ok
}

// List returns all SKUs ordered by id.
func (c *Catalog) List() []SKU {
	out := make([]SKU, 0, len(c.skus))
	for _, s := range c.skus {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len reports the number of SKUs.
func (c *Catalog) Len() int {
	return len(c.skus)
}
