package model

import "strings"

// Diamond is one inventory item. Column names follow the diamond_inventory
// table; the bun tags are ignored by the in-memory store.
type Diamond struct {
	ID          string  `json:"id" bun:"id,pk"`
	Carat       float64 `json:"carat" bun:"carat"`
	Cut         string  `json:"cut" bun:"cut"`
	Color       string  `json:"color" bun:"color"`
	Clarity     string  `json:"clarity" bun:"clarity"`
	Shape       string  `json:"shape" bun:"shape"`
	Price       float64 `json:"price" bun:"price"`
	Certificate string  `json:"certificate,omitempty" bun:"certificate"`
	InStock     bool    `json:"in_stock" bun:"in_stock"`
}

// Categorical attribute domains. Search criteria and extracted preferences
// are validated against these sets.
var (
	Colors    = []string{"D", "E", "F", "G", "H", "I", "J", "K"}
	Clarities = []string{"IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2"}
	Cuts      = []string{"Excellent", "Very Good", "Good", "Fair", "Poor"}
	Shapes    = []string{"Round", "Princess", "Cushion", "Emerald", "Oval", "Radiant", "Pear", "Marquise", "Heart"}
)

// Range bounds a numeric attribute. A nil bound leaves that side open.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// Contains reports whether v satisfies the set bounds.
func (r *Range) Contains(v float64) bool {
	if r == nil {
		return true
	}
	if r.Min != nil && v < *r.Min {
		return false
	}
	if r.Max != nil && v > *r.Max {
		return false
	}
	return true
}

// SearchCriteria is the fixed enumerated filter set for catalog queries:
// numeric ranges for carat and price, set membership for the categorical
// attributes. Any other key is a validation error upstream.
type SearchCriteria struct {
	Carat   *Range   `json:"carat,omitempty"`
	Price   *Range   `json:"price,omitempty"`
	Color   []string `json:"color,omitempty"`
	Clarity []string `json:"clarity,omitempty"`
	Cut     []string `json:"cut,omitempty"`
	Shape   []string `json:"shape,omitempty"`
}

// Empty reports whether no filter is set at all.
func (c *SearchCriteria) Empty() bool {
	return c == nil ||
		(c.Carat == nil && c.Price == nil &&
			len(c.Color) == 0 && len(c.Clarity) == 0 && len(c.Cut) == 0 && len(c.Shape) == 0)
}

// Matches reports whether d satisfies every set filter.
func (c *SearchCriteria) Matches(d *Diamond) bool {
	if c == nil {
		return true
	}
	if !c.Carat.Contains(d.Carat) || !c.Price.Contains(d.Price) {
		return false
	}
	if len(c.Color) > 0 && !containsFold(c.Color, d.Color) {
		return false
	}
	if len(c.Clarity) > 0 && !containsFold(c.Clarity, d.Clarity) {
		return false
	}
	if len(c.Cut) > 0 && !containsFold(c.Cut, d.Cut) {
		return false
	}
	if len(c.Shape) > 0 && !containsFold(c.Shape, d.Shape) {
		return false
	}
	return true
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
