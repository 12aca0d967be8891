package recipe

import (
	"errors"
	"fmt"

	"pantry-chef/internal/apperrors"
)

// ErrNotFound is returned for an unknown recipe id.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "Recipe not found")

// ErrDuplicateID is returned when a catalog already holds a recipe id.
var ErrDuplicateID = errors.New("duplicate recipe id")

// Catalog is the ordered, read-only set of recipes the engines work over.
// Order is significant: it breaks score ties and picks cold-start suggestions.
type Catalog struct {
	recipes []Recipe
	byID    map[string]int
}

// NewCatalog validates recipes and indexes them by id.
func NewCatalog(recipes []Recipe) (*Catalog, error) {
	byID := make(map[string]int, len(recipes))
	for i, r := range recipes {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("invalid catalog entry %d: %w", i, err)
		}
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("%w %q", ErrDuplicateID, r.ID)
		}
		byID[r.ID] = i
	}
	return &Catalog{recipes: recipes, byID: byID}, nil
}

// All returns the recipes in catalog order. Callers must not modify the slice.
func (c *Catalog) All() []Recipe {
	return c.recipes
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// Get returns the recipe with id, or ErrNotFound.
func (c *Catalog) Get(id string) (Recipe, error) {
	i, ok := c.byID[id]
	if !ok {
		return Recipe{}, ErrNotFound
	}
	return c.recipes[i], nil
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.byID[id]
	return ok
}
