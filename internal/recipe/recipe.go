package recipe

import (
	"fmt"
	"strings"
)

// Difficulty is the effort level of a recipe.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	// DifficultyAny is only meaningful as a search filter.
	DifficultyAny Difficulty = "any"
)

// Valid reports whether d is a difficulty a recipe can carry.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name        string  `json:"name" yaml:"name"`
	Quantity    float64 `json:"quantity" yaml:"quantity"`
	Unit        string  `json:"unit" yaml:"unit"`
	Preparation string  `json:"preparation,omitempty" yaml:"preparation,omitempty"`
	Optional    bool    `json:"optional,omitempty" yaml:"optional,omitempty"`
}

// NutritionFacts are per-serving values as published with the recipe.
type NutritionFacts struct {
	Calories float64  `json:"calories" yaml:"calories"`
	Protein  float64  `json:"protein" yaml:"protein"`
	Carbs    float64  `json:"carbs" yaml:"carbs"`
	Fat      float64  `json:"fat" yaml:"fat"`
	Fiber    *float64 `json:"fiber,omitempty" yaml:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty" yaml:"sugar,omitempty"`
}

// SubstitutionSuggestion lists replacements for one ingredient.
type SubstitutionSuggestion struct {
	Ingredient  string   `json:"ingredient" yaml:"ingredient"`
	Substitutes []string `json:"substitutes" yaml:"substitutes"`
	Note        string   `json:"note,omitempty" yaml:"note,omitempty"`
}

// Recipe is a catalog entry. Recipes are never mutated after the catalog is loaded.
type Recipe struct {
	ID                      string                   `json:"id" yaml:"id"`
	Title                   string                   `json:"title" yaml:"title"`
	Description             string                   `json:"description" yaml:"description"`
	Cuisine                 string                   `json:"cuisine" yaml:"cuisine"`
	Difficulty              Difficulty               `json:"difficulty" yaml:"difficulty"`
	CookingTime             int                      `json:"cookingTime" yaml:"cookingTime"`
	BaseServings            int                      `json:"baseServings" yaml:"baseServings"`
	DietaryTags             []DietaryTag             `json:"dietaryTags" yaml:"dietaryTags"`
	Ingredients             []Ingredient             `json:"ingredients" yaml:"ingredients"`
	Steps                   []string                 `json:"steps" yaml:"steps"`
	Nutrition               NutritionFacts           `json:"nutrition" yaml:"nutrition"`
	Image                   string                   `json:"image,omitempty" yaml:"image,omitempty"`
	SubstitutionSuggestions []SubstitutionSuggestion `json:"substitutionSuggestions" yaml:"substitutionSuggestions"`
}

// HasTag reports whether the recipe carries tag, ignoring case.
func (r Recipe) HasTag(tag DietaryTag) bool {
	for _, t := range r.DietaryTags {
		if strings.EqualFold(string(t), string(tag)) {
			return true
		}
	}
	return false
}

// Validate checks the invariants a catalog entry must hold.
func (r Recipe) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("recipe has empty id")
	}
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("recipe %s: empty title", r.ID)
	}
	if !r.Difficulty.Valid() {
		return fmt.Errorf("recipe %s: invalid difficulty %q", r.ID, r.Difficulty)
	}
	if r.CookingTime <= 0 {
		return fmt.Errorf("recipe %s: cookingTime must be positive", r.ID)
	}
	if r.BaseServings <= 0 {
		return fmt.Errorf("recipe %s: baseServings must be positive", r.ID)
	}
	for _, tag := range r.DietaryTags {
		if !tag.Valid() {
			return fmt.Errorf("recipe %s: unknown dietary tag %q", r.ID, tag)
		}
	}
	return nil
}
