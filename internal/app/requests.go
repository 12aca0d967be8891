package app

import "pantry-chef/internal/matching"

// FiltersRequest carries the optional hard filters of a search.
type FiltersRequest struct {
	Difficulty          string   `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard any"`
	MaxCookingTime      *int     `json:"maxCookingTime,omitempty" validate:"omitempty,min=1"`
	DietaryRestrictions []string `json:"dietaryRestrictions,omitempty"`
}

// SearchRequest is the body of a recipe search.
type SearchRequest struct {
	Ingredients        []string        `json:"ingredients" validate:"required,min=1,dive,notblank"`
	Filters            *FiltersRequest `json:"filters,omitempty"`
	DietaryPreferences []string        `json:"dietaryPreferences,omitempty"`
	Servings           *int            `json:"servings,omitempty" validate:"omitempty,min=1,max=16"`
}

// GenerateRequest is a search whose ingredients may come from image
// recognition. At least one of Ingredients and RecognizedIngredients must
// name an ingredient.
type GenerateRequest struct {
	Ingredients           []string        `json:"ingredients,omitempty" validate:"omitempty,dive,notblank"`
	RecognizedIngredients []string        `json:"recognizedIngredients,omitempty" validate:"omitempty,dive,notblank"`
	IncludeSuggestions    bool            `json:"includeSuggestions,omitempty"`
	Filters               *FiltersRequest `json:"filters,omitempty"`
	DietaryPreferences    []string        `json:"dietaryPreferences,omitempty"`
	Servings              *int            `json:"servings,omitempty" validate:"omitempty,min=1,max=16"`
}

// GenerateResponse holds the matches and, when asked for, suggestions.
// Suggestions is nil exactly when they were not requested.
type GenerateResponse struct {
	Matches     []matching.Result  `json:"matches"`
	Suggestions *[]matching.Result `json:"suggestions,omitempty"`
}

// RateRequest rates a recipe. Any number is accepted and clamped to 1..5.
type RateRequest struct {
	RecipeID string   `json:"recipeId" validate:"required"`
	Rating   *float64 `json:"rating" validate:"required"`
}

// PreferencesRequest is a partial preferences update; omitted fields keep
// their stored value.
type PreferencesRequest struct {
	DietaryPreferences  *[]string `json:"dietaryPreferences,omitempty"`
	DislikedIngredients *[]string `json:"dislikedIngredients,omitempty"`
	FavoriteCuisines    *[]string `json:"favoriteCuisines,omitempty"`
}
