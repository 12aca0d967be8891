// Package userstate holds the single user's ratings, favorites and preferences
// and serializes changes to them.
package userstate

import (
	"context"
	"time"

	"pantry-chef/internal/recipe"
)

// Rating is the stored rating for one recipe.
type Rating struct {
	RecipeID string    `json:"recipeId"`
	Rating   float64   `json:"rating"`
	RatedAt  time.Time `json:"ratedAt"`
}

// Favorite marks a saved recipe.
type Favorite struct {
	RecipeID string    `json:"recipeId"`
	SavedAt  time.Time `json:"savedAt"`
}

type Preferences struct {
	DietaryPreferences  []recipe.DietaryTag `json:"dietaryPreferences"`
	DislikedIngredients []string            `json:"dislikedIngredients"`
	FavoriteCuisines    []string            `json:"favoriteCuisines"`
}

// PreferencesUpdate is a partial update; nil fields keep their current value.
type PreferencesUpdate struct {
	DietaryPreferences  *[]recipe.DietaryTag
	DislikedIngredients *[]string
	FavoriteCuisines    *[]string
}

// State is everything persisted for the user. Ratings hold at most one entry
// per recipe, in the order recipes were first rated.
type State struct {
	Ratings     []Rating    `json:"ratings"`
	Favorites   []Favorite  `json:"favorites"`
	Preferences Preferences `json:"preferences"`
}

// Default returns an empty state.
func Default() State {
	return State{
		Ratings:   []Rating{},
		Favorites: []Favorite{},
		Preferences: Preferences{
			DietaryPreferences:  []recipe.DietaryTag{},
			DislikedIngredients: []string{},
			FavoriteCuisines:    []string{},
		},
	}
}

// Normalized replaces nil lists with empty ones so the state always
// serializes with arrays.
func (s State) Normalized() State {
	if s.Ratings == nil {
		s.Ratings = []Rating{}
	}
	if s.Favorites == nil {
		s.Favorites = []Favorite{}
	}
	if s.Preferences.DietaryPreferences == nil {
		s.Preferences.DietaryPreferences = []recipe.DietaryTag{}
	}
	if s.Preferences.DislikedIngredients == nil {
		s.Preferences.DislikedIngredients = []string{}
	}
	if s.Preferences.FavoriteCuisines == nil {
		s.Preferences.FavoriteCuisines = []string{}
	}
	return s
}

// IsFavorite reports whether recipeID is saved.
func (s State) IsFavorite(recipeID string) bool {
	for _, f := range s.Favorites {
		if f.RecipeID == recipeID {
			return true
		}
	}
	return false
}

// RatingFor returns the rating for recipeID, if any.
func (s State) RatingFor(recipeID string) (Rating, bool) {
	for _, r := range s.Ratings {
		if r.RecipeID == recipeID {
			return r, true
		}
	}
	return Rating{}, false
}

// Store persists the state. Implementations recover from missing or corrupt
// data by returning (and writing) Default instead of an error.
type Store interface {
	Read(ctx context.Context) (State, error)
	Write(ctx context.Context, state State) error
}
