// Package suggest ranks catalog recipes for the user from their favorites,
// ratings and preferences.
package suggest

import (
	"sort"
	"strings"

	"pantry-chef/internal/matching"
	"pantry-chef/internal/recipe"
	"pantry-chef/internal/userstate"
)

const (
	// Limit is the maximum number of suggestions.
	Limit = 5

	coldStartScore = 0.3
	favoriteBoost  = 0.6
	highRatingMin  = 4
	ratingBoost    = 0.4
	cuisineBoost   = 0.2
	dietaryBoost   = 0.1
)

// Suggest returns up to Limit recipes. With no favorites and no ratings the
// first Limit catalog recipes are returned with a flat score.
func Suggest(catalog []recipe.Recipe, state userstate.State) []matching.Result {
	if len(state.Favorites) == 0 && len(state.Ratings) == 0 {
		return coldStart(catalog)
	}

	favorites := make(map[string]bool, len(state.Favorites))
	for _, f := range state.Favorites {
		favorites[f.RecipeID] = true
	}
	ratings := make(map[string]float64, len(state.Ratings))
	for _, r := range state.Ratings {
		ratings[r.RecipeID] = r.Rating
	}
	cuisines := make(map[string]bool, len(state.Preferences.FavoriteCuisines))
	for _, c := range state.Preferences.FavoriteCuisines {
		cuisines[strings.ToLower(c)] = true
	}

	type scored struct {
		recipe recipe.Recipe
		score  float64
	}
	ranked := make([]scored, 0)
	for _, r := range catalog {
		score := 0.0
		if favorites[r.ID] {
			score += favoriteBoost
		}
		if ratings[r.ID] >= highRatingMin {
			score += ratingBoost
		}
		if cuisines[strings.ToLower(r.Cuisine)] {
			score += cuisineBoost
		}
		if hasAnyTag(r, state.Preferences.DietaryPreferences) {
			score += dietaryBoost
		}
		if score > 0 {
			ranked = append(ranked, scored{recipe: r, score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > Limit {
		ranked = ranked[:Limit]
	}

	// Boosts can sum past 1; ranking uses the raw sum, the reported score is capped.
	results := make([]matching.Result, len(ranked))
	for i, s := range ranked {
		results[i] = matching.NewResult(s.recipe, min(1, s.score))
	}
	return results
}

func coldStart(catalog []recipe.Recipe) []matching.Result {
	n := min(Limit, len(catalog))
	results := make([]matching.Result, n)
	for i := 0; i < n; i++ {
		results[i] = matching.NewResult(catalog[i], coldStartScore)
	}
	return results
}

func hasAnyTag(r recipe.Recipe, prefs []recipe.DietaryTag) bool {
	for _, p := range prefs {
		for _, t := range r.DietaryTags {
			if t == p {
				return true
			}
		}
	}
	return false
}
