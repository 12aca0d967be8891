package suggest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/recipe"
	"pantry-chef/internal/userstate"
)

func catalog(n int) []recipe.Recipe {
	recipes := make([]recipe.Recipe, n)
	for i := range recipes {
		recipes[i] = recipe.Recipe{
			ID:          fmt.Sprintf("r%d", i),
			Title:       fmt.Sprintf("Recipe %d", i),
			Cuisine:     "Test",
			Difficulty:  recipe.DifficultyEasy,
			CookingTime: 10, BaseServings: 2,
		}
	}
	return recipes
}

func TestColdStart(t *testing.T) {
	recipes := catalog(8)
	results := Suggest(recipes, userstate.Default())
	require.Len(t, results, 5)
	for i, res := range results {
		assert.Equal(t, recipes[i].ID, res.Recipe.ID)
		assert.Equal(t, 0.3, res.Score)
		assert.NotNil(t, res.MatchedIngredients)
		assert.NotNil(t, res.MissingIngredients)
		assert.NotNil(t, res.SubstitutionOptions)
	}

	assert.Len(t, Suggest(catalog(3), userstate.Default()), 3)
	assert.Empty(t, Suggest(nil, userstate.Default()))
}

func TestColdStartIgnoresPreferences(t *testing.T) {
	state := userstate.Default()
	state.Preferences.FavoriteCuisines = []string{"nowhere"}
	results := Suggest(catalog(6), state)
	assert.Len(t, results, 5)
}

func TestPersonalized(t *testing.T) {
	recipes := catalog(8)
	recipes[2].Cuisine = "Italian"
	recipes[3].DietaryTags = []recipe.DietaryTag{recipe.Vegan}
	recipes[5].Cuisine = "italian"

	now := time.Now()
	state := userstate.Default()
	state.Favorites = []userstate.Favorite{{RecipeID: "r1", SavedAt: now}, {RecipeID: "r6", SavedAt: now}}
	state.Ratings = []userstate.Rating{
		{RecipeID: "r6", Rating: 5, RatedAt: now},
		{RecipeID: "r7", Rating: 4, RatedAt: now},
		{RecipeID: "r0", Rating: 3, RatedAt: now},
	}
	state.Preferences.FavoriteCuisines = []string{"ITALIAN"}
	state.Preferences.DietaryPreferences = []recipe.DietaryTag{recipe.Vegan}

	results := Suggest(recipes, state)
	require.Len(t, results, 5)

	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.Recipe.ID
	}
	// r6 1.0, r1 0.6, r7 0.4, r2 0.2, r5 0.2 (r3 0.1 cut by the limit)
	assert.Equal(t, []string{"r6", "r1", "r7", "r2", "r5"}, ids)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
	assert.InDelta(t, 0.6, results[1].Score, 1e-9)
	assert.InDelta(t, 0.2, results[4].Score, 1e-9)
	for _, r := range results {
		assert.Empty(t, r.MatchedIngredients)
		assert.NotNil(t, r.MatchedIngredients)
	}
}

func TestScoreCappedButRankedByRawSum(t *testing.T) {
	recipes := catalog(3)
	recipes[0].Cuisine = "Thai"
	recipes[1].Cuisine = "Thai"
	recipes[1].DietaryTags = []recipe.DietaryTag{recipe.Vegan}

	state := userstate.Default()
	state.Favorites = []userstate.Favorite{{RecipeID: "r0"}, {RecipeID: "r1"}}
	state.Ratings = []userstate.Rating{{RecipeID: "r0", Rating: 5}, {RecipeID: "r1", Rating: 5}}
	state.Preferences.FavoriteCuisines = []string{"thai"}
	state.Preferences.DietaryPreferences = []recipe.DietaryTag{recipe.Vegan}

	results := Suggest(recipes, state)
	require.Len(t, results, 2)
	assert.Equal(t, "r1", results[0].Recipe.ID, "1.3 outranks 1.2")
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, 1.0, results[1].Score)
}

func TestNoPositiveScores(t *testing.T) {
	state := userstate.Default()
	state.Ratings = []userstate.Rating{{RecipeID: "r0", Rating: 2}}
	assert.Empty(t, Suggest(catalog(4), state))
}
