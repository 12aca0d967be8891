package clipper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/recipe"
)

const recipePage = `<!doctype html>
<html>
<head>
	<meta property="og:image" content="https://example.com/og.jpg">
	<script type="application/ld+json">{"@context":"https://schema.org","@type":"WebSite","name":"Example"}</script>
	<script type="application/ld+json">
	{
		"@context": "https://schema.org",
		"@graph": [
			{"@type": "Organization", "name": "Example Kitchen"},
			{
				"@type": ["Recipe", "NewsArticle"],
				"name": "Crème Brûlée French Toast",
				"description": "Custardy &amp; <b>crisp</b> toast.",
				"recipeCuisine": ["French"],
				"prepTime": "PT15M",
				"cookTime": "PT30M",
				"recipeYield": ["6", "6 slices"],
				"suitableForDiet": "https://schema.org/VegetarianDiet",
				"keywords": "brunch, Nut-Free, sweet",
				"image": {"@type": "ImageObject", "url": "https://example.com/toast.jpg"},
				"recipeIngredient": [
					"1½ cups whole milk",
					"3 large eggs",
					"2 tablespoons brown sugar, packed",
					"6 slices brioche (optional)",
					"Salt"
				],
				"recipeInstructions": [
					{"@type": "HowToSection", "name": "Custard", "itemListElement": [
						{"@type": "HowToStep", "text": "Whisk milk, eggs and sugar."}
					]},
					{"@type": "HowToStep", "text": "Soak the bread."},
					"Fry until golden."
				],
				"nutrition": {"@type": "NutritionInformation", "calories": "320 kcal", "proteinContent": "11 g", "sugarContent": "14 g"}
			}
		]
	}
	</script>
</head>
<body><h1>Crème Brûlée French Toast</h1></body>
</html>`

func TestParseHTML(t *testing.T) {
	rec, err := ParseHTML(strings.NewReader(recipePage))
	require.NoError(t, err)

	assert.Equal(t, "creme-brulee-french-toast", rec.ID)
	assert.Equal(t, "Crème Brûlée French Toast", rec.Title)
	assert.Equal(t, "Custardy & crisp toast.", rec.Description)
	assert.Equal(t, "French", rec.Cuisine)
	assert.Equal(t, 45, rec.CookingTime)
	assert.Equal(t, recipe.DifficultyMedium, rec.Difficulty)
	assert.Equal(t, 6, rec.BaseServings)
	assert.Equal(t, "https://example.com/toast.jpg", rec.Image)
	assert.Equal(t, []recipe.DietaryTag{recipe.Vegetarian, recipe.NutFree}, rec.DietaryTags)
	assert.Equal(t, []string{"Whisk milk, eggs and sugar.", "Soak the bread.", "Fry until golden."}, rec.Steps)

	require.Len(t, rec.Ingredients, 5)
	assert.Equal(t, recipe.Ingredient{Name: "whole milk", Quantity: 1.5, Unit: "cup"}, rec.Ingredients[0])
	assert.Equal(t, recipe.Ingredient{Name: "large eggs", Quantity: 3}, rec.Ingredients[1])
	assert.Equal(t, recipe.Ingredient{Name: "brown sugar", Quantity: 2, Unit: "tbsp", Preparation: "packed"}, rec.Ingredients[2])
	assert.Equal(t, recipe.Ingredient{Name: "brioche", Quantity: 6, Unit: "slice", Optional: true}, rec.Ingredients[3])
	assert.Equal(t, recipe.Ingredient{Name: "salt"}, rec.Ingredients[4])

	assert.Equal(t, 320.0, rec.Nutrition.Calories)
	assert.Equal(t, 11.0, rec.Nutrition.Protein)
	require.NotNil(t, rec.Nutrition.Sugar)
	assert.Equal(t, 14.0, *rec.Nutrition.Sugar)
	assert.Nil(t, rec.Nutrition.Fiber)
}

func TestParseHTMLFallbacks(t *testing.T) {
	page := `<html><head>
	<meta property="og:image" content="https://example.com/og.jpg">
	<script type="application/ld+json">not json</script>
	<script type="application/ld+json">[{"@type":"Recipe","name":"Quick Slaw","recipeIngredient":["1 cabbage"],"recipeInstructions":"Shred.\nToss."}]</script>
	</head></html>`

	rec, err := ParseHTML(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "quick-slaw", rec.ID)
	assert.Equal(t, defaultCookingTime, rec.CookingTime)
	assert.Equal(t, recipe.DifficultyEasy, rec.Difficulty)
	assert.Equal(t, defaultServings, rec.BaseServings)
	assert.Equal(t, "International", rec.Cuisine)
	assert.Equal(t, "https://example.com/og.jpg", rec.Image)
	assert.Equal(t, []string{"Shred.", "Toss."}, rec.Steps)
	assert.Empty(t, rec.DietaryTags)
}

func TestParseHTMLNoRecipe(t *testing.T) {
	_, err := ParseHTML(strings.NewReader(`<html><body><p>Just a blog post</p></body></html>`))
	assert.ErrorIs(t, err, ErrNoRecipe)
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT30M", 30},
		{"PT1H15M", 75},
		{"P1DT2H", 1560},
		{"PT90S", 2},
		{"pt45m", 45},
		{"30 minutes", 0},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDuration(tt.in))
		})
	}
}

func TestDifficultyFor(t *testing.T) {
	assert.Equal(t, recipe.DifficultyEasy, difficultyFor(30))
	assert.Equal(t, recipe.DifficultyMedium, difficultyFor(31))
	assert.Equal(t, recipe.DifficultyMedium, difficultyFor(60))
	assert.Equal(t, recipe.DifficultyHard, difficultyFor(61))
}

func TestParseIngredient(t *testing.T) {
	tests := []struct {
		line string
		want recipe.Ingredient
	}{
		{"2 cloves garlic, minced", recipe.Ingredient{Name: "garlic", Quantity: 2, Unit: "clove", Preparation: "minced"}},
		{"1/2 tsp. salt", recipe.Ingredient{Name: "salt", Quantity: 0.5, Unit: "tsp"}},
		{"1 (14 oz) can chickpeas, drained", recipe.Ingredient{Name: "chickpeas", Quantity: 1, Unit: "can", Preparation: "drained"}},
		{"2-3 ripe tomatoes", recipe.Ingredient{Name: "ripe tomatoes", Quantity: 2}},
		{"¾ cup of rolled oats", recipe.Ingredient{Name: "rolled oats", Quantity: 0.75, Unit: "cup"}},
		{"1 tbsp honey, optional", recipe.Ingredient{Name: "honey", Quantity: 1, Unit: "tbsp", Optional: true}},
		{"Fresh Basil", recipe.Ingredient{Name: "fresh basil"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := ParseIngredient(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := ParseIngredient("  (optional) ")
	assert.False(t, ok)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "creme-brulee", Slugify("Crème Brûlée!"))
	assert.Equal(t, "jalapeno-cornbread", Slugify("  Jalapeño   Cornbread "))
	assert.Equal(t, "mom-s-best-chili-2", Slugify("Mom's Best Chili #2"))
}

func TestImport(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/toast" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(recipePage))
	}))
	defer ts.Close()

	ctx := context.Background()
	c := NewClipper(ts.Client())
	path := filepath.Join(t.TempDir(), "catalog.yaml")

	rec, err := c.Import(ctx, ts.URL+"/toast", path)
	require.NoError(t, err)
	assert.Equal(t, "creme-brulee-french-toast", rec.ID)

	catalog, err := recipe.LoadCatalog(path)
	require.NoError(t, err)
	assert.True(t, catalog.Has(rec.ID))
	assert.True(t, catalog.Has("shakshuka"), "seed recipes are kept")

	_, err = c.Import(ctx, ts.URL+"/toast", path)
	assert.ErrorIs(t, err, recipe.ErrDuplicateID)

	_, err = c.Import(ctx, ts.URL+"/missing", path)
	assert.ErrorContains(t, err, "status 404")
}
