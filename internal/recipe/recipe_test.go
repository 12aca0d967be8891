package recipe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecipe(id string) Recipe {
	return Recipe{
		ID:           id,
		Title:        "Test " + id,
		Cuisine:      "Test",
		Difficulty:   DifficultyEasy,
		CookingTime:  10,
		BaseServings: 2,
		DietaryTags:  []DietaryTag{Vegan},
		Ingredients:  []Ingredient{{Name: "tomato", Quantity: 1, Unit: "pcs"}},
		Steps:        []string{"Eat."},
	}
}

func TestSeedCatalog(t *testing.T) {
	catalog, err := LoadCatalog("")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, catalog.Len(), 5)
	first := catalog.All()[0]
	assert.Equal(t, "tomato-basil-pasta", first.ID)

	got, err := catalog.Get("chickpea-curry")
	require.NoError(t, err)
	assert.Equal(t, "Coconut Chickpea Curry", got.Title)
	assert.True(t, catalog.Has("lentil-soup"))

	_, err = catalog.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewCatalog(t *testing.T) {
	t.Run("DuplicateID", func(t *testing.T) {
		_, err := NewCatalog([]Recipe{testRecipe("a"), testRecipe("a")})
		assert.Error(t, err)
	})

	t.Run("InvalidDifficulty", func(t *testing.T) {
		r := testRecipe("a")
		r.Difficulty = DifficultyAny
		_, err := NewCatalog([]Recipe{r})
		assert.Error(t, err)
	})

	t.Run("NonPositiveServings", func(t *testing.T) {
		r := testRecipe("a")
		r.BaseServings = 0
		_, err := NewCatalog([]Recipe{r})
		assert.Error(t, err)
	})

	t.Run("UnknownTag", func(t *testing.T) {
		r := testRecipe("a")
		r.DietaryTags = []DietaryTag{"paleo"}
		_, err := NewCatalog([]Recipe{r})
		assert.Error(t, err)
	})
}

func TestFilterDietaryTags(t *testing.T) {
	kept, dropped := FilterDietaryTags([]string{" Vegan ", "paleo", "GLUTEN-FREE", "vegan"})
	assert.Equal(t, []DietaryTag{Vegan, GlutenFree}, kept)
	assert.Equal(t, []string{"paleo"}, dropped)

	kept, _ = FilterDietaryTags(nil)
	assert.NotNil(t, kept)
	assert.Empty(t, kept)

	assert.Nil(t, SanitizeDietaryTags([]string{"carnivore"}))
	assert.Equal(t, []DietaryTag{Keto}, SanitizeDietaryTags([]string{"keto"}))
}

func TestHasTag(t *testing.T) {
	r := testRecipe("a")
	r.DietaryTags = []DietaryTag{"Vegan"}
	assert.True(t, r.HasTag(Vegan))
	assert.False(t, r.HasTag(Keto))
}

func TestFileRepository(t *testing.T) {
	dir := t.TempDir()

	t.Run("JSONRoundTrip", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.json")
		require.NoError(t, WriteFile(path, []Recipe{testRecipe("a"), testRecipe("b")}))

		catalog, err := LoadCatalog(path)
		require.NoError(t, err)
		assert.Equal(t, 2, catalog.Len())
		assert.Equal(t, "b", catalog.All()[1].ID)
	})

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(dir, "catalog.yaml")
		content := `- id: yaml-soup
  title: YAML Soup
  cuisine: Test
  difficulty: medium
  cookingTime: 20
  baseServings: 4
  dietaryTags: [vegetarian]
  ingredients:
    - name: carrot
      quantity: 2
      unit: pcs
  steps: [Simmer.]
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		catalog, err := LoadCatalog(path)
		require.NoError(t, err)
		r, err := catalog.Get("yaml-soup")
		require.NoError(t, err)
		assert.Equal(t, DifficultyMedium, r.Difficulty)
		assert.Equal(t, 2.0, r.Ingredients[0].Quantity)
	})

	t.Run("AppendStartsFromSeed", func(t *testing.T) {
		path := filepath.Join(dir, "imported", "catalog.json")
		require.NoError(t, Append(path, testRecipe("imported")))

		seed, err := Seed()
		require.NoError(t, err)
		recipes, err := ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, recipes, len(seed)+1)
		assert.Equal(t, "imported", recipes[len(recipes)-1].ID)
	})

	t.Run("AppendRejectsDuplicate", func(t *testing.T) {
		path := filepath.Join(dir, "dup.json")
		require.NoError(t, WriteFile(path, []Recipe{testRecipe("a")}))
		assert.ErrorIs(t, Append(path, testRecipe("a")), ErrDuplicateID)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadCatalog(filepath.Join(dir, "missing.json"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
