package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/matching"
)

func setupEnv(t *testing.T, backend string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("APP_ENV", "production")
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("PANTRY_STORE_BACKEND", backend)
	t.Setenv("PANTRY_STORE_PATH", filepath.Join(dir, "state"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCommand()
	cmd.Writer = &buf
	err := cmd.Run(context.Background(), append([]string{name, "--log-level", "error"}, args...))
	return buf.String(), err
}

func TestSearchCommand(t *testing.T) {
	setupEnv(t, "json")

	t.Run("Table", func(t *testing.T) {
		out, err := run(t, "search", "chickpeas,", "coconut milk")
		require.NoError(t, err)
		assert.Contains(t, out, "TITLE")
		assert.Contains(t, out, "Coconut Chickpea Curry")
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := run(t, "search", "--format", "json", "--limit", "1", "black beans, avocado")
		require.NoError(t, err)
		var results []matching.Result
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		assert.Equal(t, "black-bean-tacos", results[0].Recipe.ID)
	})

	t.Run("NoIngredients", func(t *testing.T) {
		_, err := run(t, "search")
		assert.Error(t, err)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := run(t, "search", "--format", "xml", "egg")
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestUserCommands(t *testing.T) {
	setupEnv(t, "json")

	out, err := run(t, "favorite", "beef-chili")
	require.NoError(t, err)
	assert.Equal(t, "Saved beef-chili (1 favorites)\n", out)

	out, err = run(t, "suggest")
	require.NoError(t, err)
	assert.Contains(t, out, "beef-chili")

	out, err = run(t, "rate", "lentil-soup", "3.5")
	require.NoError(t, err)
	assert.Equal(t, "Rated lentil-soup 3.5/5\n", out)

	out, err = run(t, "rate", "lentil-soup", "9")
	require.NoError(t, err)
	assert.Equal(t, "Rated lentil-soup 5/5\n", out)

	out, err = run(t, "fav", "beef-chili")
	require.NoError(t, err)
	assert.Equal(t, "Removed beef-chili (0 favorites)\n", out)

	_, err = run(t, "rate", "lentil-soup", "great")
	assert.ErrorContains(t, err, "invalid rating")

	_, err = run(t, "rate", "nope", "3")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestHealthAndPruneCommands(t *testing.T) {
	dir := setupEnv(t, "sqlite")
	t.Setenv("PANTRY_STORE_PATH", filepath.Join(dir, "pantry.db"))

	out, err := run(t, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "Recipes:")
	assert.Contains(t, out, "No recognition calls recorded.")

	out, err = run(t, "health", "--format", "json")
	require.NoError(t, err)
	var report healthReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 15, report.Recipes)
	assert.Empty(t, report.Usage)

	out, err = run(t, "prune", "--days", "7")
	require.NoError(t, err)
	assert.Equal(t, "Successfully removed 0 old recognition records.\n", out)
}

func TestClipCommand(t *testing.T) {
	dir := setupEnv(t, "json")
	page := `<html><head><script type="application/ld+json">
	{"@type":"Recipe","name":"Quick Slaw","recipeIngredient":["1 cabbage","2 carrots"],"recipeInstructions":"Shred.\nToss."}
	</script></head></html>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	catalog := filepath.Join(dir, "catalog.json")
	out, err := run(t, "clip", "--catalog", catalog, srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, `Imported "Quick Slaw" as quick-slaw`)
	assert.Contains(t, out, "PANTRY_CATALOG_PATH="+catalog)

	_, err = run(t, "clip", "--catalog", catalog, srv.URL)
	assert.ErrorContains(t, err, "duplicate recipe id")

	t.Setenv("PANTRY_CATALOG_PATH", catalog)
	out, err = run(t, "search", "cabbage", "carrots")
	require.NoError(t, err)
	assert.Contains(t, out, "quick-slaw")
}
