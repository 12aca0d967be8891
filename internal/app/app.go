package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"pantry-chef/internal/apperrors"
	"pantry-chef/internal/config"
	"pantry-chef/internal/logging"
	"pantry-chef/internal/matching"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recipe"
	"pantry-chef/internal/recognition"
	"pantry-chef/internal/suggest"
	"pantry-chef/internal/userstate"
	"pantry-chef/internal/validation"
)

// ErrNoIngredients is returned by Generate when neither typed nor recognized
// ingredients were supplied.
var ErrNoIngredients = apperrors.New(apperrors.CodeValidation, "No ingredients provided")

// App holds the application's dependencies.
type App struct {
	catalog    *recipe.Catalog
	users      *userstate.Service
	classifier recognition.Classifier
	calls      *metrics.Store
	cfg        *config.Config
}

// NewApp creates and initializes a new App instance. calls may be nil when
// recognition calls are not persisted.
func NewApp(
	catalog *recipe.Catalog,
	users *userstate.Service,
	classifier recognition.Classifier,
	calls *metrics.Store,
	cfg *config.Config,
) *App {
	return &App{
		catalog:    catalog,
		users:      users,
		classifier: classifier,
		calls:      calls,
		cfg:        cfg,
	}
}

// Config returns the configuration the app was built with.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Recipes returns the full catalog in order.
func (a *App) Recipes() []recipe.Recipe {
	return a.catalog.All()
}

// Recipe returns one recipe or a NOT_FOUND error.
func (a *App) Recipe(id string) (recipe.Recipe, error) {
	return a.catalog.Get(id)
}

// Search validates req and scores the catalog against it.
func (a *App) Search(ctx context.Context, req SearchRequest) ([]matching.Result, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	q := buildQuery(ctx, req.Ingredients, req.Filters, req.DietaryPreferences, req.Servings)
	results := matching.Search(a.catalog.All(), q)
	metrics.SearchResults.WithLabelValues("search").Observe(float64(len(results)))
	return results, nil
}

// Generate searches with the union of typed and recognized ingredients and
// optionally attaches personalized suggestions.
func (a *App) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	if err := validation.Validate(req); err != nil {
		return GenerateResponse{}, err
	}

	ingredients := union(req.Ingredients, req.RecognizedIngredients)
	if len(ingredients) == 0 {
		return GenerateResponse{}, ErrNoIngredients
	}

	q := buildQuery(ctx, ingredients, req.Filters, req.DietaryPreferences, req.Servings)
	resp := GenerateResponse{Matches: matching.Search(a.catalog.All(), q)}
	metrics.SearchResults.WithLabelValues("generate").Observe(float64(len(resp.Matches)))

	if req.IncludeSuggestions {
		suggestions, err := a.Suggestions(ctx)
		if err != nil {
			return GenerateResponse{}, err
		}
		resp.Suggestions = &suggestions
	}
	return resp, nil
}

// Suggestions ranks the catalog for the stored user state.
func (a *App) Suggestions(ctx context.Context) ([]matching.Result, error) {
	state, err := a.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	return suggest.Suggest(a.catalog.All(), state), nil
}

// AnalyzeImage labels the ingredients visible in image.
func (a *App) AnalyzeImage(ctx context.Context, image []byte) ([]recognition.Prediction, error) {
	if len(image) == 0 {
		return nil, apperrors.New(apperrors.CodeValidation, "Image file is required")
	}

	provider, model := a.recognitionModel()
	start := time.Now()
	preds, err := a.classifier.Classify(ctx, image)
	elapsed := time.Since(start)

	outcome := "success"
	switch {
	case errors.Is(err, recognition.ErrNotConfigured):
		outcome = "not_configured"
	case errors.Is(err, recognition.ErrUpstream):
		outcome = "upstream_error"
	case err != nil:
		outcome = "error"
	}
	metrics.RecognitionRequests.WithLabelValues(provider, outcome).Inc()
	if outcome != "not_configured" {
		metrics.RecognitionDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
	}
	a.recordCall(ctx, metrics.RecognitionCall{
		Provider:    provider,
		Model:       model,
		Outcome:     outcome,
		Predictions: len(preds),
		TopLabel:    topLabel(preds),
		LatencyMS:   elapsed.Milliseconds(),
	})

	if err != nil {
		return nil, err
	}
	if preds == nil {
		preds = []recognition.Prediction{}
	}
	return preds, nil
}

// RecognitionUsage reports persisted recognition calls per day. It returns an
// empty list when calls are not persisted.
func (a *App) RecognitionUsage(ctx context.Context, days int) ([]metrics.DailyUsage, error) {
	if a.calls == nil {
		return []metrics.DailyUsage{}, nil
	}
	return a.calls.GetDailyUsage(ctx, days)
}

// PruneRecognitionCalls deletes persisted calls older than days and returns
// how many were removed.
func (a *App) PruneRecognitionCalls(ctx context.Context, days int) (int64, error) {
	if a.calls == nil {
		return 0, nil
	}
	return a.calls.Cleanup(ctx, days)
}

func (a *App) recordCall(ctx context.Context, call metrics.RecognitionCall) {
	if a.calls == nil {
		return
	}
	if err := a.calls.Record(context.WithoutCancel(ctx), call); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Failed to record recognition call")
	}
}

func (a *App) recognitionModel() (string, string) {
	if a.cfg == nil {
		return "unknown", "unknown"
	}
	rc := a.cfg.Recognition
	if rc.Provider == config.ProviderGemini {
		return rc.Provider, rc.GeminiModel
	}
	return rc.Provider, rc.HFModel
}

func topLabel(preds []recognition.Prediction) string {
	if len(preds) == 0 {
		return ""
	}
	return preds[0].Label
}

// ToggleFavorite saves or unsaves a catalog recipe.
func (a *App) ToggleFavorite(ctx context.Context, recipeID string) ([]userstate.Favorite, error) {
	return a.users.ToggleFavorite(ctx, recipeID)
}

// Rate stores a rating for a catalog recipe, clamped to 1..5.
func (a *App) Rate(ctx context.Context, req RateRequest) ([]userstate.Rating, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}
	if math.IsNaN(*req.Rating) {
		return nil, apperrors.New(apperrors.CodeValidation, "rating must be a number")
	}
	return a.users.Rate(ctx, req.RecipeID, *req.Rating)
}

// Favorites returns the saved recipes in save order.
func (a *App) Favorites(ctx context.Context) ([]userstate.Favorite, error) {
	state, err := a.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	return state.Favorites, nil
}

// Ratings returns every stored rating.
func (a *App) Ratings(ctx context.Context) ([]userstate.Rating, error) {
	state, err := a.users.Get(ctx)
	if err != nil {
		return nil, err
	}
	return state.Ratings, nil
}

// Preferences returns the stored preferences.
func (a *App) Preferences(ctx context.Context) (userstate.Preferences, error) {
	state, err := a.users.Get(ctx)
	if err != nil {
		return userstate.Preferences{}, err
	}
	return state.Preferences, nil
}

// UpdatePreferences merges req into the stored preferences.
func (a *App) UpdatePreferences(ctx context.Context, req PreferencesRequest) (userstate.Preferences, error) {
	var update userstate.PreferencesUpdate
	if req.DietaryPreferences != nil {
		tags, dropped := recipe.FilterDietaryTags(*req.DietaryPreferences)
		logDropped(ctx, "dietaryPreferences", dropped)
		update.DietaryPreferences = &tags
	}
	if req.DislikedIngredients != nil {
		disliked := cleanList(*req.DislikedIngredients, true)
		update.DislikedIngredients = &disliked
	}
	if req.FavoriteCuisines != nil {
		cuisines := cleanList(*req.FavoriteCuisines, false)
		update.FavoriteCuisines = &cuisines
	}
	return a.users.UpdatePreferences(ctx, update)
}

func buildQuery(ctx context.Context, ingredients []string, filters *FiltersRequest, prefs []string, servings *int) matching.Query {
	q := matching.Query{
		Ingredients:        ingredients,
		DietaryPreferences: sanitizeTags(ctx, "dietaryPreferences", prefs),
		Servings:           servings,
	}
	if filters != nil {
		q.Filters = &matching.Filters{
			Difficulty:          recipe.Difficulty(filters.Difficulty),
			MaxCookingTime:      filters.MaxCookingTime,
			DietaryRestrictions: sanitizeTags(ctx, "filters.dietaryRestrictions", filters.DietaryRestrictions),
		}
	}
	return q
}

func sanitizeTags(ctx context.Context, field string, values []string) []recipe.DietaryTag {
	tags, dropped := recipe.FilterDietaryTags(values)
	logDropped(ctx, field, dropped)
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func logDropped(ctx context.Context, field string, dropped []string) {
	if len(dropped) == 0 {
		return
	}
	logging.Ctx(ctx).Debug().Str("field", field).Strs("dropped", dropped).Msg("Ignoring unknown dietary tags")
}

// union joins the lists, keeping the first occurrence of each normalized value.
func union(lists ...[]string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, v := range list {
			n := matching.Normalize(v)
			if n == "" || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// cleanList trims entries and drops blanks and duplicates, lowercasing when asked.
func cleanList(values []string, lower bool) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if lower {
			v = strings.ToLower(v)
		}
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ParseIngredients splits free text such as "tomato, onion\ngarlic" into
// ingredient names.
func ParseIngredients(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	return union(fields)
}

// String describes the app for startup logs.
func (a *App) String() string {
	return fmt.Sprintf("pantry-chef(recipes=%d)", a.catalog.Len())
}
