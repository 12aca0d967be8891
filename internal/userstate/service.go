package userstate

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pantry-chef/internal/logging"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recipe"
)

const (
	MinRating = 1
	MaxRating = 5
)

// RecipeLookup reports whether a recipe id exists.
type RecipeLookup interface {
	Has(id string) bool
}

// Service applies read-modify-write changes to the state. Changes made
// through one Service never interleave.
type Service struct {
	mu      sync.Mutex
	store   Store
	recipes RecipeLookup
	now     func() time.Time
}

// NewService creates a Service. When recipes is nil any recipe id is accepted.
func NewService(store Store, recipes RecipeLookup) *Service {
	return &Service{
		store:   store,
		recipes: recipes,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ClampRating limits r to [MinRating, MaxRating]. The value is not rounded.
func ClampRating(r float64) float64 {
	return min(MaxRating, max(MinRating, r))
}

// Get returns the current state.
func (s *Service) Get(ctx context.Context) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(ctx)
}

// ToggleFavorite removes recipeID from the favorites if present and appends
// it otherwise. It returns the resulting favorites.
func (s *Service) ToggleFavorite(ctx context.Context, recipeID string) ([]Favorite, error) {
	if err := s.checkRecipe(recipeID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	favorites := make([]Favorite, 0, len(state.Favorites)+1)
	removed := false
	for _, f := range state.Favorites {
		if f.RecipeID == recipeID {
			removed = true
			continue
		}
		favorites = append(favorites, f)
	}
	if !removed {
		favorites = append(favorites, Favorite{RecipeID: recipeID, SavedAt: s.now()})
	}
	state.Favorites = favorites

	if err := s.write(ctx, state, "favorite"); err != nil {
		return nil, err
	}
	logging.Debug().Str("recipe_id", recipeID).Bool("saved", !removed).Msg("Toggled favorite")
	return state.Favorites, nil
}

// Rate stores a clamped rating for recipeID, replacing any earlier rating in
// place. It returns the resulting ratings.
func (s *Service) Rate(ctx context.Context, recipeID string, rating float64) ([]Rating, error) {
	if err := s.checkRecipe(recipeID); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read(ctx)
	if err != nil {
		return nil, err
	}

	entry := Rating{RecipeID: recipeID, Rating: ClampRating(rating), RatedAt: s.now()}
	ratings := make([]Rating, len(state.Ratings), len(state.Ratings)+1)
	copy(ratings, state.Ratings)
	replaced := false
	for i := range ratings {
		if ratings[i].RecipeID == recipeID {
			ratings[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		ratings = append(ratings, entry)
	}
	state.Ratings = ratings

	if err := s.write(ctx, state, "rating"); err != nil {
		return nil, err
	}
	return state.Ratings, nil
}

// UpdatePreferences merges update into the stored preferences field by field.
func (s *Service) UpdatePreferences(ctx context.Context, update PreferencesUpdate) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read(ctx)
	if err != nil {
		return Preferences{}, err
	}

	if update.DietaryPreferences != nil {
		state.Preferences.DietaryPreferences = *update.DietaryPreferences
	}
	if update.DislikedIngredients != nil {
		state.Preferences.DislikedIngredients = *update.DislikedIngredients
	}
	if update.FavoriteCuisines != nil {
		state.Preferences.FavoriteCuisines = *update.FavoriteCuisines
	}
	state = state.Normalized()

	if err := s.write(ctx, state, "preferences"); err != nil {
		return Preferences{}, err
	}
	return state.Preferences, nil
}

func (s *Service) checkRecipe(recipeID string) error {
	if s.recipes != nil && !s.recipes.Has(recipeID) {
		return recipe.ErrNotFound
	}
	return nil
}

func (s *Service) read(ctx context.Context) (State, error) {
	state, err := s.store.Read(ctx)
	if err != nil {
		return State{}, fmt.Errorf("failed to read user state: %w", err)
	}
	return state.Normalized(), nil
}

func (s *Service) write(ctx context.Context, state State, op string) error {
	if err := s.store.Write(ctx, state); err != nil {
		return fmt.Errorf("failed to write user state: %w", err)
	}
	metrics.UserStateWrites.WithLabelValues(op).Inc()
	return nil
}
