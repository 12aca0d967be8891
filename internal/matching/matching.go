// Package matching scores catalog recipes against a set of pantry ingredients.
package matching

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"pantry-chef/internal/recipe"
)

const (
	// minScore is exclusive: results must score strictly above it.
	minScore      = 0.1
	dietaryBonus  = 0.05
	substituteTip = "Try suggested substitutions to complete this recipe."
	// epsilon nudges values like 1.005 that sit just under a half-way point.
	epsilon = 2.220446049250313e-16
)

// Filters are hard constraints. A nil field, or DifficultyAny, does not filter.
type Filters struct {
	Difficulty          recipe.Difficulty
	MaxCookingTime      *int
	DietaryRestrictions []recipe.DietaryTag
}

// Query is a sanitized search request.
type Query struct {
	Ingredients        []string
	Filters            *Filters
	DietaryPreferences []recipe.DietaryTag
	Servings           *int
}

// Result is one scored recipe.
type Result struct {
	Recipe              recipe.Recipe                   `json:"recipe"`
	Score               float64                         `json:"score"`
	MatchedIngredients  []string                        `json:"matchedIngredients"`
	MissingIngredients  []string                        `json:"missingIngredients"`
	SubstitutionOptions []recipe.SubstitutionSuggestion `json:"substitutionOptions"`
	Servings            *int                            `json:"servings,omitempty"`
	ScaledIngredients   []recipe.Ingredient             `json:"scaledIngredients,omitempty"`
	Notes               []string                        `json:"notes,omitempty"`
}

// NewResult returns a result for r with empty, non-nil lists.
func NewResult(r recipe.Recipe, score float64) Result {
	return Result{
		Recipe:              r,
		Score:               score,
		MatchedIngredients:  []string{},
		MissingIngredients:  []string{},
		SubstitutionOptions: []recipe.SubstitutionSuggestion{},
	}
}

// Normalize trims and lowercases an ingredient or tag.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Search filters and scores catalog against q. Results score above 0.1 and
// are ordered by score descending, ties keeping catalog order.
func Search(catalog []recipe.Recipe, q Query) []Result {
	inputs := normalizeInputs(q.Ingredients)
	col := collate.New(language.English, collate.Loose)

	results := make([]Result, 0)
	for _, r := range catalog {
		if !passesFilters(r, q.Filters) {
			continue
		}
		res := score(col, r, inputs, q)
		if res.Score > minScore {
			results = append(results, res)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func normalizeInputs(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		n := Normalize(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func passesFilters(r recipe.Recipe, f *Filters) bool {
	if f == nil {
		return true
	}
	for _, tag := range f.DietaryRestrictions {
		if !r.HasTag(tag) {
			return false
		}
	}
	if f.Difficulty != "" && f.Difficulty != recipe.DifficultyAny && f.Difficulty != r.Difficulty {
		return false
	}
	if f.MaxCookingTime != nil && r.CookingTime > *f.MaxCookingTime {
		return false
	}
	return true
}

func score(col *collate.Collator, r recipe.Recipe, inputs []string, q Query) Result {
	res := NewResult(r, 0)

	for _, ing := range r.Ingredients {
		name := Normalize(ing.Name)
		if matchesAny(col, name, inputs) {
			res.MatchedIngredients = append(res.MatchedIngredients, name)
		} else {
			res.MissingIngredients = append(res.MissingIngredients, name)
		}
	}

	base := 0.0
	if len(r.Ingredients) > 0 {
		base = float64(len(res.MatchedIngredients)) / float64(len(r.Ingredients))
	}
	bonus := 0.0
	if sharesTag(r.DietaryTags, q.DietaryPreferences) {
		bonus = dietaryBonus
	}
	res.Score = math.Max(0, math.Min(1, base+bonus))

	res.SubstitutionOptions = substitutions(r, res.MissingIngredients)

	if q.Servings != nil {
		servings := *q.Servings
		res.Servings = &servings
		if servings != r.BaseServings {
			res.ScaledIngredients = Scale(r.Ingredients, float64(servings)/float64(r.BaseServings))
		}
	}

	if len(res.MissingIngredients) > 0 {
		res.Notes = append(res.Notes, fmt.Sprintf("Missing %d ingredients: %s.",
			len(res.MissingIngredients), strings.Join(res.MissingIngredients, ", ")))
	}
	if len(res.SubstitutionOptions) > 0 {
		res.Notes = append(res.Notes, substituteTip)
	}
	return res
}

// matchesAny is intentionally permissive: "rice" matches "rice noodles" and
// "egg" matches "eggplant".
func matchesAny(col *collate.Collator, name string, inputs []string) bool {
	for _, in := range inputs {
		if col.CompareString(name, in) == 0 || strings.Contains(name, in) || strings.Contains(in, name) {
			return true
		}
	}
	return false
}

func sharesTag(tags, prefs []recipe.DietaryTag) bool {
	for _, p := range prefs {
		for _, t := range tags {
			if p == t {
				return true
			}
		}
	}
	return false
}

func substitutions(r recipe.Recipe, missing []string) []recipe.SubstitutionSuggestion {
	out := []recipe.SubstitutionSuggestion{}
	if len(missing) == 0 {
		return out
	}
	set := make(map[string]bool, len(missing))
	for _, m := range missing {
		set[m] = true
	}
	for _, s := range r.SubstitutionSuggestions {
		if set[Normalize(s.Ingredient)] {
			out = append(out, s)
		}
	}
	return out
}

// Scale returns copies of ingredients with quantities multiplied by factor and
// rounded half-up to two decimals.
func Scale(ingredients []recipe.Ingredient, factor float64) []recipe.Ingredient {
	out := make([]recipe.Ingredient, len(ingredients))
	for i, ing := range ingredients {
		ing.Quantity = round2(ing.Quantity * factor)
		out[i] = ing
	}
	return out
}

func round2(v float64) float64 {
	return math.Round((v+epsilon)*100) / 100
}
