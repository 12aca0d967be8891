package clipper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"pantry-chef/internal/logging"
	"pantry-chef/internal/recipe"
)

const (
	defaultCookingTime = 30
	defaultServings    = 4
)

// findRecipeNode decodes one JSON-LD block and returns the first node typed
// Recipe. Blocks may hold an object, an array or an @graph.
func findRecipeNode(raw string) (map[string]any, bool) {
	var data any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		logging.Debug().Err(err).Msg("Skipping invalid JSON-LD block")
		return nil, false
	}
	return searchNode(data)
}

func searchNode(v any) (map[string]any, bool) {
	switch n := v.(type) {
	case []any:
		for _, item := range n {
			if found, ok := searchNode(item); ok {
				return found, true
			}
		}
	case map[string]any:
		if isRecipeType(n["@type"]) {
			return n, true
		}
		if graph, ok := n["@graph"]; ok {
			return searchNode(graph)
		}
	}
	return nil, false
}

func isRecipeType(v any) bool {
	for _, t := range stringList(v) {
		if strings.EqualFold(t, "Recipe") {
			return true
		}
	}
	return false
}

func convert(node map[string]any) recipe.Recipe {
	rec := recipe.Recipe{
		Title:       cleanText(str(node["name"])),
		Description: cleanText(str(node["description"])),
		Cuisine:     strings.Join(stringList(node["recipeCuisine"]), ", "),
		Steps:       instructions(node["recipeInstructions"]),
		Image:       image(node["image"]),
		Nutrition:   nutrition(node["nutrition"]),
	}
	rec.ID = Slugify(rec.Title)
	if rec.Cuisine == "" {
		rec.Cuisine = "International"
	}

	rec.CookingTime = cookingTime(node)
	if rec.CookingTime <= 0 {
		logging.Debug().Str("id", rec.ID).Msg("No recipe time, using default")
		rec.CookingTime = defaultCookingTime
	}
	rec.Difficulty = difficultyFor(rec.CookingTime)

	rec.BaseServings = servings(node["recipeYield"])
	if rec.BaseServings <= 0 {
		rec.BaseServings = defaultServings
	}

	for _, line := range stringList(node["recipeIngredient"]) {
		if ing, ok := ParseIngredient(line); ok {
			rec.Ingredients = append(rec.Ingredients, ing)
		}
	}
	if len(rec.Ingredients) == 0 {
		// Older markup uses "ingredients".
		for _, line := range stringList(node["ingredients"]) {
			if ing, ok := ParseIngredient(line); ok {
				rec.Ingredients = append(rec.Ingredients, ing)
			}
		}
	}

	rec.DietaryTags = dietaryTags(node)
	rec.SubstitutionSuggestions = []recipe.SubstitutionSuggestion{}
	return rec
}

func cookingTime(node map[string]any) int {
	if total := ParseDuration(str(node["totalTime"])); total > 0 {
		return total
	}
	return ParseDuration(str(node["prepTime"])) + ParseDuration(str(node["cookTime"]))
}

func difficultyFor(minutes int) recipe.Difficulty {
	switch {
	case minutes <= 30:
		return recipe.DifficultyEasy
	case minutes <= 60:
		return recipe.DifficultyMedium
	default:
		return recipe.DifficultyHard
	}
}

var isoDuration = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration converts an ISO-8601 duration such as PT1H15M to whole
// minutes, rounding seconds up. Invalid input yields 0.
func ParseDuration(s string) int {
	m := isoDuration.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(s)))
	if m == nil {
		return 0
	}
	days, _ := strconv.Atoi(m[1])
	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	seconds, _ := strconv.ParseFloat(m[4], 64)
	return days*24*60 + hours*60 + minutes + int(math.Ceil(seconds/60))
}

var firstNumber = regexp.MustCompile(`\d+`)

func servings(v any) int {
	for _, s := range stringList(v) {
		if n := firstNumber.FindString(s); n != "" {
			servings, _ := strconv.Atoi(n)
			return servings
		}
	}
	return 0
}

// instructions flattens strings, HowToStep and HowToSection entries.
func instructions(v any) []string {
	steps := []string{}
	var walk func(any)
	walk = func(v any) {
		switch n := v.(type) {
		case string:
			for _, line := range strings.Split(n, "\n") {
				if line = cleanText(line); line != "" {
					steps = append(steps, line)
				}
			}
		case []any:
			for _, item := range n {
				walk(item)
			}
		case map[string]any:
			if items, ok := n["itemListElement"]; ok {
				walk(items)
				return
			}
			text := str(n["text"])
			if text == "" {
				text = str(n["name"])
			}
			if text = cleanText(text); text != "" {
				steps = append(steps, text)
			}
		}
	}
	walk(v)
	return steps
}

func image(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case []any:
		for _, item := range n {
			if url := image(item); url != "" {
				return url
			}
		}
	case map[string]any:
		return str(n["url"])
	}
	return ""
}

var schemaDiets = map[string]recipe.DietaryTag{
	"vegandiet":       recipe.Vegan,
	"vegetariandiet":  recipe.Vegetarian,
	"glutenfreediet":  recipe.GlutenFree,
	"halaldiet":       recipe.Halal,
	"kosherdiet":      recipe.Kosher,
	"lowlactosediet":  recipe.DairyFree,
	"pescatariandiet": recipe.Pescatarian,
}

// dietaryTags maps suitableForDiet URLs and keyword matches to known tags.
func dietaryTags(node map[string]any) []recipe.DietaryTag {
	var candidates []string
	for _, diet := range stringList(node["suitableForDiet"]) {
		name := strings.ToLower(diet[strings.LastIndex(diet, "/")+1:])
		if tag, ok := schemaDiets[name]; ok {
			candidates = append(candidates, string(tag))
		}
	}
	for _, kw := range stringList(node["keywords"]) {
		candidates = append(candidates, strings.Split(kw, ",")...)
	}
	tags, _ := recipe.FilterDietaryTags(candidates)
	return tags
}

func nutrition(v any) recipe.NutritionFacts {
	n, ok := v.(map[string]any)
	if !ok {
		return recipe.NutritionFacts{}
	}
	facts := recipe.NutritionFacts{
		Calories: amount(n["calories"]),
		Protein:  amount(n["proteinContent"]),
		Carbs:    amount(n["carbohydrateContent"]),
		Fat:      amount(n["fatContent"]),
	}
	if _, ok := n["fiberContent"]; ok {
		fiber := amount(n["fiberContent"])
		facts.Fiber = &fiber
	}
	if _, ok := n["sugarContent"]; ok {
		sugar := amount(n["sugarContent"])
		facts.Sugar = &sugar
	}
	return facts
}

var leadingNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)

func amount(v any) float64 {
	if f, ok := v.(float64); ok {
		return f
	}
	f, _ := strconv.ParseFloat(leadingNumber.FindString(str(v)), 64)
	return f
}

// str returns v as a string; numbers are formatted, anything else is empty.
func str(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// stringList accepts a single value or an array of values.
func stringList(v any) []string {
	var out []string
	switch n := v.(type) {
	case []any:
		for _, item := range n {
			if s := strings.TrimSpace(str(item)); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(str(v)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

var spaces = regexp.MustCompile(`\s+`)

// cleanText strips tags some sites leave in JSON-LD and collapses whitespace.
func cleanText(s string) string {
	s = htmlTag.ReplaceAllString(s, " ")
	s = strings.NewReplacer("&amp;", "&", "&#39;", "'", "&quot;", `"`, "&nbsp;", " ").Replace(s)
	return strings.TrimSpace(spaces.ReplaceAllString(s, " "))
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify turns a title into a catalog id: "Crème Brûlée!" becomes "creme-brulee".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, title)
	if err != nil {
		s = title
	}
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(s), "-"), "-")
}
