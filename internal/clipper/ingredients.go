package clipper

import (
	"regexp"
	"strconv"
	"strings"

	"pantry-chef/internal/recipe"
)

var vulgarFractions = strings.NewReplacer(
	"½", " 1/2", "⅓", " 1/3", "⅔", " 2/3", "¼", " 1/4", "¾", " 3/4",
	"⅕", " 1/5", "⅛", " 1/8", "⅜", " 3/8", "⅝", " 5/8", "⅞", " 7/8",
	"⁄", "/",
)

// units maps spellings to the short forms used in the catalog.
var units = map[string]string{
	"cup": "cup", "cups": "cup", "c": "cup",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbsp": "tbsp", "tbs": "tbsp", "tbl": "tbsp",
	"teaspoon": "tsp", "teaspoons": "tsp", "tsp": "tsp",
	"gram": "g", "grams": "g", "g": "g",
	"kilogram": "kg", "kilograms": "kg", "kg": "kg",
	"milliliter": "ml", "milliliters": "ml", "millilitre": "ml", "millilitres": "ml", "ml": "ml",
	"liter": "l", "liters": "l", "litre": "l", "litres": "l", "l": "l",
	"ounce": "oz", "ounces": "oz", "oz": "oz",
	"pound": "lb", "pounds": "lb", "lb": "lb", "lbs": "lb",
	"clove": "clove", "cloves": "clove",
	"can": "can", "cans": "can", "tin": "can", "tins": "can",
	"pinch": "pinch", "pinches": "pinch",
	"slice": "slice", "slices": "slice",
	"bunch": "bunch", "bunches": "bunch",
	"handful": "handful", "handfuls": "handful",
	"sprig": "sprig", "sprigs": "sprig",
	"stalk": "stalk", "stalks": "stalk",
	"piece": "piece", "pieces": "piece",
}

var (
	// 1, 1.5, 1/2 and 1 1/2, optionally followed by a range such as "2-3".
	quantityPrefix = regexp.MustCompile(`^(\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?)(?:\s*(?:-|–|to)\s*(?:\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?))?\s*`)
	parenthetical  = regexp.MustCompile(`\([^)]*\)`)
)

// ParseIngredient splits a free-text ingredient line such as
// "1 1/2 cups flour, sifted" into quantity, unit, name and preparation.
// Lines without a name are rejected.
func ParseIngredient(line string) (recipe.Ingredient, bool) {
	s := cleanText(vulgarFractions.Replace(line))
	var ing recipe.Ingredient

	lower := strings.ToLower(s)
	if strings.Contains(lower, "optional") {
		ing.Optional = true
	}
	s = strings.TrimSpace(parenthetical.ReplaceAllString(s, " "))

	if m := quantityPrefix.FindStringSubmatch(s); m != nil {
		ing.Quantity = parseQuantity(m[1])
		s = s[len(m[0]):]
	}

	if fields := strings.Fields(s); len(fields) > 1 {
		word := strings.TrimSuffix(strings.ToLower(fields[0]), ".")
		if unit, ok := units[word]; ok {
			ing.Unit = unit
			s = strings.Join(fields[1:], " ")
			s = strings.TrimPrefix(s, "of ")
		}
	}

	name, prep, _ := strings.Cut(s, ",")
	name = strings.ToLower(strings.Join(strings.Fields(name), " "))
	name = strings.TrimSpace(strings.TrimSuffix(name, "optional"))
	if name == "" {
		return recipe.Ingredient{}, false
	}
	ing.Name = name

	prep = strings.TrimSpace(prep)
	if !strings.EqualFold(prep, "optional") {
		ing.Preparation = prep
	}
	return ing, true
}

func parseQuantity(s string) float64 {
	var total float64
	for _, part := range strings.Fields(s) {
		if num, den, ok := strings.Cut(part, "/"); ok {
			n, err1 := strconv.ParseFloat(num, 64)
			d, err2 := strconv.ParseFloat(den, 64)
			if err1 == nil && err2 == nil && d != 0 {
				total += n / d
			}
			continue
		}
		v, _ := strconv.ParseFloat(part, 64)
		total += v
	}
	return total
}
