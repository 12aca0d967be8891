package recipe

import "strings"

// DietaryTag is a member of the closed set of dietary labels.
type DietaryTag string

const (
	Vegetarian  DietaryTag = "vegetarian"
	Vegan       DietaryTag = "vegan"
	GlutenFree  DietaryTag = "gluten-free"
	DairyFree   DietaryTag = "dairy-free"
	NutFree     DietaryTag = "nut-free"
	Pescatarian DietaryTag = "pescatarian"
	Keto        DietaryTag = "keto"
	Halal       DietaryTag = "halal"
	Kosher      DietaryTag = "kosher"
)

// AllDietaryTags lists every allowed tag.
var AllDietaryTags = []DietaryTag{
	Vegetarian, Vegan, GlutenFree, DairyFree, NutFree, Pescatarian, Keto, Halal, Kosher,
}

// Valid reports whether t is in the allowed set.
func (t DietaryTag) Valid() bool {
	for _, allowed := range AllDietaryTags {
		if t == allowed {
			return true
		}
	}
	return false
}

// FilterDietaryTags trims and lowercases values and keeps the allowed ones in
// input order, without duplicates. It returns the kept tags and the dropped raw
// values. The kept slice is never nil.
func FilterDietaryTags(values []string) (kept []DietaryTag, dropped []string) {
	kept = make([]DietaryTag, 0, len(values))
	seen := make(map[DietaryTag]bool, len(values))
	for _, v := range values {
		tag := DietaryTag(strings.ToLower(strings.TrimSpace(v)))
		if !tag.Valid() {
			dropped = append(dropped, v)
			continue
		}
		if seen[tag] {
			continue
		}
		seen[tag] = true
		kept = append(kept, tag)
	}
	return kept, dropped
}

// SanitizeDietaryTags is FilterDietaryTags for optional query fields: a result
// with no allowed tags is nil, meaning the field is absent.
func SanitizeDietaryTags(values []string) []DietaryTag {
	kept, _ := FilterDietaryTags(values)
	if len(kept) == 0 {
		return nil
	}
	return kept
}
