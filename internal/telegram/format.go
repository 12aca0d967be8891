package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pantry-chef/internal/matching"
	"pantry-chef/internal/metrics"
	"pantry-chef/internal/recipe"
	"pantry-chef/internal/userstate"
)

const helpText = `👋 *Pantry Chef*

Send me what is in your fridge, e.g. _eggs, spinach, feta_, or a photo of your ingredients.

/suggest - recipes picked for you
/recipe <id> - full recipe
/fav <id> - save or unsave a recipe
/rate <id> <1-5> - rate a recipe
/usage - recognition usage and health`

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func formatMatches(header string, results []matching.Result, limit int) string {
	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n\n")

	if len(results) == 0 {
		sb.WriteString("_No matching recipes. Try adding a few more ingredients._")
		return sb.String()
	}
	if len(results) > limit {
		results = results[:limit]
	}

	for _, res := range results {
		r := res.Recipe
		sb.WriteString(fmt.Sprintf("*%s* (%d%% match)\n", escape(r.Title), int(res.Score*100+0.5)))
		sb.WriteString(fmt.Sprintf("%s · %d min · %s\n", escape(r.Cuisine), r.CookingTime, r.Difficulty))
		if len(res.MissingIngredients) > 0 {
			sb.WriteString(fmt.Sprintf("Missing: %s\n", escape(strings.Join(res.MissingIngredients, ", "))))
		}
		sb.WriteString(fmt.Sprintf("/recipe %s\n\n", escape(r.ID)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatRecipe(r recipe.Recipe) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📖 *%s*\n", escape(r.Title)))
	if r.Description != "" {
		sb.WriteString(fmt.Sprintf("_%s_\n", escape(r.Description)))
	}
	sb.WriteString(fmt.Sprintf("\n%s · %d min · %s · serves %d\n", escape(r.Cuisine), r.CookingTime, r.Difficulty, r.BaseServings))

	sb.WriteString("\n🛒 *Ingredients*\n")
	for _, ing := range r.Ingredients {
		line := strings.TrimSpace(fmt.Sprintf("%s %s %s", formatQuantity(ing.Quantity), ing.Unit, ing.Name))
		if ing.Preparation != "" {
			line += ", " + ing.Preparation
		}
		if ing.Optional {
			line += " (optional)"
		}
		sb.WriteString("• " + escape(line) + "\n")
	}

	sb.WriteString("\n👩‍🍳 *Steps*\n")
	for i, step := range r.Steps {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, escape(step)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatQuantity(q float64) string {
	if q == 0 {
		return ""
	}
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", q), "0"), ".")
}

func formatFavoriteToggle(recipeID string, favorites []userstate.Favorite) string {
	for _, f := range favorites {
		if f.RecipeID == recipeID {
			return fmt.Sprintf("⭐ Saved *%s* to your favorites.", escape(recipeID))
		}
	}
	return fmt.Sprintf("Removed *%s* from your favorites.", escape(recipeID))
}

func formatRatingSaved(recipeID string, ratings []userstate.Rating) string {
	for _, r := range ratings {
		if r.RecipeID == recipeID {
			return fmt.Sprintf("👍 Rated *%s* %s (%g/5)", escape(recipeID), strings.Repeat("★", int(r.Rating)), r.Rating)
		}
	}
	return "👍 Rating saved."
}

func formatUsage(usage []metrics.DailyUsage, health metrics.SysHealth) string {
	var sb strings.Builder
	sb.WriteString("📊 *Usage & Health Report*\n\n")

	sb.WriteString("🗓 *Recent Recognition Activity*\n")
	if len(usage) == 0 {
		sb.WriteString("_No data yet_\n")
	}
	for _, d := range usage {
		sb.WriteString(fmt.Sprintf("• *%s*: %d calls (%d failed, avg %dms)\n", d.Date, d.Calls, d.Failures, d.AvgLatencyMS))
	}

	sb.WriteString("\n🧠 *System Health*\n")
	sb.WriteString(fmt.Sprintf("• RAM: %dMB (Alloc) / %dMB (Sys)\n", health.AllocMB, health.SysMB))
	sb.WriteString(fmt.Sprintf("• Goroutines: %d\n", health.Goroutines))
	sb.WriteString(fmt.Sprintf("• Disk Data: %s", health.DataDiskSize))
	return sb.String()
}
