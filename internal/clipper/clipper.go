// Package clipper imports recipes from web pages that publish schema.org
// Recipe metadata as JSON-LD.
package clipper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pantry-chef/internal/logging"
	"pantry-chef/internal/recipe"
)

// ErrNoRecipe is returned when a page carries no schema.org Recipe.
var ErrNoRecipe = errors.New("no schema.org Recipe found on page")

const maxPageBytes = 10 << 20

// Clipper fetches pages and converts their recipe metadata.
type Clipper struct {
	httpClient *http.Client
}

// NewClipper creates a Clipper. A nil client gets a 15 second timeout.
func NewClipper(client *http.Client) *Clipper {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Clipper{httpClient: client}
}

// ClipURL fetches url and returns the first recipe it describes.
func (c *Clipper) ClipURL(ctx context.Context, url string) (recipe.Recipe, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("invalid url: %w", err)
	}
	req.Header.Set("User-Agent", "pantry-chef/1.0 (+recipe clipper)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return recipe.Recipe{}, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}

	rec, err := ParseHTML(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return recipe.Recipe{}, err
	}
	logging.Ctx(ctx).Debug().Str("url", url).Str("id", rec.ID).Msg("Clipped recipe")
	return rec, nil
}

// Import clips url and appends the recipe to the catalog file at catalogPath.
func (c *Clipper) Import(ctx context.Context, url, catalogPath string) (recipe.Recipe, error) {
	rec, err := c.ClipURL(ctx, url)
	if err != nil {
		return recipe.Recipe{}, err
	}
	if err := recipe.Append(catalogPath, rec); err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to save recipe: %w", err)
	}
	logging.Info().Str("id", rec.ID).Str("title", rec.Title).Str("catalog", catalogPath).Msg("Recipe imported")
	return rec, nil
}

// ParseHTML reads an HTML document and converts its first schema.org Recipe.
func ParseHTML(r io.Reader) (recipe.Recipe, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("failed to parse html: %w", err)
	}

	var (
		node   map[string]any
		parsed int
	)
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found, ok := findRecipeNode(s.Text())
		if ok {
			node = found
			return false
		}
		parsed++
		return true
	})
	if node == nil {
		logging.Debug().Int("ld_json_blocks", parsed).Msg("No recipe node found")
		return recipe.Recipe{}, ErrNoRecipe
	}

	rec := convert(node)
	if rec.Image == "" {
		rec.Image, _ = doc.Find(`meta[property="og:image"]`).Attr("content")
	}
	if err := rec.Validate(); err != nil {
		return recipe.Recipe{}, fmt.Errorf("incomplete recipe: %w", err)
	}
	return rec, nil
}
