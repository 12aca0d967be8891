package recognition

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

const geminiPrompt = `You identify food ingredients in photos.
List up to 5 distinct ingredients or dishes visible in this image.
Return ONLY a JSON array of objects with the structure:
[{"label": "ingredient name in lowercase", "confidence": 0.0 to 1.0}]
Do not wrap the response in markdown code blocks.`

// GeminiClassifier labels images with a Gemini vision model.
type GeminiClassifier struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiClassifier creates a Gemini-backed classifier. An empty apiKey
// yields a classifier that reports ErrNotConfigured on every call.
func NewGeminiClassifier(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiClassifier, error) {
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	c := &GeminiClassifier{model: model, timeout: timeout}
	if apiKey == "" {
		return c, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Classify sends the image with an instruction prompt and parses the JSON reply.
func (c *GeminiClassifier) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	if c.client == nil {
		return nil, notConfigured("GEMINI_API_KEY")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.ImageData(imageFormat(image), image), genai.Text(geminiPrompt))
	if err != nil {
		return nil, upstream("gemini", fmt.Errorf("failed to generate content: %w", err))
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, upstream("gemini", fmt.Errorf("no content generated"))
	}

	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return nil, upstream("gemini", fmt.Errorf("generated content is not text"))
	}

	preds, err := parseGeminiPredictions(string(text))
	if err != nil {
		return nil, upstream("gemini", err)
	}
	return preds, nil
}

// Close closes the underlying Gemini client.
func (c *GeminiClassifier) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func parseGeminiPredictions(text string) ([]Prediction, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var preds []Prediction
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &preds); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Gemini response: %w. Response: %s", err, text)
	}
	return rank(preds), nil
}

// imageFormat returns the genai image format ("jpeg", "png", ...) for data.
func imageFormat(data []byte) string {
	mime := http.DetectContentType(data)
	if format, ok := strings.CutPrefix(mime, "image/"); ok {
		return format
	}
	return "jpeg"
}
