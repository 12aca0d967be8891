package recognition

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	huggingFaceBaseURL = "https://api-inference.huggingface.co/models/"
	defaultHFModel     = "nateraw/food"
)

// HuggingFaceConfig configures the inference API client.
type HuggingFaceConfig struct {
	Token   string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// huggingFaceClient is a client for the Hugging Face inference API.
type huggingFaceClient struct {
	token      string
	endpoint   string
	httpClient *http.Client
}

// NewHuggingFaceClient creates a new Hugging Face image classification client.
func NewHuggingFaceClient(cfg HuggingFaceConfig) Classifier {
	if cfg.Model == "" {
		cfg.Model = defaultHFModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = huggingFaceBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	return &huggingFaceClient{
		token:    cfg.Token,
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/" + cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Classify posts the raw image bytes to the model and ranks the returned labels.
func (c *huggingFaceClient) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	if c.token == "" {
		return nil, notConfigured("HF_API_TOKEN")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(image))
	if err != nil {
		return nil, upstream("huggingface", fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, upstream("huggingface", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, upstream("huggingface", fmt.Errorf("status=%d body=%s", resp.StatusCode, string(bodyBytes)))
	}

	var hfResp []struct {
		Label string  `json:"label"`
		Score float64 `json:"score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hfResp); err != nil {
		return nil, upstream("huggingface", fmt.Errorf("failed to decode response: %w", err))
	}

	preds := make([]Prediction, 0, len(hfResp))
	for _, p := range hfResp {
		preds = append(preds, Prediction{Label: p.Label, Confidence: p.Score})
	}
	return rank(preds), nil
}
