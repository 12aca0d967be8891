// Package recognition identifies food in a photo using a hosted image model.
package recognition

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"pantry-chef/internal/apperrors"
)

// MaxPredictions is the most labels a Classifier returns.
const MaxPredictions = 5

var (
	// ErrNotConfigured is matched with errors.Is when no credential is set.
	ErrNotConfigured = errors.New("recognition not configured")
	// ErrUpstream is matched with errors.Is for any provider failure.
	ErrUpstream = errors.New("recognition upstream failure")
)

// Prediction is one candidate label for an image.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier labels an image. Results are sorted by confidence descending,
// hold at most MaxPredictions entries and confidences in [0,1].
type Classifier interface {
	Classify(ctx context.Context, image []byte) ([]Prediction, error)
}

func notConfigured(envVar string) error {
	return apperrors.Wrap(apperrors.CodeNotConfigured,
		fmt.Sprintf("%s is not configured. Set it in the environment to enable image ingredient recognition.", envVar),
		ErrNotConfigured)
}

func upstream(provider string, cause error) error {
	return apperrors.Wrap(apperrors.CodeUpstream,
		"Image recognition failed",
		fmt.Errorf("%w: %s: %w", ErrUpstream, provider, cause))
}

// rank sorts predictions, clamps confidences and keeps the top MaxPredictions.
// Blank labels are dropped.
func rank(preds []Prediction) []Prediction {
	out := make([]Prediction, 0, len(preds))
	for _, p := range preds {
		p.Label = strings.TrimSpace(p.Label)
		if p.Label == "" {
			continue
		}
		p.Confidence = max(0, min(1, p.Confidence))
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	if len(out) > MaxPredictions {
		out = out[:MaxPredictions]
	}
	return out
}

// Labels returns the ingredient names carried by predictions, with model
// label separators replaced by spaces ("fried_rice" becomes "fried rice").
func Labels(preds []Prediction) []string {
	labels := make([]string, 0, len(preds))
	for _, p := range preds {
		if label := strings.TrimSpace(strings.ReplaceAll(p.Label, "_", " ")); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}
