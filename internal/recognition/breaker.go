package recognition

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"pantry-chef/internal/logging"
)

// BreakerSettings control when the circuit opens.
type BreakerSettings struct {
	Name string
	// ConsecutiveFailures trips the breaker. Default 5.
	ConsecutiveFailures uint32
	// Cooldown is how long the breaker stays open. Default 30s.
	Cooldown time.Duration
}

type breakerClassifier struct {
	next Classifier
	cb   *gobreaker.CircuitBreaker[[]Prediction]
}

// WithCircuitBreaker stops calling next after repeated upstream failures.
// Missing credentials never count as failures.
func WithCircuitBreaker(next Classifier, s BreakerSettings) Classifier {
	if s.ConsecutiveFailures == 0 {
		s.ConsecutiveFailures = 5
	}
	if s.Cooldown <= 0 {
		s.Cooldown = 30 * time.Second
	}
	threshold := s.ConsecutiveFailures

	cb := gobreaker.NewCircuitBreaker[[]Prediction](gobreaker.Settings{
		Name:    s.Name,
		Timeout: s.Cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotConfigured) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Recognition circuit breaker state changed")
		},
	})
	return &breakerClassifier{next: next, cb: cb}
}

func (b *breakerClassifier) Classify(ctx context.Context, image []byte) ([]Prediction, error) {
	preds, err := b.cb.Execute(func() ([]Prediction, error) {
		return b.next.Classify(ctx, image)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, upstream(b.cb.Name(), err)
	}
	return preds, err
}
