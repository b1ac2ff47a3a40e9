package embedding

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"
)

// Pool bounds the number of concurrent encoder calls and deduplicates
// identical in-flight texts. It wraps another Encoder and implements
// Encoder itself.
type Pool struct {
	encoder Encoder
	slots   chan struct{}
	timeout time.Duration
	group   singleflight.Group
}

// NewPool wraps an encoder with a bounded worker pool. A positive
// timeout caps each encode call, queue wait included.
func NewPool(encoder Encoder, workers int, timeout time.Duration) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		encoder: encoder,
		slots:   make(chan struct{}, workers),
		timeout: timeout,
	}
}

// Model implements Encoder.
func (p *Pool) Model() string {
	return p.encoder.Model()
}

func (p *Pool) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

// Encode acquires a worker slot and delegates to the wrapped encoder.
// Concurrent requests for the same text share a single provider call.
func (p *Pool) Encode(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()

	result, err, _ := p.group.Do(text, func() (any, error) {
		select {
		case p.slots <- struct{}{}:
			defer func() { <-p.slots }()
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return p.encoder.Encode(ctx, text)
	})
	if err != nil {
		return nil, err
	}

	vec, ok := result.([]float32)
	if !ok {
		return nil, fmt.Errorf("unexpected singleflight result type %T", result)
	}
	// Callers may mutate; hand each one its own copy.
	out := make([]float32, len(vec))
	copy(out, vec)
	return out, nil
}

// EncodeBatch acquires a worker slot for the whole batch and delegates
// to the wrapped encoder. Batches are not deduplicated.
func (p *Pool) EncodeBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := p.deadline(ctx)
	defer cancel()

	select {
	case p.slots <- struct{}{}:
		defer func() { <-p.slots }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return p.encoder.EncodeBatch(ctx, texts)
}
