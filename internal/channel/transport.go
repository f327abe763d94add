package channel

import (
	"context"
	"errors"
	"fmt"

	"github.com/umutkoseali/gymnotify/internal/domain"
)

// Transport is the outbound message delivery port for a single channel.
type Transport interface {
	Send(ctx context.Context, phone, message string) (*SendResult, error)
}

// SendResult stores provider call metadata for audit and persistence.
type SendResult struct {
	ProviderID string
	StatusCode int
	Body       string
}

// ErrUnsupported marks a channel with no registered transport. Dispatch
// treats it as a per-item failure, never a batch-level error.
var ErrUnsupported = errors.New("unsupported channel")

// Registry resolves delivery channels to their transports.
type Registry struct {
	transports map[domain.Channel]Transport
}

func NewRegistry() *Registry {
	return &Registry{transports: make(map[domain.Channel]Transport)}
}

func (r *Registry) Register(ch domain.Channel, t Transport) {
	if t == nil {
		return
	}
	r.transports[ch] = t
}

func (r *Registry) Resolve(ch domain.Channel) (Transport, error) {
	t, ok := r.transports[ch]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ch)
	}
	return t, nil
}
