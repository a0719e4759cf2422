package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/pricelist-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

var (
	ErrNotConfigured = errors.New("chat completion is not configured")
	ErrNoMessages    = errors.New("conversation has no messages")
	ErrEmptyReply    = errors.New("completion returned no text")
)

const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one message in the upstream role vocabulary.
type Turn struct {
	Role string
	Text string
}

// Completer sends history plus a new user message to a model and returns its
// text reply.
type Completer interface {
	Complete(ctx context.Context, history []Turn, message string) (string, error)
}

// Proxy forwards a conversation to the model. A Proxy without a Completer is
// valid and answers every call with ErrNotConfigured.
type Proxy struct {
	completer Completer
	timeout   time.Duration
}

func NewProxy(completer Completer, timeout time.Duration) *Proxy {
	return &Proxy{completer: completer, timeout: timeout}
}

func (p *Proxy) Configured() bool {
	return p != nil && p.completer != nil
}

// Reply sends every message but the last as history and the last one as the
// new turn. No retries.
func (p *Proxy) Reply(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if !p.Configured() {
		return "", ErrNotConfigured
	}
	if len(messages) == 0 {
		return "", ErrNoMessages
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	last := len(messages) - 1
	history := make([]Turn, 0, last)
	for _, m := range messages[:last] {
		history = append(history, Turn{Role: MapRole(m.Role), Text: m.Content})
	}

	zerolog.Ctx(ctx).Debug().
		Int("history", len(history)).
		Msg("sending chat message")

	reply, err := p.completer.Complete(ctx, history, messages[last].Content)
	if err != nil {
		return "", fmt.Errorf("failed to complete chat: %w", err)
	}
	if reply == "" {
		return "", ErrEmptyReply
	}
	return reply, nil
}

// MapRole maps the browser's roles to the model's: user stays user and
// anything else is the model speaking.
func MapRole(role string) string {
	if role == domain.ChatRoleUser {
		return RoleUser
	}
	return RoleModel
}
