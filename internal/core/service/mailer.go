package service

import (
	"context"
	"fmt"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
	"github.com/naiarievilo/todoapp/internal/core/token"
)

// ActionMailer issues an action token and hands it to the notifier.
type ActionMailer struct {
	codec    *token.Codec
	notifier ports.Notifier
}

func NewActionMailer(codec *token.Codec, notifier ports.Notifier) *ActionMailer {
	return &ActionMailer{codec: codec, notifier: notifier}
}

func (m *ActionMailer) Send(ctx context.Context, a *domain.Account, kind domain.TokenKind) error {
	if !kind.IsAction() {
		return fmt.Errorf("send %s link: not an action token kind", kind)
	}
	if m.notifier == nil {
		return nil
	}
	tok, err := m.codec.Issue(a.ID, kind)
	if err != nil {
		return fmt.Errorf("send %s link: %w", kind, err)
	}
	return m.notifier.Notify(ctx, domain.Notification{
		Kind:      kind,
		AccountID: a.ID,
		Email:     a.Email,
		Token:     tok,
	})
}
