package notify

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// LogNotifier stands in for the email collaborator: it renders the action
// link a mail would carry and writes it to the log.
type LogNotifier struct {
	baseURL string
	log     zerolog.Logger
}

func NewLogNotifier(baseURL string, log zerolog.Logger) *LogNotifier {
	return &LogNotifier{baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

func (n *LogNotifier) Notify(_ context.Context, msg domain.Notification) error {
	link, err := n.Link(msg)
	if err != nil {
		return err
	}
	n.log.Info().
		Str("account_id", msg.AccountID).
		Str("email", msg.Email).
		Str("kind", string(msg.Kind)).
		Str("link", link).
		Msg("account action link issued")
	return nil
}

// Link builds the confirmation URL for msg, e.g.
// https://api.example.com/users/<id>/verification?token=<jwt>.
func (n *LogNotifier) Link(msg domain.Notification) (string, error) {
	if !msg.Kind.IsAction() {
		return "", fmt.Errorf("build link: %q is not an action kind", msg.Kind)
	}
	if msg.AccountID == "" || msg.Token == "" {
		return "", fmt.Errorf("build %s link: missing account id or token", msg.Kind)
	}
	q := url.Values{"token": {msg.Token}}
	return fmt.Sprintf("%s/users/%s/%s?%s", n.baseURL, url.PathEscape(msg.AccountID), msg.Kind, q.Encode()), nil
}
