package ports

import (
	"context"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

// Notifier hands account action links to the email collaborator.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) error
}
