package notify

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
)

func TestLogNotifier_Link(t *testing.T) {
	n := NewLogNotifier("http://localhost:8080/", zerolog.Nop())

	link, err := n.Link(domain.Notification{Kind: domain.TokenUnlock, AccountID: "abc123", Token: "a.b.c"})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if want := "http://localhost:8080/users/abc123/unlock?token=a.b.c"; link != want {
		t.Fatalf("got %q, want %q", link, want)
	}
}

func TestLogNotifier_RejectsBadNotifications(t *testing.T) {
	n := NewLogNotifier("http://localhost", zerolog.Nop())

	if err := n.Notify(context.Background(), domain.Notification{Kind: domain.TokenAccess, AccountID: "a", Token: "t"}); err == nil {
		t.Fatalf("expected an error for a non-action kind")
	}
	if err := n.Notify(context.Background(), domain.Notification{Kind: domain.TokenEnable}); err == nil {
		t.Fatalf("expected an error for a missing token")
	}
}

func TestLogNotifier_WritesLink(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier("http://localhost", zerolog.New(&buf))

	err := n.Notify(context.Background(), domain.Notification{
		Kind: domain.TokenVerification, AccountID: "abc", Email: "a@example.com", Token: "tok",
	})
	if err != nil {
		t.Fatalf("Notify: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"link":"http://localhost/users/abc/verification?token=tok"`) || !strings.Contains(out, `"email":"a@example.com"`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}
