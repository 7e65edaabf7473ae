package domain

// Notification asks the email collaborator to deliver an account action link.
type Notification struct {
	Kind      TokenKind
	AccountID string
	Email     string
	Token     string
}
