package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ConfirmationMessage carries the fields of a registration confirmation mail
type ConfirmationMessage struct {
	Name      string    `json:"name"`
	Email     string    `json:"mail"`
	AccountID uuid.UUID `json:"account_id"`
}

// CredentialMessage carries a generated credential to its owner. The mail
// transport is assumed confidential; the plaintext exists only here and is
// never persisted or logged.
type CredentialMessage struct {
	Name     string `json:"name"`
	Email    string `json:"mail"`
	Password string `json:"-"`
}

// Notifier is the outbound messaging gateway consumed by registration and
// bulk provisioning. Implementations own transport, retries, and templating.
type Notifier interface {
	SendRegistrationConfirmation(ctx context.Context, msg ConfirmationMessage) error
	SendGeneratedCredential(ctx context.Context, msg CredentialMessage) error
}

// printNotifier is a stand in transport for local development
type printNotifier struct{}

func (printNotifier) SendRegistrationConfirmation(_ context.Context, msg ConfirmationMessage) error {
	fmt.Println("====== SENDING CONFIRMATION MAIL =======")
	fmt.Printf("to: %s <%s>\n", msg.Name, msg.Email)
	fmt.Printf("account: %s\n", msg.AccountID)
	return nil
}

func (printNotifier) SendGeneratedCredential(_ context.Context, msg CredentialMessage) error {
	fmt.Println("====== SENDING CREDENTIAL MAIL =======")
	fmt.Printf("to: %s <%s>\n", msg.Name, msg.Email)
	return nil
}
