package users

import (
	"context"

	"github.com/google/uuid"
)

type ChangeMailMessage struct {
	AccountID uuid.UUID `json:"account_id"`
	Mail      string    `json:"mail"`
}

func (e ChangeMailMessage) Type() string { return "account.change_mail" }

// ChangeMailHandler is the mail change path: defined, routed, and
// intentionally unimplemented upstream. It must keep failing with
// ErrMailChangeNotImplemented rather than silently succeeding, because mail
// change requires a verification flow that does not exist yet.
type ChangeMailHandler struct{}

func NewChangeMailHandler() *ChangeMailHandler {
	return &ChangeMailHandler{}
}

func (h *ChangeMailHandler) Execute(_ context.Context, _ ChangeMailMessage) error {
	return ErrMailChangeNotImplemented
}
