package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type DeleteAccountMessage struct {
	AccountID uuid.UUID `json:"account_id"`

	// Session is the caller's session handle; the binding is cleared only
	// after the store confirms the deletion.
	Session string `json:"-"`
}

func (e DeleteAccountMessage) Type() string { return "account.delete" }

// DeleteAccountHandler removes the account and then invalidates the
// caller's session binding. A failed delete leaves the binding intact.
type DeleteAccountHandler struct {
	repo     RepositoryManager
	sessions SessionStore
}

func NewDeleteAccountHandler(repo RepositoryManager, sessions SessionStore) *DeleteAccountHandler {
	return &DeleteAccountHandler{
		repo:     repo,
		sessions: sessions,
	}
}

func (h *DeleteAccountHandler) Execute(ctx context.Context, event DeleteAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteAccountHandler) execute(ctx context.Context, event DeleteAccountMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := h.repo.Accounts().DeleteByID(ctx, event.AccountID); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete account")
	}

	if event.Session != "" {
		if err := h.sessions.Clear(ctx, event.Session); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to clear session binding")
		}
	}

	return nil
}
