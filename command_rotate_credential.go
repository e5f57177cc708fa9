package users

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

type RotateCredentialMessage struct {
	AccountID uuid.UUID `json:"account_id"`
	Password  string    `json:"password"`
}

func (e RotateCredentialMessage) Type() string { return "account.rotate_credential" }

// RotateCredentialHandler hashes and persists a replacement credential.
// Only the hash is stored; the plaintext never leaves this handler.
type RotateCredentialHandler struct {
	repo RepositoryManager
}

func NewRotateCredentialHandler(repo RepositoryManager) *RotateCredentialHandler {
	return &RotateCredentialHandler{repo: repo}
}

func (h *RotateCredentialHandler) Execute(ctx context.Context, event RotateCredentialMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during credential rotation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RotateCredentialHandler) execute(ctx context.Context, event RotateCredentialMessage) error {
	if err := validation.Validate(event.Password, requiredRules("password")...); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid replacement password")
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if err := h.repo.Accounts().UpdateCredential(ctx, event.AccountID, hash); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrAccountNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not persist credential")
	}

	return nil
}
