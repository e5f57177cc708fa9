package users

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UpdateProfileMessage struct {
	AccountID uuid.UUID            `json:"account_id"`
	Payload   UpdateAccountPayload `json:"payload"`

	OnResponse func(*Account)
}

func (e UpdateProfileMessage) Type() string { return "account.update_profile" }

// UpdateProfileHandler merges only the supplied profile fields into the
// existing account. A supplied mail field routes to the unimplemented mail
// change path; a supplied password is hashed before it is persisted.
type UpdateProfileHandler struct {
	repo RepositoryManager
}

func NewUpdateProfileHandler(repo RepositoryManager) *UpdateProfileHandler {
	return &UpdateProfileHandler{repo: repo}
}

func (h *UpdateProfileHandler) Execute(ctx context.Context, event UpdateProfileMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during profile update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateProfileHandler) execute(ctx context.Context, event UpdateProfileMessage) error {
	if err := event.Payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid update payload")
	}

	if event.Payload.Mail != "" {
		return ErrMailChangeNotImplemented
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	patch := &Account{
		ID:          event.AccountID,
		Name:        event.Payload.Name,
		Surname:     event.Payload.Surname,
		Description: event.Payload.Description,
		Residence:   event.Payload.Residence,
		Birthdate:   event.Payload.Birthdate,
	}

	if event.Payload.Password != "" {
		hash, err := HashPassword(event.Payload.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}
		patch.PasswordHash = hash
	}

	var account *Account

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		account, err = h.repo.Accounts().UpdateTx(ctx, tx, patch,
			repository.UpdateByID(event.AccountID.String()),
			repository.UpdateSkipZeroValues(),
		)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrAccountNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not update account")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "profile update transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	return nil
}
