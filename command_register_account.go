package users

import (
	"context"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

type RegisterAccountMessage struct {
	Name        string `json:"name"`
	Surname     string `json:"surname"`
	Mail        string `json:"mail"`
	Password    string `json:"password"`
	Description string `json:"description"`
	Residence   string `json:"residence"`
	Birthdate   string `json:"birthdate"`

	// Session is the caller's opaque session handle; when present the new
	// account is bound to it before the response is issued.
	Session string `json:"-"`

	OnResponse func(*Account)
}

func (e RegisterAccountMessage) Type() string { return "account.register" }

// RegisterAccountHandler orchestrates single account creation: schema gate,
// mail normalization and availability, credential hashing, persistence, and
// session binding run in order; confirmation mail and default group
// attachment run detached after the response.
type RegisterAccountHandler struct {
	repo     RepositoryManager
	sessions SessionStore
	notifier Notifier
	logger   Logger
	pending  sync.WaitGroup
}

func NewRegisterAccountHandler(repo RepositoryManager, sessions SessionStore) *RegisterAccountHandler {
	return &RegisterAccountHandler{
		repo:     repo,
		sessions: sessions,
		notifier: printNotifier{},
		logger:   defLogger{},
	}
}

func (h *RegisterAccountHandler) WithNotifier(n Notifier) *RegisterAccountHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

func (h *RegisterAccountHandler) WithLogger(l Logger) *RegisterAccountHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *RegisterAccountHandler) Execute(ctx context.Context, event RegisterAccountMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during account registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterAccountHandler) execute(ctx context.Context, event RegisterAccountMessage) error {
	payload := CreateAccountPayload{
		Name:        event.Name,
		Surname:     event.Surname,
		Mail:        event.Mail,
		Password:    event.Password,
		Description: event.Description,
		Residence:   event.Residence,
		Birthdate:   event.Birthdate,
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration payload")
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	mail := NormalizeMail(event.Mail)

	available, err := h.repo.Accounts().IsMailAvailable(ctx, mail)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check mail availability")
	}
	if !available {
		return ErrMailTaken
	}

	name, surname := SplitDisplayName(event.Name, event.Surname)

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	account := &Account{
		Name:         name,
		Surname:      surname,
		Email:        mail,
		PasswordHash: hash,
		Strategy:     StrategyDefault,
		Verified:     false,
		Type:         TypeUser,
		Description:  event.Description,
		Residence:    event.Residence,
		Birthdate:    event.Birthdate,
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if account, err = h.repo.Accounts().RegisterTx(ctx, tx, account); err != nil {
			if goerrors.Is(err, ErrMailTaken) {
				return err
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create account")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "account registration transaction failed")
	}

	if event.Session != "" {
		binding := SessionBinding{
			AccountID: account.ID,
			Email:     account.Email,
			Strategy:  account.Strategy,
		}
		if err := h.sessions.Bind(ctx, event.Session, binding); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to bind session to account")
		}
	}

	if event.OnResponse != nil {
		event.OnResponse(account)
	}

	h.pending.Add(1)
	go h.finalize(account)

	return nil
}

// finalize runs the post creation side effects. Failures are logged only:
// they never reach the already answered caller and never roll back the
// committed account.
func (h *RegisterAccountHandler) finalize(account *Account) {
	defer h.pending.Done()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	msg := ConfirmationMessage{
		Name:      account.Name,
		Email:     account.Email,
		AccountID: account.ID,
	}
	if err := h.notifier.SendRegistrationConfirmation(ctx, msg); err != nil {
		h.logger.Error("registration confirmation dispatch failed",
			"error", err,
			"account_id", account.ID.String(),
		)
	}

	if _, err := h.repo.AttachDefaultGroup(ctx, account.ID); err != nil {
		h.logger.Error("default group attachment failed",
			"error", err,
			"account_id", account.ID.String(),
		)
	}
}

// Wait blocks until detached post creation work has drained. Meant for
// graceful shutdown and tests.
func (h *RegisterAccountHandler) Wait() {
	h.pending.Wait()
}

// NormalizeMail lowercases a mail address; mail uniqueness is
// case insensitive.
func NormalizeMail(mail string) string {
	return strings.ToLower(strings.TrimSpace(mail))
}

// SplitDisplayName derives a surname from the display name when none was
// supplied: everything after the last whitespace boundary becomes the
// surname. Single word names keep an empty surname. This is a best effort
// heuristic, not a strict parse.
func SplitDisplayName(name, surname string) (string, string) {
	if surname != "" {
		return name, surname
	}

	trimmed := strings.TrimSpace(name)
	fields := strings.Fields(trimmed)
	if len(fields) < 2 {
		return trimmed, ""
	}

	last := fields[len(fields)-1]
	return strings.Join(fields[:len(fields)-1], " "), last
}
