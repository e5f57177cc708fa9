package users

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// DefaultProvisionWorkers bounds concurrent bulk provisioning work so a
// large payload cannot fan out without backpressure.
const DefaultProvisionWorkers = 4

type BulkProvisionMessage struct {
	Descriptors []ProvisioningDescriptor `json:"descriptors"`

	// ActorType is the capability of the caller; only administrative types
	// may provision accounts in bulk.
	ActorType AccountType `json:"-"`

	// UseHashid derives deterministic account ids from the mail address
	UseHashid bool `json:"-"`
}

func (e BulkProvisionMessage) Type() string { return "account.bulk_provision" }

// ProvisionResult is the per item outcome record. The aggregate is not
// reported back to the caller; observers receive results as items finish.
type ProvisionResult struct {
	Descriptor ProvisioningDescriptor
	AccountID  uuid.UUID
	Err        error
}

// BulkProvisionHandler creates accounts from minimal descriptors, each with
// a generated credential mailed once to its owner. Items are independent:
// one item's failure never aborts or blocks the others. The caller gets an
// immediate acknowledgment; processing continues detached.
type BulkProvisionHandler struct {
	repo     RepositoryManager
	notifier Notifier
	logger   Logger
	workers  int
	onResult func(ProvisionResult)
	pending  sync.WaitGroup
}

func NewBulkProvisionHandler(repo RepositoryManager) *BulkProvisionHandler {
	return &BulkProvisionHandler{
		repo:     repo,
		notifier: printNotifier{},
		logger:   defLogger{},
		workers:  DefaultProvisionWorkers,
	}
}

func (h *BulkProvisionHandler) WithNotifier(n Notifier) *BulkProvisionHandler {
	if n != nil {
		h.notifier = n
	}
	return h
}

func (h *BulkProvisionHandler) WithLogger(l Logger) *BulkProvisionHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *BulkProvisionHandler) WithWorkers(n int) *BulkProvisionHandler {
	if n > 0 {
		h.workers = n
	}
	return h
}

// WithResultObserver registers a callback invoked once per descriptor with
// the item's outcome. Observers run on worker goroutines.
func (h *BulkProvisionHandler) WithResultObserver(fn func(ProvisionResult)) *BulkProvisionHandler {
	h.onResult = fn
	return h
}

func (h *BulkProvisionHandler) Execute(ctx context.Context, event BulkProvisionMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during bulk provisioning",
		)
	default:
		return h.execute(event)
	}
}

func (h *BulkProvisionHandler) execute(event BulkProvisionMessage) error {
	if !event.ActorType.IsAdministrative() {
		return ErrAdminRequired
	}

	jobs := make(chan ProvisioningDescriptor)

	workers := h.workers
	if workers > len(event.Descriptors) {
		workers = len(event.Descriptors)
	}

	for i := 0; i < workers; i++ {
		h.pending.Add(1)
		go func() {
			defer h.pending.Done()
			for descriptor := range jobs {
				h.report(h.provision(descriptor, event.UseHashid))
			}
		}()
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		for _, descriptor := range event.Descriptors {
			jobs <- descriptor
		}
		close(jobs)
	}()

	return nil
}

// provision runs the reduced registration flow for one descriptor. Every
// failure abandons this item only.
func (h *BulkProvisionHandler) provision(descriptor ProvisioningDescriptor, useHashid bool) ProvisionResult {
	result := ProvisionResult{Descriptor: descriptor}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	mail := NormalizeMail(descriptor.Email)
	if mail == "" || descriptor.Name == "" {
		result.Err = goerrors.New("descriptor requires name and mail", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
		h.logger.Error("provisioning descriptor rejected", "error", result.Err)
		return result
	}

	available, err := h.repo.Accounts().IsMailAvailable(ctx, mail)
	if err != nil {
		result.Err = goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check mail availability")
		h.logger.Error("provisioning availability check failed", "error", err, "mail", mail)
		return result
	}
	if !available {
		result.Err = ErrMailTaken
		h.logger.Info("provisioning skipped, mail already registered", "mail", mail)
		return result
	}

	password, err := GeneratePassword(GeneratedPasswordLength, false)
	if err != nil {
		result.Err = err
		h.logger.Error("provisioning credential generation failed", "error", err, "mail", mail)
		return result
	}

	hash, err := HashPassword(password)
	if err != nil {
		result.Err = goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash generated credential")
		h.logger.Error("provisioning credential hash failed", "error", err, "mail", mail)
		return result
	}

	name, surname := SplitDisplayName(descriptor.Name, "")

	account := &Account{
		Name:         name,
		Surname:      surname,
		Email:        mail,
		PasswordHash: hash,
		Strategy:     StrategyDefault,
		Verified:     false,
		Type:         TypeUser,
	}

	if useHashid {
		if id, err := hashid.NewUUID(mail); err == nil {
			account.ID = id
		}
	}

	if account, err = h.repo.Accounts().Register(ctx, account); err != nil {
		result.Err = err
		h.logger.Error("provisioning persistence failed", "error", err, "mail", mail)
		return result
	}

	result.AccountID = account.ID

	msg := CredentialMessage{
		Name:     account.Name,
		Email:    account.Email,
		Password: password,
	}
	if err := h.notifier.SendGeneratedCredential(ctx, msg); err != nil {
		h.logger.Error("provisioning credential dispatch failed",
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

	return result
}

func (h *BulkProvisionHandler) report(result ProvisionResult) {
	if h.onResult != nil {
		h.onResult(result)
	}
}

// Wait blocks until all dispatched items have finished. Meant for graceful
// shutdown and tests.
func (h *BulkProvisionHandler) Wait() {
	h.pending.Wait()
}
