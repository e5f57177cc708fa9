package users

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var UpdateAccountCredentialSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"revision" = "acc"."revision" + 1
WHERE
	"acc"."deleted_at" IS NULL
AND (
	"acc"."id" = ?
) RETURNING *;`

type Accounts interface {
	repository.Repository[*Account]

	IsMailAvailable(ctx context.Context, mail string) (bool, error)
	IsMailAvailableTx(ctx context.Context, tx bun.IDB, mail string) (bool, error)

	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	ListAll(ctx context.Context) ([]*Account, error)

	UpdateCredential(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateCredentialTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error

	DeleteByID(ctx context.Context, id uuid.UUID) error
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) IsMailAvailable(ctx context.Context, mail string) (bool, error) {
	return a.IsMailAvailableTx(ctx, a.db, mail)
}

func (a *accounts) IsMailAvailableTx(ctx context.Context, tx bun.IDB, mail string) (bool, error) {
	exists, err := tx.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.email = ?", mail).
		Exists(ctx)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (a *accounts) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

// RegisterTx persists a new account, converting mail unique constraint
// violations into ErrMailTaken. The availability pre-check and the insert
// are not atomic; the constraint is the backstop for the race.
func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	record, err := a.CreateTx(ctx, tx, record)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrMailTaken
		}
		return nil, err
	}
	return record, nil
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) ListAll(ctx context.Context) ([]*Account, error) {
	var records []*Account
	err := a.db.NewSelect().
		Model(&records).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *accounts) UpdateCredential(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.UpdateCredentialTx(ctx, a.db, id, passwordHash)
}

func (a *accounts) UpdateCredentialTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, UpdateAccountCredentialSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *accounts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return a.DeleteByIDTx(ctx, a.db, id)
}

func (a *accounts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().
		Model((*Account)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.Type == "" {
		record.Type = TypeUser
	}

	if record.Strategy == "" {
		record.Strategy = StrategyDefault
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
