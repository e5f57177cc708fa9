package users

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultGroupName is the name given to the group attached on registration
var DefaultGroupName = "personal"

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Accounts() Accounts
	Groups() repository.Repository[*Group]

	// AttachDefaultGroup creates the private group every new account owns and
	// appends its reference to the account's subscribed groups.
	AttachDefaultGroup(ctx context.Context, accountID uuid.UUID) (*Group, error)
}

func NewGroupsRepository(db *bun.DB) repository.Repository[*Group] {
	handlers := repository.ModelHandlers[*Group]{
		NewRecord: func() *Group {
			return &Group{}
		},
		GetID: func(record *Group) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Group, id uuid.UUID) {
			record.ID = id
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db       *bun.DB
	accounts Accounts
	groups   repository.Repository[*Group]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:       db,
		accounts: NewAccountsRepository(db),
		groups:   NewGroupsRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.accounts == nil {
		return errors.New("repository accounts should be initialized")
	}

	if m.groups == nil {
		return errors.New("repository groups should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Accounts() Accounts {
	return m.accounts
}

func (m mngr) Groups() repository.Repository[*Group] {
	return m.groups
}

func (m mngr) AttachDefaultGroup(ctx context.Context, accountID uuid.UUID) (*Group, error) {
	var group *Group

	err := m.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// the read must ride the transaction's connection
		account, err := m.accounts.GetByIDTx(ctx, tx, accountID.String())
		if err != nil {
			return err
		}

		group = &Group{
			ID:      uuid.New(),
			OwnerID: account.ID,
			Name:    DefaultGroupName,
			Kind:    GroupKindPrivate,
		}

		if group, err = m.groups.CreateTx(ctx, tx, group); err != nil {
			return err
		}

		patch := &Account{
			ID:               account.ID,
			SubscribedGroups: append(account.SubscribedGroups, group.ID.String()),
		}

		_, err = m.accounts.UpdateTx(ctx, tx, patch, repository.UpdateByID(account.ID.String()))
		return err
	})

	if err != nil {
		return nil, err
	}

	return group, nil
}
