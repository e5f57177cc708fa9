package users_test

import (
	"context"
	"database/sql"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func TestUpdateProfileHandlerMergesSuppliedFields(t *testing.T) {
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}

	accountID := uuid.New()
	var patch *users.Account

	repo.On("Accounts").Return(accounts)
	accounts.On("UpdateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			patch = args.Get(2).(*users.Account)
		}).
		Return(&users.Account{
			ID:          accountID,
			Name:        "Ada",
			Description: "mathematician",
		}, nil).Once()

	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()

	var responded *users.Account

	handler := users.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), users.UpdateProfileMessage{
		AccountID: accountID,
		Payload: users.UpdateAccountPayload{
			Description: "mathematician",
		},
		OnResponse: func(a *users.Account) {
			responded = a
		},
	})
	require.NoError(t, err)
	require.NotNil(t, responded)
	assert.Equal(t, "mathematician", responded.Description)

	// only supplied fields travel in the patch
	require.NotNil(t, patch)
	assert.Equal(t, accountID, patch.ID)
	assert.Equal(t, "mathematician", patch.Description)
	assert.Empty(t, patch.Name)
	assert.Empty(t, patch.PasswordHash)

	repo.AssertExpectations(t)
	accounts.AssertExpectations(t)
}

func TestUpdateProfileHandlerRejectsEmptyPayload(t *testing.T) {
	repo := &MockRepositoryManager{}

	handler := users.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), users.UpdateProfileMessage{
		AccountID: uuid.New(),
		Payload:   users.UpdateAccountPayload{},
	})
	require.Error(t, err)

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, goerrors.CategoryValidation, richErr.Category)

	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProfileHandlerRefusesMailChange(t *testing.T) {
	repo := &MockRepositoryManager{}

	handler := users.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), users.UpdateProfileMessage{
		AccountID: uuid.New(),
		Payload: users.UpdateAccountPayload{
			Mail: "new@example.com",
		},
	})
	require.ErrorIs(t, err, users.ErrMailChangeNotImplemented)

	repo.AssertNotCalled(t, "RunInTx", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateProfileHandlerHashesReplacementPassword(t *testing.T) {
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}

	accountID := uuid.New()
	var patch *users.Account

	repo.On("Accounts").Return(accounts)
	accounts.On("UpdateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			patch = args.Get(2).(*users.Account)
		}).
		Return(&users.Account{ID: accountID}, nil).Once()
	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.NoError(t, fn(args.Get(0).(context.Context), tx))
		}).Once()

	handler := users.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), users.UpdateProfileMessage{
		AccountID: accountID,
		Payload: users.UpdateAccountPayload{
			Password: "replacement123",
		},
	})
	require.NoError(t, err)

	require.NotNil(t, patch)
	assert.NotEqual(t, "replacement123", patch.PasswordHash)
	assert.NoError(t, users.ComparePasswordAndHash("replacement123", patch.PasswordHash))
}

func TestUpdateProfileHandlerAccountNotFound(t *testing.T) {
	repo := &MockRepositoryManager{}
	accounts := &MockAccounts{}

	repo.On("Accounts").Return(accounts)
	accounts.On("UpdateTx", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, repository.NewRecordNotFound()).Once()
	repo.On("RunInTx", mock.Anything, (*sql.TxOptions)(nil), mock.Anything).
		Return(users.ErrAccountNotFound).
		Run(func(args mock.Arguments) {
			fn := args.Get(2).(func(context.Context, bun.Tx) error)
			var tx bun.Tx
			require.ErrorIs(t, fn(args.Get(0).(context.Context), tx), users.ErrAccountNotFound)
		}).Once()

	handler := users.NewUpdateProfileHandler(repo)
	err := handler.Execute(context.Background(), users.UpdateProfileMessage{
		AccountID: uuid.New(),
		Payload: users.UpdateAccountPayload{
			Description: "gone",
		},
	})
	require.ErrorIs(t, err, users.ErrAccountNotFound)
}
