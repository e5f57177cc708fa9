package users_test

import (
	"context"
	"database/sql"
	"sync"

	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockRepositoryManager implements users.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	return args.Error(0)
}

func (m *MockRepositoryManager) Accounts() users.Accounts {
	args := m.Called()
	return args.Get(0).(users.Accounts)
}

func (m *MockRepositoryManager) Groups() repository.Repository[*users.Group] {
	args := m.Called()
	return args.Get(0).(repository.Repository[*users.Group])
}

func (m *MockRepositoryManager) AttachDefaultGroup(ctx context.Context, accountID uuid.UUID) (*users.Group, error) {
	args := m.Called(ctx, accountID)
	group, _ := args.Get(0).(*users.Group)
	return group, args.Error(1)
}

// MockAccounts implements users.Accounts for the methods the handlers
// exercise; the embedded repository interface covers the rest.
type MockAccounts struct {
	mock.Mock
	repository.Repository[*users.Account]
}

func (m *MockAccounts) IsMailAvailable(ctx context.Context, mail string) (bool, error) {
	args := m.Called(ctx, mail)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccounts) IsMailAvailableTx(ctx context.Context, tx bun.IDB, mail string) (bool, error) {
	args := m.Called(ctx, tx, mail)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccounts) Register(ctx context.Context, record *users.Account) (*users.Account, error) {
	args := m.Called(ctx, record)
	account, _ := args.Get(0).(*users.Account)
	return account, args.Error(1)
}

func (m *MockAccounts) RegisterTx(ctx context.Context, tx bun.IDB, record *users.Account) (*users.Account, error) {
	args := m.Called(ctx, tx, record)
	account, _ := args.Get(0).(*users.Account)
	return account, args.Error(1)
}

func (m *MockAccounts) Create(ctx context.Context, record *users.Account, criteria ...repository.InsertCriteria) (*users.Account, error) {
	args := m.Called(ctx, record, criteria)
	account, _ := args.Get(0).(*users.Account)
	return account, args.Error(1)
}

func (m *MockAccounts) CreateTx(ctx context.Context, tx bun.IDB, record *users.Account, criteria ...repository.InsertCriteria) (*users.Account, error) {
	args := m.Called(ctx, tx, record, criteria)
	account, _ := args.Get(0).(*users.Account)
	return account, args.Error(1)
}

func (m *MockAccounts) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*users.Account, error) {
	args := m.Called(ctx, id, criteria)
	account, _ := args.Get(0).(*users.Account)
	return account, args.Error(1)
}

func (m *MockAccounts) UpdateTx(ctx context.Context, tx bun.IDB, record *users.Account, criteria ...repository.UpdateCriteria) (*users.Account, error) {
	args := m.Called(ctx, tx, record, criteria)
	account, _ := args.Get(0).(*users.Account)
	return account, args.Error(1)
}

func (m *MockAccounts) ListAll(ctx context.Context) ([]*users.Account, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*users.Account)
	return records, args.Error(1)
}

func (m *MockAccounts) UpdateCredential(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccounts) UpdateCredentialTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, tx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccounts) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccounts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockNotifier implements users.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendRegistrationConfirmation(ctx context.Context, msg users.ConfirmationMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockNotifier) SendGeneratedCredential(ctx context.Context, msg users.CredentialMessage) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// recordingNotifier captures outbound messages for concurrent flows where
// call ordering is not deterministic.
type recordingNotifier struct {
	mu            sync.Mutex
	confirmations []users.ConfirmationMessage
	credentials   []users.CredentialMessage
}

func (r *recordingNotifier) SendRegistrationConfirmation(_ context.Context, msg users.ConfirmationMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmations = append(r.confirmations, msg)
	return nil
}

func (r *recordingNotifier) SendGeneratedCredential(_ context.Context, msg users.CredentialMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credentials = append(r.credentials, msg)
	return nil
}

func (r *recordingNotifier) Credentials() []users.CredentialMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]users.CredentialMessage, len(r.credentials))
	copy(out, r.credentials)
	return out
}

// stubAccounts is an in memory Accounts used by the bulk provisioning tests,
// where per item expectations would race. The embedded repository interface
// covers methods the flow never touches.
type stubAccounts struct {
	repository.Repository[*users.Account]

	mu      sync.Mutex
	taken   map[string]bool
	created []*users.Account
}

func newStubAccounts(taken ...string) *stubAccounts {
	s := &stubAccounts{taken: map[string]bool{}}
	for _, mail := range taken {
		s.taken[mail] = true
	}
	return s
}

func (s *stubAccounts) IsMailAvailable(_ context.Context, mail string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.taken[mail], nil
}

func (s *stubAccounts) IsMailAvailableTx(ctx context.Context, _ bun.IDB, mail string) (bool, error) {
	return s.IsMailAvailable(ctx, mail)
}

func (s *stubAccounts) Register(_ context.Context, record *users.Account) (*users.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.taken[record.Email] {
		return nil, users.ErrMailTaken
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	s.taken[record.Email] = true
	s.created = append(s.created, record)
	return record, nil
}

func (s *stubAccounts) RegisterTx(ctx context.Context, _ bun.IDB, record *users.Account) (*users.Account, error) {
	return s.Register(ctx, record)
}

func (s *stubAccounts) Create(ctx context.Context, record *users.Account, _ ...repository.InsertCriteria) (*users.Account, error) {
	return s.Register(ctx, record)
}

func (s *stubAccounts) CreateTx(ctx context.Context, _ bun.IDB, record *users.Account, _ ...repository.InsertCriteria) (*users.Account, error) {
	return s.Register(ctx, record)
}

func (s *stubAccounts) ListAll(context.Context) ([]*users.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*users.Account, len(s.created))
	copy(out, s.created)
	return out, nil
}

func (s *stubAccounts) UpdateCredential(context.Context, uuid.UUID, string) error {
	return nil
}

func (s *stubAccounts) UpdateCredentialTx(context.Context, bun.IDB, uuid.UUID, string) error {
	return nil
}

func (s *stubAccounts) DeleteByID(context.Context, uuid.UUID) error {
	return nil
}

func (s *stubAccounts) DeleteByIDTx(context.Context, bun.IDB, uuid.UUID) error {
	return nil
}

func (s *stubAccounts) Created() []*users.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*users.Account, len(s.created))
	copy(out, s.created)
	return out
}

// stubManager wires stubAccounts behind the RepositoryManager surface
type stubManager struct {
	users.RepositoryManager

	accounts *stubAccounts

	mu     sync.Mutex
	groups []uuid.UUID
}

func newStubManager(accounts *stubAccounts) *stubManager {
	return &stubManager{accounts: accounts}
}

func (m *stubManager) Accounts() users.Accounts {
	return m.accounts
}

func (m *stubManager) RunInTx(ctx context.Context, _ *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *stubManager) AttachDefaultGroup(_ context.Context, accountID uuid.UUID) (*users.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groups = append(m.groups, accountID)
	return &users.Group{
		ID:      uuid.New(),
		OwnerID: accountID,
		Name:    users.DefaultGroupName,
		Kind:    users.GroupKindPrivate,
	}, nil
}

func (m *stubManager) AttachedGroups() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]uuid.UUID, len(m.groups))
	copy(out, m.groups)
	return out
}
