package users

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AccountType is the account's role tag
type AccountType string

const (
	// TypeUser is a regular account (i.e. view, edit own resources)
	TypeUser AccountType = "user"
	// TypeAdmin is an administrative account (i.e. bulk provisioning, list all)
	TypeAdmin AccountType = "admin"
	// TypeOwner is the top administrative account
	TypeOwner AccountType = "owner"
)

// AuthStrategy tags the mechanism an account authenticates with
type AuthStrategy = string

const (
	// StrategyDefault is password based authentication
	StrategyDefault AuthStrategy = "default"
)

// Account is the canonical user identity record
type Account struct {
	bun.BaseModel    `bun:"table:accounts,alias:acc"`
	ID               uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Revision         int64        `bun:"revision,nullzero,default:1" json:"revision,omitempty"`
	Type             AccountType  `bun:"account_type,notnull" json:"account_type,omitempty"`
	Name             string       `bun:"name,notnull" json:"name,omitempty"`
	Surname          string       `bun:"surname" json:"surname,omitempty"`
	Email            string       `bun:"email,notnull" json:"email,omitempty"`
	PasswordHash     string       `bun:"password_hash,notnull" json:"-"`
	Strategy         AuthStrategy `bun:"strategy,notnull" json:"strategy,omitempty"`
	Verified         bool         `bun:"is_verified" json:"is_verified,omitempty"`
	Birthdate        string       `bun:"birthdate" json:"birthdate,omitempty"`
	Residence        string       `bun:"residence" json:"residence,omitempty"`
	Description      string       `bun:"description" json:"description,omitempty"`
	Picture          string       `bun:"picture" json:"picture,omitempty"`
	SubscribedGroups []string     `bun:"subscribed_groups" json:"subscribed_groups,omitempty"`
	CreatedAt        *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt        *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt        *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Subscribe will append a group reference to the account
func (a *Account) Subscribe(groupID string) *Account {
	for _, id := range a.SubscribedGroups {
		if id == groupID {
			return a
		}
	}
	a.SubscribedGroups = append(a.SubscribedGroups, groupID)
	return a
}

// GroupKind tags what a group is for
type GroupKind = string

const (
	// GroupKindPrivate is the default group attached to every new account
	GroupKindPrivate GroupKind = "private"
	// GroupKindShared is a group multiple accounts subscribe to
	GroupKindShared GroupKind = "shared"
)

// Group is the default associated resource attached to new accounts
type Group struct {
	bun.BaseModel `bun:"table:groups,alias:grp"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	OwnerID       uuid.UUID  `bun:"owner_id,notnull,type:uuid" json:"owner_id,omitempty"`
	Name          string     `bun:"name,notnull" json:"name,omitempty"`
	Kind          GroupKind  `bun:"kind,notnull" json:"kind,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// ProvisioningDescriptor is the minimal input for bulk account creation.
// Descriptors are transient, they are never persisted as-is.
type ProvisioningDescriptor struct {
	Name  string `json:"name"`
	Email string `json:"mail"`
}
