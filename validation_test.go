package users_test

import (
	"testing"

	"github.com/goliatone/go-users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountPayloadValidate(t *testing.T) {
	payload := users.CreateAccountPayload{
		Name:     "Ada Lovelace",
		Mail:     "ada@example.com",
		Password: "secret12345",
	}
	require.NoError(t, payload.Validate())

	testCases := []struct {
		name    string
		payload users.CreateAccountPayload
	}{
		{
			name: "missing name",
			payload: users.CreateAccountPayload{
				Mail:     "ada@example.com",
				Password: "secret12345",
			},
		},
		{
			name: "missing mail",
			payload: users.CreateAccountPayload{
				Name:     "Ada Lovelace",
				Password: "secret12345",
			},
		},
		{
			name: "malformed mail",
			payload: users.CreateAccountPayload{
				Name:     "Ada Lovelace",
				Mail:     "not-a-mail",
				Password: "secret12345",
			},
		},
		{
			name: "short password",
			payload: users.CreateAccountPayload{
				Name:     "Ada Lovelace",
				Mail:     "ada@example.com",
				Password: "short",
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.payload.Validate())
		})
	}
}

func TestUpdateAccountPayloadValidate(t *testing.T) {
	require.Error(t, users.UpdateAccountPayload{}.Validate())

	assert.True(t, users.UpdateAccountPayload{}.IsEmpty())
	assert.False(t, users.UpdateAccountPayload{Description: "x"}.IsEmpty())

	require.NoError(t, users.UpdateAccountPayload{Description: "updated"}.Validate())
	require.NoError(t, users.UpdateAccountPayload{Name: "Ada", Residence: "London"}.Validate())

	// optional fields still carry their shared constraints
	require.Error(t, users.UpdateAccountPayload{Password: "short"}.Validate())
	require.Error(t, users.UpdateAccountPayload{Mail: "not-a-mail"}.Validate())
}
