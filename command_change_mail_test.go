package users_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-users"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChangeMailHandlerAlwaysFails(t *testing.T) {
	handler := users.NewChangeMailHandler()

	err := handler.Execute(context.Background(), users.ChangeMailMessage{
		AccountID: uuid.New(),
		Mail:      "new@example.com",
	})
	require.ErrorIs(t, err, users.ErrMailChangeNotImplemented)
}
