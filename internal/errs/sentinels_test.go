package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAlreadyExists_IsNotAllowed(t *testing.T) {
	require.ErrorIs(t, ErrAlreadyExists, ErrNotAllowed)
	require.ErrorIs(t, AlreadyExistsf("dup %s", "x"), ErrNotAllowed)
	require.False(t, errors.Is(ErrNotAllowed, ErrAlreadyExists))
}

func TestError_KindAndMessage(t *testing.T) {
	err := NotFoundf("Project %s does not exist!", "p1")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, "Project p1 does not exist!", err.Error())

	wrapped := fmt.Errorf("create task: %w", err)
	require.ErrorIs(t, wrapped, ErrNotFound)
	require.Equal(t, "Project p1 does not exist!", Message(wrapped))

	require.Equal(t, "boom", Message(errors.New("boom")))
	require.Equal(t, "unauthorized", (&Error{Kind: ErrUnauthorized}).Error())
}
