// pkg/dberr/user_test.go

package dberr

import (
	"errors"
	"fmt"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestIsExpectedUserError(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		assert.True(t, IsExpectedUserError(NewUserError("bad input %q", "x")))
	})

	t.Run("marked", func(t *testing.T) {
		err := MarkUserError(ErrAuthenticationFailed)
		assert.True(t, IsExpectedUserError(err))
		assert.ErrorIs(t, err, ErrAuthenticationFailed)
	})

	t.Run("wrapped", func(t *testing.T) {
		err := cerr.Wrap(MarkUserError(ErrDuplicateName), "adding record")
		assert.True(t, IsExpectedUserError(err))
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("plain error", func(t *testing.T) {
		assert.False(t, IsExpectedUserError(errors.New("boom")))
	})

	t.Run("nil mark", func(t *testing.T) {
		assert.NoError(t, MarkUserError(nil))
	})
}

func TestUserErrorMessagePassthrough(t *testing.T) {
	err := MarkUserError(fmt.Errorf("%w: %q", ErrNotFound, "db1"))
	assert.Equal(t, `database not found: "db1"`, err.Error())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(NewUserError("fixable")))
	assert.Equal(t, 2, ExitCode(cerr.Wrap(MarkUserError(ErrNotFound), "ctx")))
	assert.Equal(t, 1, ExitCode(errors.New("unexpected")))
	assert.Equal(t, 1, ExitCode(ErrHealthCheckTimeout))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrAuthenticationFailed,
		ErrVaultNotFound,
		ErrDuplicateName,
		ErrNotFound,
		ErrUnsupportedType,
		ErrDecryptionFailed,
		ErrHealthCheckTimeout,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}
