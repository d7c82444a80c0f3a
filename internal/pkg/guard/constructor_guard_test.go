package guard_test

import (
	"errors"
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("properly_constructed_guard_returns_nil", func(t *testing.T) {
		// Given
		g := guard.NewConstructorGuard()

		// When
		err := g.Validate(errors.New("not constructed"))

		// Then
		require.NoError(t, err)
		require.NoError(t, g.Validate(nil))
	})

	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("invoice not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		require.ErrorIs(t, err, guard.ErrDefaultConstructorGuard)
		assert.Equal(t, "object must be created via its constructor", err.Error())
	})
}

// TestConstructorGuardEmbeddedInCommand shows the pattern every command and query follows.
func TestConstructorGuardEmbeddedInCommand(t *testing.T) {
	errNotConstructed := errors.New("ApproveCommand must be created via NewApproveCommand")

	type approveCommand struct {
		notes string
		guard guard.ConstructorGuard
	}

	newApproveCommand := func(notes string) approveCommand {
		return approveCommand{notes: notes, guard: guard.NewConstructorGuard()}
	}

	validate := func(c approveCommand) error {
		return c.guard.Validate(errNotConstructed)
	}

	testCases := []struct {
		name    string
		command approveCommand
		wantErr error
	}{
		{name: "built_by_constructor", command: newApproveCommand("looks fine")},
		{name: "zero_value", command: approveCommand{notes: "bypassed"}, wantErr: errNotConstructed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := validate(tc.command)
			if tc.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestConstructorGuardConcurrency(t *testing.T) {
	g := guard.NewConstructorGuard()
	validationError := errors.New("not constructed")
	done := make(chan error, 50)

	for range 50 {
		go func() {
			done <- g.Validate(validationError)
		}()
	}

	for range 50 {
		require.NoError(t, <-done)
	}
}

func BenchmarkConstructorGuard_Validate(b *testing.B) {
	g := guard.NewConstructorGuard()
	err := errors.New("not constructed")
	b.ResetTimer()
	for range b.N {
		_ = g.Validate(err)
	}
}
