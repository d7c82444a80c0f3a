package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mzemanski-eng/claims-ebilling/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("userId", "123")

		assert.Equal(t, "userId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("userId", "123", cause)

		assert.Equal(t, "userId", err.ParamName)
		assert.Equal(t, "123", err.ID)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: userId, ID is: 123 (cause: database connection failed)",
			err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("Error with different ID types", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", 456)
		assert.Equal(t, "object not found: %!s(int=456)", err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("email")

		assert.Equal(t, "email", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: email", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("email", cause)

		assert.Equal(t, "email", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: email (cause: invalid format)", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("age", 150, 0, 120)

		assert.Equal(t, "age", err.ParamName)
		assert.Equal(t, 150, err.Value)
		assert.Equal(t, 0, err.Min)
		assert.Equal(t, 120, err.Max)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: 150 is age, min value is 0, max value is 120", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("NewValueIsOutOfRangeErrorWithCause", func(t *testing.T) {
		cause := errors.New("validation failed")
		err := errs.NewValueIsOutOfRangeErrorWithCause("score", -5, 0, 100, cause)

		assert.Equal(t, "score", err.ParamName)
		assert.Equal(t, -5, err.Value)
		assert.Equal(t, 0, err.Min)
		assert.Equal(t, 100, err.Max)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"value is invalid: -5 is score, min value is 0, max value is 100 (cause: validation failed)",
			err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("sanitize function with newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	t.Run("NewValueIsRequiredError", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("username")

		assert.Equal(t, "username", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is required: username", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})

	t.Run("NewValueIsRequiredErrorWithCause", func(t *testing.T) {
		cause := errors.New("missing required field")
		err := errs.NewValueIsRequiredErrorWithCause("username", cause)

		assert.Equal(t, "username", err.ParamName)
		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is required: username (cause: missing required field)", err.Error())
		assert.Equal(t, errs.ErrValueIsRequired, err.Unwrap())
	})
}

func TestInvalidTransitionError(t *testing.T) {
	err := errs.NewInvalidTransitionError("exception", "RESOLVED", "OPEN")

	assert.Equal(t, "exception", err.Entity)
	assert.Equal(t, "RESOLVED", err.Current)
	assert.Equal(t, "OPEN", err.Requested)
	assert.Equal(t, "invalid transition: exception cannot move from RESOLVED to OPEN", err.Error())
	require.ErrorIs(t, err, errs.ErrInvalidTransition)
}

func TestNotOpenError(t *testing.T) {
	err := errs.NewNotOpenError("exc-1", "RESOLVED")

	assert.Equal(t, "exception is not open: exc-1 is RESOLVED", err.Error())
	require.ErrorIs(t, err, errs.ErrNotOpen)
}

func TestUnauthorizedError(t *testing.T) {
	t.Run("NewUnauthorizedError", func(t *testing.T) {
		err := errs.NewUnauthorizedError("SUPPLIER", "approve")

		assert.Equal(t, "unauthorized: role SUPPLIER may not approve", err.Error())
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})

	t.Run("NewUnauthorizedErrorWithCause", func(t *testing.T) {
		err := errs.NewUnauthorizedErrorWithCause("SUPPLIER", "respond", errors.New("foreign supplier"))

		assert.Equal(t, "unauthorized: role SUPPLIER may not respond (cause: foreign supplier)", err.Error())
		require.ErrorIs(t, err, errs.ErrUnauthorized)
	})
}

func TestForeignSupplierError(t *testing.T) {
	err := errs.NewForeignSupplierError("SUPPLIER", "withdraw", "inv-1")

	assert.Equal(t, "unauthorized: role SUPPLIER may not withdraw (cause: invoice belongs to another supplier: inv-1)", err.Error())
	require.ErrorIs(t, err, errs.ErrUnauthorized)
	require.ErrorIs(t, err, errs.ErrForeignSupplier)
	assert.NotErrorIs(t, errs.NewUnauthorizedError("SUPPLIER", "approve"), errs.ErrForeignSupplier)
}

func TestAlreadyExportedAndStaleVersionErrors(t *testing.T) {
	exported := errs.NewAlreadyExportedError("inv-1")
	assert.Equal(t, "invoice already exported: inv-1", exported.Error())
	require.ErrorIs(t, exported, errs.ErrAlreadyExported)

	stale := errs.NewStaleVersionError("inv-1", "PENDING_CARRIER_REVIEW", 2)
	assert.Equal(t, "stale invoice version: invoice inv-1 is PENDING_CARRIER_REVIEW at version 2", stale.Error())
	require.ErrorIs(t, stale, errs.ErrStaleVersion)
}

func TestAuditWriteFailureError(t *testing.T) {
	cause := errors.New("disk full")
	err := errs.NewAuditWriteFailureError("INVOICE_APPROVED", cause)

	assert.Equal(t, "audit write failure: INVOICE_APPROVED (cause: disk full)", err.Error())
	require.ErrorIs(t, err, errs.ErrAuditWriteFailure)
	assert.Equal(t, cause, err.Cause)

	var target *errs.AuditWriteFailureError
	require.ErrorAs(t, fmt.Errorf("approve: %w", err), &target)
	assert.Equal(t, "INVOICE_APPROVED", target.EventType)
}

func TestSentinelErrors(t *testing.T) {
	t.Run("sentinel errors are defined", func(t *testing.T) {
		require.Error(t, errs.ErrObjectNotFound)
		require.Error(t, errs.ErrValueIsInvalid)
		require.Error(t, errs.ErrValueIsOutOfRange)
		require.Error(t, errs.ErrValueIsRequired)
		require.Error(t, errs.ErrInvalidTransition)
		require.Error(t, errs.ErrNotOpen)
		require.Error(t, errs.ErrUnauthorized)
		require.Error(t, errs.ErrAlreadyExported)
		require.Error(t, errs.ErrStaleVersion)
		require.Error(t, errs.ErrAuditWriteFailure)
	})

	t.Run("error messages match expectations", func(t *testing.T) {
		assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
		assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
		assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
		assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
		assert.Equal(t, "invalid transition", errs.ErrInvalidTransition.Error())
		assert.Equal(t, "audit write failure", errs.ErrAuditWriteFailure.Error())
	})
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	t.Run("errors.Is works with custom errors", func(t *testing.T) {
		objectNotFoundErr := errs.NewObjectNotFoundError("userId", "123")
		require.ErrorIs(t, objectNotFoundErr, errs.ErrObjectNotFound)

		valueInvalidErr := errs.NewValueIsInvalidError("email")
		require.ErrorIs(t, valueInvalidErr, errs.ErrValueIsInvalid)

		valueOutOfRangeErr := errs.NewValueIsOutOfRangeError("age", 150, 0, 120)
		require.ErrorIs(t, valueOutOfRangeErr, errs.ErrValueIsOutOfRange)

		valueRequiredErr := errs.NewValueIsRequiredError("username")
		require.ErrorIs(t, valueRequiredErr, errs.ErrValueIsRequired)

		staleErr := errs.NewStaleVersionError("inv-1", "PENDING_CARRIER_REVIEW", 1)
		require.ErrorIs(t, staleErr, errs.ErrStaleVersion)
	})
}
