package helpers

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"testing"
	"time"

	"stock-analysis/src/logger"

	"github.com/stretchr/testify/require"
)

func TestErrorTypesUnwrap(t *testing.T) {
	err := error(NewFileParseError("data/a.yaml", fs.ErrPermission))

	var parseErr *FileParseError
	require.True(t, errors.As(err, &parseErr))
	require.ErrorIs(t, err, fs.ErrPermission)
	require.Contains(t, err.Error(), "data/a.yaml")

	var persistErr *PersistenceError
	require.False(t, errors.As(err, &persistErr))
}

func TestRecordValidationErrorMessage(t *testing.T) {
	err := NewRecordValidationError("SBIN@2023-10-30", "missing close")
	require.Equal(t, "invalid record SBIN@2023-10-30: missing close", err.Error())
}

func TestRetryWithBackoffEventuallySucceeds(t *testing.T) {
	log := logger.NewLoggerWithWriter(io.Discard, "DEBUG", "test")
	calls := 0

	err := RetryWithBackoff(context.Background(), log, "connect", 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	})

	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestRetryWithBackoffGivesUp(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	err := RetryWithBackoff(context.Background(), nil, "connect", 2, time.Millisecond, func() error {
		calls++
		return boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 2, calls)
}
