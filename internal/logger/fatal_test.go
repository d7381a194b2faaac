package logger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunPassesThroughOtherPanics(t *testing.T) {
	require.PanicsWithValue(t, "not fatal", func() {
		_ = Run(context.Background(), func(context.Context) error {
			panic("not fatal")
		})
	})
}

func TestRunReturnsBodyError(t *testing.T) {
	boom := errors.New("boom")
	err := Run(context.Background(), func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.False(t, IsFatal(err))
}

func TestIsFatalThroughWrapping(t *testing.T) {
	fe := newFatalError("stop", nil)
	require.True(t, IsFatal(fmt.Errorf("task failed: %w", fe)))
	require.False(t, IsFatal(errors.New("stop")))
	require.False(t, IsFatal(nil))
}

func TestFatalErrorMessages(t *testing.T) {
	cause := errors.New("cause")
	tests := []struct {
		err      *FatalError
		expected string
	}{
		{newFatalError("msg", nil), "msg"},
		{newFatalError("msg", cause), "msg: cause"},
		{newFatalError("", cause), "cause"},
		{newFatalError("", nil), "fatal error"},
	}

	for _, tt := range tests {
		require.Equal(t, tt.expected, tt.err.Error())
		require.Equal(t, tt.expected, fmt.Sprintf("%s", tt.err))
		require.Equal(t, tt.expected, fmt.Sprintf("%v", tt.err))
	}
}

func TestFatalErrorFormatStack(t *testing.T) {
	err := Run(context.Background(), func(ctx context.Context) error {
		Fatal(ctx, func() string { return "stop here" })
		return nil
	})

	var fe *FatalError
	require.ErrorAs(t, err, &fe)
	require.NotEmpty(t, fe.StackTrace())

	detailed := fmt.Sprintf("%+v", fe)
	require.Contains(t, detailed, "stop here")
	require.Contains(t, detailed, "TestFatalErrorFormatStack")
}
