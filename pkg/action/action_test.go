package action

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.livecheck/pkg/failure"
	"digital.vasic.livecheck/pkg/pipeline"
)

var errClosed = errors.New("socket closed")

type codeError struct{ code int }

func (e *codeError) Error() string { return fmt.Sprintf("code %d", e.code) }

func returning(err error) Func {
	return func(context.Context) error { return err }
}

func TestRun(t *testing.T) {
	assertion := failure.Fail("Client: 0 should be connected.")

	tests := []struct {
		name    string
		err     error
		failMsg string
		check   func(t *testing.T, got error)
	}{
		{
			name: "success",
			check: func(t *testing.T, got error) {
				assert.NoError(t, got)
			},
		},
		{
			name:    "assertion passes through",
			err:     assertion,
			failMsg: "custom",
			check: func(t *testing.T, got error) {
				assert.Same(t, assertion, got)
			},
		},
		{
			name: "unexpected error is verbatim",
			err:  errClosed,
			check: func(t *testing.T, got error) {
				assert.Same(t, errClosed, got)
				assert.False(t, failure.IsAssertion(got))
			},
		},
		{
			name:    "unexpected error with message",
			err:     errClosed,
			failMsg: "Publish failed.",
			check: func(t *testing.T, got error) {
				assert.True(t, failure.IsAssertion(got))
				assert.EqualError(t, got, "Publish failed.")
				assert.ErrorIs(t, got, errClosed)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, Run(context.Background(), returning(tc.err), tc.failMsg))
		})
	}
}

func TestShouldThrow(t *testing.T) {
	ctx := context.Background()

	t.Run("no error fails", func(t *testing.T) {
		err := ShouldThrow(ctx, returning(nil), "should throw")
		assert.True(t, failure.IsAssertion(err))
		assert.EqualError(t, err, "should throw")
	})

	t.Run("any error accepted without kinds", func(t *testing.T) {
		assert.NoError(t, ShouldThrow(ctx, returning(errClosed), "x"))
	})

	t.Run("matching Is kind", func(t *testing.T) {
		wrapped := fmt.Errorf("publish: %w", errClosed)
		assert.NoError(t, ShouldThrow(ctx, returning(wrapped), "x",
			Is(context.DeadlineExceeded), Is(errClosed)))
	})

	t.Run("matching As kind", func(t *testing.T) {
		assert.NoError(t, ShouldThrow(ctx,
			returning(&codeError{code: 4}), "x", As[*codeError]()))
	})

	t.Run("no matching kind fails", func(t *testing.T) {
		err := ShouldThrow(ctx, returning(errClosed), "wrong error",
			As[*codeError]())
		assert.True(t, failure.IsAssertion(err))
		assert.EqualError(t, err, "wrong error")
	})
}

func TestRegister_IsBarrier(t *testing.T) {
	var order []string
	tt := pipeline.New("")
	tt.Test(func(context.Context) error {
		time.Sleep(20 * time.Millisecond)
		order = append(order, "check")
		return nil
	}, false)
	Register(tt, func(context.Context) error {
		order = append(order, "action")
		return nil
	}, "")

	require.NoError(t, tt.Execute(context.Background()))
	assert.Equal(t, []string{"check", "action"}, order)
}

func TestRegister_Failure(t *testing.T) {
	tt := pipeline.New("")
	Register(tt, returning(errClosed), "Cannot publish.")

	err := tt.Execute(context.Background())
	assert.EqualError(t, err, "Cannot publish.")
}

func TestRegisterShouldThrow(t *testing.T) {
	tt := pipeline.New("")
	RegisterShouldThrow(tt, returning(nil), "Publish should fail.")
	assert.EqualError(t, tt.Execute(context.Background()),
		"Publish should fail.")

	tt = pipeline.New("")
	RegisterShouldThrow(tt, returning(errClosed), "x", Is(errClosed))
	assert.NoError(t, tt.Execute(context.Background()))
}
