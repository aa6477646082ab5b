package timeout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"digital.vasic.livecheck/pkg/failure"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =========================================================
// Normal polarity
// =========================================================

func TestAssert_ResolveBeforeDeadline(t *testing.T) {
	a := New("should connect", 200*time.Millisecond, false)

	go func() {
		time.Sleep(20 * time.Millisecond)
		a.Resolve()
	}()

	start := time.Now()
	err := a.Set(context.Background())

	require.NoError(t, err)
	assert.True(t, a.IsSuccess())
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}

func TestAssert_DeadlineElapses(t *testing.T) {
	a := New("Client: 0 should be connected.", 30*time.Millisecond, false)

	err := a.Set(context.Background())

	require.Error(t, err)
	assert.True(t, failure.IsAssertion(err))
	assert.EqualError(t, err, "Client: 0 should be connected.")
	assert.False(t, a.IsSuccess())
	assert.True(t, a.Settled())
}

func TestAssert_ResolveBeforeSet(t *testing.T) {
	a := New("msg", time.Second, false)
	a.Resolve()

	start := time.Now()
	require.NoError(t, a.Set(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestAssert_ZeroTimeout_NotResolved(t *testing.T) {
	a := New("must already be there", 0, false)

	err := a.Set(context.Background())
	require.Error(t, err)
	assert.EqualError(t, err, "must already be there")
}

func TestAssert_ZeroTimeout_AlreadyResolved(t *testing.T) {
	a := New("must already be there", 0, false)
	a.Resolve()

	require.NoError(t, a.Set(context.Background()))
	assert.True(t, a.IsSuccess())
}

// =========================================================
// Inverted polarity
// =========================================================

func TestAssert_Inverted_NothingHappens(t *testing.T) {
	a := New("should not trigger", 30*time.Millisecond, true)

	require.NoError(t, a.Set(context.Background()))
	assert.True(t, a.IsSuccess())
}

func TestAssert_Inverted_ResolveFailsImmediately(t *testing.T) {
	a := New("should not trigger", time.Second, true)

	go func() {
		time.Sleep(10 * time.Millisecond)
		a.Resolve()
	}()

	start := time.Now()
	err := a.Set(context.Background())

	require.Error(t, err)
	assert.EqualError(t, err, "should not trigger")
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.False(t, a.IsSuccess())
}

func TestAssert_Inverted_ZeroTimeout(t *testing.T) {
	absent := New("absent", 0, true)
	require.NoError(t, absent.Set(context.Background()))

	present := New("present", 0, true)
	present.Resolve()
	require.Error(t, present.Set(context.Background()))
}

// =========================================================
// Settlement
// =========================================================

func TestAssert_ResolveIsIdempotent(t *testing.T) {
	a := New("msg", 50*time.Millisecond, false)

	a.Resolve()
	a.Resolve()

	require.NoError(t, a.Set(context.Background()))

	// Let the would-be deadline pass; the outcome must not flip.
	time.Sleep(80 * time.Millisecond)
	a.Resolve()
	assert.True(t, a.IsSuccess())
}

func TestAssert_ResolveAfterTimeoutIgnored(t *testing.T) {
	a := New("late", 10*time.Millisecond, false)

	require.Error(t, a.Set(context.Background()))
	a.Resolve()
	assert.False(t, a.IsSuccess())
}

func TestAssert_SetTwice(t *testing.T) {
	a := New("msg", 0, true)

	require.NoError(t, a.Set(context.Background()))
	assert.ErrorIs(t, a.Set(context.Background()), ErrAlreadySet)
}

func TestAssert_ContextCancelled(t *testing.T) {
	a := New("msg", time.Minute, false)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := a.Set(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, failure.IsAssertion(err))
	assert.True(t, a.Settled())
}

func TestAssert_ConcurrentResolve(t *testing.T) {
	a := New("msg", time.Second, false)

	for i := 0; i < 16; i++ {
		go a.Resolve()
	}

	require.NoError(t, a.Set(context.Background()))
	assert.True(t, a.IsSuccess())
}
