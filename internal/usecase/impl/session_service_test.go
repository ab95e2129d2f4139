package impl

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedClock lets tests move session time around deterministically.
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newClockedSessions(t *testing.T) (*sessionService, *fixedClock) {
	t.Helper()

	env := newTestEnv(t)
	clock := &fixedClock{now: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	env.sessions.now = func() time.Time { return clock.now }

	return env.sessions, clock
}

func TestSessionService_CreateAndValidate(t *testing.T) {
	ctx := context.Background()
	sessions, clock := newClockedSessions(t)
	userID := uuid.New()

	id, err := sessions.Create(ctx, userID, "alice@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	session, err := sessions.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, id, session.ID)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, clock.now.Add(8*time.Hour), session.ExpiresAt)
}

func TestSessionService_SlidingExpiry(t *testing.T) {
	ctx := context.Background()
	sessions, clock := newClockedSessions(t)

	_, err := sessions.Create(ctx, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	// Touch the session just inside the window; the window slides.
	clock.advance(7*time.Hour + 59*time.Minute)
	session, err := sessions.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, clock.now.Add(8*time.Hour), session.ExpiresAt)

	// Thanks to the extension, another near-full window still passes.
	clock.advance(7*time.Hour + 59*time.Minute)
	session, err = sessions.Validate(ctx)
	require.NoError(t, err)
	assert.NotNil(t, session)
}

func TestSessionService_PeekDoesNotSlide(t *testing.T) {
	ctx := context.Background()
	sessions, clock := newClockedSessions(t)

	start := clock.now
	_, err := sessions.Create(ctx, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	clock.advance(time.Hour)
	session, err := sessions.Peek(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, start.Add(8*time.Hour), session.ExpiresAt)

	// Peek left the stored expiry alone; Validate extends it.
	session, err = sessions.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, clock.now.Add(8*time.Hour), session.ExpiresAt)

	// Peek still evicts an expired slot.
	clock.advance(9 * time.Hour)
	session, err = sessions.Peek(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionService_ExpiryEvicts(t *testing.T) {
	ctx := context.Background()
	sessions, clock := newClockedSessions(t)

	_, err := sessions.Create(ctx, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	clock.advance(8*time.Hour + time.Minute)
	session, err := sessions.Validate(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)

	// Eviction happened in the store, not just the return value: rolling
	// the clock back does not resurrect the session.
	clock.advance(-2 * time.Hour)
	session, err = sessions.Validate(ctx)
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestSessionService_SecondLoginReplacesFirst(t *testing.T) {
	ctx := context.Background()
	sessions, _ := newClockedSessions(t)

	firstUser := uuid.New()
	_, err := sessions.Create(ctx, firstUser, "alice@example.com")
	require.NoError(t, err)

	secondUser := uuid.New()
	secondID, err := sessions.Create(ctx, secondUser, "bob@example.com")
	require.NoError(t, err)

	session, err := sessions.Validate(ctx)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, secondID, session.ID)
	assert.Equal(t, secondUser, session.UserID)
}

func TestSessionService_RefreshAndClear(t *testing.T) {
	ctx := context.Background()
	sessions, clock := newClockedSessions(t)

	ok, err := sessions.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = sessions.Create(ctx, uuid.New(), "alice@example.com")
	require.NoError(t, err)

	ok, err = sessions.Refresh(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	clock.advance(9 * time.Hour)
	ok, err = sessions.Refresh(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, sessions.Clear(ctx))
	require.NoError(t, sessions.Clear(ctx))
}
