package booking

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sem-Five-Project/edimy/models"
)

func newTestStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisSessionStore(client, 10*time.Minute), mr
}

func TestSessionStoreRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	session := &models.BookingSession{
		SessionID:     "sess-1",
		StudentID:     "stu-1",
		CurrentStep:   models.StepSlotSelection,
		LockedSlotIDs: []string{"slot-1"},
		Tutor:         &models.Tutor{ID: "tut-1", Name: "Amara"},
	}
	require.NoError(t, store.Save(ctx, session))

	loaded, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, loaded.SessionID)
	assert.Equal(t, models.StepSlotSelection, loaded.CurrentStep)
	assert.Equal(t, []string{"slot-1"}, loaded.LockedSlotIDs)
	require.NotNil(t, loaded.Tutor)
	assert.Equal(t, "tut-1", loaded.Tutor.ID)
	assert.False(t, loaded.UpdatedAt.IsZero(), "save stamps UpdatedAt")
}

func TestSessionStoreMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreTTLRefreshesOnSave(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	session := &models.BookingSession{SessionID: "sess-1"}
	require.NoError(t, store.Save(ctx, session))

	// Session survives while activity keeps refreshing the TTL.
	mr.FastForward(6 * time.Minute)
	require.NoError(t, store.Save(ctx, session))
	mr.FastForward(6 * time.Minute)
	_, err := store.Load(ctx, "sess-1")
	require.NoError(t, err)

	// Without activity the session lapses.
	mr.FastForward(11 * time.Minute)
	_, err = store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStoreDelete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &models.BookingSession{SessionID: "sess-1"}))
	require.NoError(t, store.Delete(ctx, "sess-1"))

	_, err := store.Load(ctx, "sess-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, store.Delete(ctx, "sess-1"), "deleting a missing session is fine")
}
