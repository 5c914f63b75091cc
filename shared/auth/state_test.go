package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewStateSigner("secrets", "state-secret", time.Minute)

	state, err := s.Issue("google")
	require.NoError(t, err)

	assert.NoError(t, s.Verify(state, "google"))
}

func TestStateSigner_RejectsOtherProvider(t *testing.T) {
	t.Parallel()

	s := NewStateSigner("secrets", "state-secret", time.Minute)

	state, err := s.Issue("google")
	require.NoError(t, err)

	assert.ErrorIs(t, s.Verify(state, "facebook"), ErrInvalidState)
}

func TestStateSigner_RejectsForeignSecret(t *testing.T) {
	t.Parallel()

	state, err := NewStateSigner("secrets", "one", time.Minute).Issue("google")
	require.NoError(t, err)

	err = NewStateSigner("secrets", "two", time.Minute).Verify(state, "google")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateSigner_RejectsExpired(t *testing.T) {
	t.Parallel()

	s := NewStateSigner("secrets", "state-secret", time.Minute)
	s.now = func() time.Time { return time.Now().Add(-time.Hour) }

	state, err := s.Issue("google")
	require.NoError(t, err)

	s.now = time.Now
	assert.ErrorIs(t, s.Verify(state, "google"), ErrInvalidState)
}

func TestStateSigner_RejectsOtherIssuer(t *testing.T) {
	t.Parallel()

	state, err := NewStateSigner("elsewhere", "state-secret", time.Minute).Issue("google")
	require.NoError(t, err)

	err = NewStateSigner("secrets", "state-secret", time.Minute).Verify(state, "google")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateSigner_RejectsEmptyAndGarbage(t *testing.T) {
	t.Parallel()

	s := NewStateSigner("secrets", "state-secret", time.Minute)

	assert.ErrorIs(t, s.Verify("", "google"), ErrInvalidState)
	assert.ErrorIs(t, s.Verify("not.a.jwt", "google"), ErrInvalidState)
}
