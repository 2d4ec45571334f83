package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestCreateGetDelete(t *testing.T) {
	s := NewStore(time.Hour, nil)
	sess := s.Create()
	require.NotEmpty(t, sess.ID)
	require.NotNil(t, sess.State)
	assert.Nil(t, sess.State.Viewer())

	got, ok := s.Get(sess.ID)
	require.True(t, ok)
	assert.Same(t, sess, got)

	other := s.Create()
	assert.NotEqual(t, sess.ID, other.ID)

	s.Delete(sess.ID)
	_, ok = s.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestExpiry(t *testing.T) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(time.Minute, nil)
	s.now = c.now

	a := s.Create()
	b := s.Create()

	c.t = c.t.Add(45 * time.Second)
	_, ok := s.Get(a.ID)
	require.True(t, ok, "access extends the session")

	c.t = c.t.Add(30 * time.Second)
	assert.Equal(t, 1, s.ClearExpired())
	_, ok = s.Get(b.ID)
	assert.False(t, ok)
	_, ok = s.Get(a.ID)
	assert.True(t, ok)

	c.t = c.t.Add(2 * time.Minute)
	_, ok = s.Get(a.ID)
	assert.False(t, ok)
	assert.Zero(t, s.Len())
}

func TestJanitorStops(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := NewStore(time.Nanosecond, nil)
	s.Create()
	s.StartJanitor(time.Millisecond)

	require.Eventually(t, func() bool { return s.Len() == 0 }, time.Second, 5*time.Millisecond)
	s.Close()
	s.Close()
}

func TestCloseWithoutJanitor(t *testing.T) {
	s := NewStore(time.Minute, nil)
	s.Close()
}
