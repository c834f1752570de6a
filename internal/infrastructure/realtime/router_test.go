package realtime

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesEveryMemberInOrder(t *testing.T) {
	router := NewRouter()
	a := newFakeSession("a")
	b := newFakeSession("b")
	router.Add("room", a)
	router.Add("room", b)

	for i := 0; i < 5; i++ {
		n := router.Publish("room", []byte(fmt.Sprintf("m%d", i)))
		require.Equal(t, 2, n)
	}

	for _, sess := range []*fakeSession{a, b} {
		got := sess.delivered()
		require.Len(t, got, 5)
		for i, payload := range got {
			require.Equal(t, fmt.Sprintf("m%d", i), string(payload))
		}
	}
}

func TestPublishSkipsClosedSessions(t *testing.T) {
	router := NewRouter()
	healthy := newFakeSession("ok")
	closed := newFakeSession("gone")
	closed.refuse = true
	router.Add("room", healthy)
	router.Add("room", closed)

	n := router.Publish("room", []byte("hello"))

	require.Equal(t, 1, n)
	require.Len(t, healthy.delivered(), 1)
	require.Empty(t, closed.delivered())
}

func TestPublishToEmptyRoom(t *testing.T) {
	router := NewRouter()
	require.Equal(t, 0, router.Publish("nobody-home", []byte("x")))
}

func TestRemoveDropsMembership(t *testing.T) {
	router := NewRouter()
	sess := newFakeSession("s1")
	router.Add("room", sess)
	router.Remove("room", "s1")

	require.Equal(t, 0, router.Count("room"))
	require.Equal(t, 0, router.Publish("room", []byte("x")))
}

func TestAddIsIdempotent(t *testing.T) {
	router := NewRouter()
	sess := newFakeSession("s1")
	router.Add("room", sess)
	router.Add("room", sess)

	require.Equal(t, 1, router.Count("room"))
	router.Publish("room", []byte("once"))
	require.Len(t, sess.delivered(), 1)
}
