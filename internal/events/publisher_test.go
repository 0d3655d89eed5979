package events

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	subject string
	data    []byte
}

type fakeConn struct {
	published []message
	err       error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, message{subject: subject, data: data})
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	conn := &fakeConn{}
	publisher := NewPublisher(conn, "socialhub")

	publisher.Publish(PostLiked, Event{ActorID: "user-1", TargetID: "user-2", PostID: "post-1"})

	require.Len(t, conn.published, 1)
	assert.Equal(t, "socialhub.posts.liked", conn.published[0].subject)

	var event Event
	require.NoError(t, json.Unmarshal(conn.published[0].data, &event))
	assert.Equal(t, PostLiked, event.Type)
	assert.Equal(t, "user-1", event.ActorID)
	assert.Equal(t, "post-1", event.PostID)
	assert.False(t, event.OccurredAt.IsZero())
}

func TestPublisher_NoPrefix(t *testing.T) {
	conn := &fakeConn{}
	publisher := NewPublisher(conn, "")

	publisher.Publish(UserFollowed, Event{ActorID: "user-1", TargetID: "user-2"})

	require.Len(t, conn.published, 1)
	assert.Equal(t, "users.followed", conn.published[0].subject)
}

func TestPublisher_ErrorIsSwallowed(t *testing.T) {
	conn := &fakeConn{err: errors.New("nats: connection closed")}
	publisher := NewPublisher(conn, "socialhub")

	assert.NotPanics(t, func() {
		publisher.Publish(PostDeleted, Event{ActorID: "user-1"})
		publisher.Close()
	})
}

func TestNoop(t *testing.T) {
	assert.NotPanics(t, func() {
		p := NewNoop()
		p.Publish(PostCreated, Event{})
		p.Close()
	})
}
