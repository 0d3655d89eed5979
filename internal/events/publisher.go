package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	PostCreated    = "posts.created"
	PostDeleted    = "posts.deleted"
	PostLiked      = "posts.liked"
	PostUnliked    = "posts.unliked"
	PostCommented  = "posts.commented"
	UserFollowed   = "users.followed"
	UserUnfollowed = "users.unfollowed"
)

// Event is the payload of every activity message.
type Event struct {
	Type       string    `json:"type"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId,omitempty"`
	PostID     string    `json:"postId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher sends activity events. Delivery is best effort.
type Publisher interface {
	Publish(eventType string, event Event)
	Close()
}

// Conn is the part of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

type natsPublisher struct {
	conn   Conn
	prefix string
	close  func()
}

func NewNATS(url, prefix string) (Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("socialhub-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS: соединение потеряно: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS: переподключение к %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к NATS: %w", err)
	}

	return &natsPublisher{
		conn:   nc,
		prefix: prefix,
		close: func() {
			if err := nc.Drain(); err != nil {
				log.Printf("NATS: ошибка при закрытии: %v", err)
			}
		},
	}, nil
}

func NewPublisher(conn Conn, prefix string) Publisher {
	return &natsPublisher{conn: conn, prefix: prefix}
}

func (p *natsPublisher) Subject(eventType string) string {
	if p.prefix == "" {
		return eventType
	}
	return p.prefix + "." + eventType
}

func (p *natsPublisher) Publish(eventType string, event Event) {
	event.Type = eventType
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("NATS: ошибка сериализации события %s: %v", eventType, err)
		return
	}

	if err = p.conn.Publish(p.Subject(eventType), data); err != nil {
		log.Printf("NATS: ошибка публикации %s: %v", eventType, err)
	}
}

func (p *natsPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}

type noop struct{}

// NewNoop returns a publisher that drops every event.
func NewNoop() Publisher {
	return noop{}
}

func (noop) Publish(string, Event) {}
func (noop) Close()                {}
