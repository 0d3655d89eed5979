package cache

import (
	"encoding/json"
	"errors"
	"log"
	"socialhub/internal/models"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

const keyPrefix = "profile:"

// ProfileCache keeps rendered public profiles. Failures are logged and treated as misses.
type ProfileCache interface {
	Get(userID string) (*models.UserProfile, bool)
	Set(userID string, profile *models.UserProfile)
	Invalidate(userIDs ...string)
}

// Client is the subset of *memcache.Client the cache needs.
type Client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

type memcacheProfiles struct {
	client Client
	ttl    time.Duration
}

func NewMemcached(addr string, ttl time.Duration) ProfileCache {
	client := memcache.New(addr)
	client.Timeout = 200 * time.Millisecond
	return NewProfileCache(client, ttl)
}

func NewProfileCache(client Client, ttl time.Duration) ProfileCache {
	return &memcacheProfiles{client: client, ttl: ttl}
}

func key(userID string) string {
	return keyPrefix + userID
}

func (c *memcacheProfiles) Get(userID string) (*models.UserProfile, bool) {
	item, err := c.client.Get(key(userID))
	if err != nil {
		if !errors.Is(err, memcache.ErrCacheMiss) {
			log.Printf("Кэш профилей: ошибка чтения %s: %v", userID, err)
		}
		return nil, false
	}

	var profile models.UserProfile
	if err = json.Unmarshal(item.Value, &profile); err != nil {
		log.Printf("Кэш профилей: поврежденная запись %s: %v", userID, err)
		return nil, false
	}

	return &profile, true
}

func (c *memcacheProfiles) Set(userID string, profile *models.UserProfile) {
	data, err := json.Marshal(profile)
	if err != nil {
		log.Printf("Кэш профилей: ошибка сериализации %s: %v", userID, err)
		return
	}

	err = c.client.Set(&memcache.Item{
		Key:        key(userID),
		Value:      data,
		Expiration: int32(c.ttl.Seconds()),
	})
	if err != nil {
		log.Printf("Кэш профилей: ошибка записи %s: %v", userID, err)
	}
}

func (c *memcacheProfiles) Invalidate(userIDs ...string) {
	for _, userID := range userIDs {
		if userID == "" {
			continue
		}
		err := c.client.Delete(key(userID))
		if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
			log.Printf("Кэш профилей: ошибка удаления %s: %v", userID, err)
		}
	}
}

type noop struct{}

// NewNoop returns a cache that never stores anything.
func NewNoop() ProfileCache {
	return noop{}
}

func (noop) Get(string) (*models.UserProfile, bool) { return nil, false }
func (noop) Set(string, *models.UserProfile)        {}
func (noop) Invalidate(...string)                   {}
