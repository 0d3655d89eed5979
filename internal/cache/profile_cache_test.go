package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"socialhub/internal/models"
)

type fakeClient struct {
	items  map[string]*memcache.Item
	getErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: map[string]*memcache.Item{}}
}

func (f *fakeClient) Get(key string) (*memcache.Item, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	item, ok := f.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}
	return item, nil
}

func (f *fakeClient) Set(item *memcache.Item) error {
	f.items[item.Key] = item
	return nil
}

func (f *fakeClient) Delete(key string) error {
	if _, ok := f.items[key]; !ok {
		return memcache.ErrCacheMiss
	}
	delete(f.items, key)
	return nil
}

func TestProfileCache(t *testing.T) {
	client := newFakeClient()
	profiles := NewProfileCache(client, 90*time.Second)

	t.Run("Промах для пустого кэша", func(t *testing.T) {
		_, ok := profiles.Get("user-1")
		assert.False(t, ok)
	})

	t.Run("Запись и чтение", func(t *testing.T) {
		profiles.Set("user-1", &models.UserProfile{ID: "user-1", Name: "Alice", FollowersCount: 3})

		item := client.items["profile:user-1"]
		require.NotNil(t, item)
		assert.Equal(t, int32(90), item.Expiration)

		profile, ok := profiles.Get("user-1")
		require.True(t, ok)
		assert.Equal(t, "Alice", profile.Name)
		assert.Equal(t, 3, profile.FollowersCount)
	})

	t.Run("Инвалидация", func(t *testing.T) {
		profiles.Invalidate("user-1", "", "unknown")

		_, ok := profiles.Get("user-1")
		assert.False(t, ok)
	})

	t.Run("Ошибка сервера считается промахом", func(t *testing.T) {
		client.getErr = errors.New("connection refused")
		defer func() { client.getErr = nil }()

		_, ok := profiles.Get("user-1")
		assert.False(t, ok)
	})

	t.Run("Поврежденная запись", func(t *testing.T) {
		client.items["profile:user-2"] = &memcache.Item{Key: "profile:user-2", Value: []byte("{oops")}

		_, ok := profiles.Get("user-2")
		assert.False(t, ok)
	})
}

func TestNoop(t *testing.T) {
	profiles := NewNoop()
	profiles.Set("user-1", &models.UserProfile{ID: "user-1"})

	_, ok := profiles.Get("user-1")
	assert.False(t, ok)
	profiles.Invalidate("user-1")
}
