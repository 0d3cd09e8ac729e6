package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Store es lo que necesita el servicio para cachear reportes; lo cumplen
// el caché en memoria y el de Redis
type Store interface {
	Load(ctx context.Context, key string, target interface{}) (bool, error)
	Save(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
	Close() error
}

type CacheItem struct {
	Value      []byte
	Expiration int64
}

// Cache es un caché en memoria con expiración por item
type Cache struct {
	items map[string]CacheItem
	mu    sync.RWMutex
	ttl   time.Duration
	stop  chan struct{}
	once  sync.Once
}

var _ Store = (*Cache)(nil)

// New crea el caché y arranca la limpieza periódica de items expirados
func New(defaultTTL time.Duration, cleanupInterval time.Duration) *Cache {
	c := &Cache{
		items: make(map[string]CacheItem),
		ttl:   defaultTTL,
		stop:  make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go c.cleanupExpired(cleanupInterval)
	}
	return c
}

// Set guarda un valor en caché
func (c *Cache) Set(key string, value []byte, ttl ...time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	duration := c.ttl
	if len(ttl) > 0 && ttl[0] > 0 {
		duration = ttl[0]
	}

	c.items[key] = CacheItem{
		Value:      value,
		Expiration: time.Now().Add(duration).UnixNano(),
	}
}

// GetValue obtiene un valor del caché
func (c *Cache) GetValue(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, found := c.items[key]
	if !found {
		return nil, false
	}

	if time.Now().UnixNano() > item.Expiration {
		return nil, false
	}

	return item.Value, true
}

// DeleteByPrefix elimina todas las claves que empiecen con un prefijo
func (c *Cache) DeleteByPrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if strings.HasPrefix(key, prefix) {
			delete(c.items, key)
		}
	}
}

// Size retorna el número de items en caché
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Load deserializa en target el valor guardado bajo key
func (c *Cache) Load(_ context.Context, key string, target interface{}) (bool, error) {
	data, found := c.GetValue(key)
	if !found {
		return false, nil
	}

	if err := json.Unmarshal(data, target); err != nil {
		return false, err
	}
	return true, nil
}

// Save serializa y guarda en caché
func (c *Cache) Save(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.Set(key, data, ttl)
	return nil
}

func (c *Cache) Invalidate(_ context.Context, prefix string) error {
	c.DeleteByPrefix(prefix)
	return nil
}

// Close detiene la limpieza periódica
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.stop) })
	return nil
}

// cleanupExpired limpia items expirados periódicamente
func (c *Cache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.removeExpired(time.Now())
		}
	}
}

func (c *Cache) removeExpired(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := now.UnixNano()
	for key, item := range c.items {
		if ts > item.Expiration {
			delete(c.items, key)
		}
	}
}
