// Package memory is an in-process kvdb.Client for single-node setups and tests
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeptools/gw-cardpress/db/kvdb"
)

type entry struct {
	val     string
	expires time.Time // zero = never
}

func (e entry) expired(now time.Time) bool {
	return !e.expires.IsZero() && !now.Before(e.expires)
}

type Client struct {
	Conf *kvdb.Conf
	Now  func() time.Time // for tests

	mu   sync.Mutex
	data map[string]entry
}

var _ kvdb.Client = (*Client)(nil)

func NewClient(conf *kvdb.Conf) *Client {
	return &Client{Conf: conf}
}

func (c *Client) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		c.data = make(map[string]entry)
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return nil
}

func (c *Client) Close() error { return nil }

func (c *Client) GetHandle() any { return c }

func (c *Client) GetConf() *kvdb.Conf { return c.Conf }

// lookup must be called with mu held
func (c *Client) lookup(key string) (entry, bool) {
	e, ok := c.data[key]
	if !ok {
		return entry{}, false
	}
	if e.expired(c.Now()) {
		delete(c.data, key)
		return entry{}, false
	}
	return e, true
}

func (c *Client) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.lookup(key)
	return ok, nil
}

func (c *Client) Delete(_ context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.lookup(k); ok {
			delete(c.data, k)
			n++
		}
	}
	return n, nil
}

func (c *Client) Expire(_ context.Context, key string, expiration time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok {
		return false, nil
	}
	e.expires = c.Now().Add(expiration)
	c.data[key] = e
	return true, nil
}

func (c *Client) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{val: s}
	if expiration > 0 {
		e.expires = c.Now().Add(expiration)
	}
	c.data[key] = e
	return nil
}

func (c *Client) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.lookup(key)
	if !ok {
		return "", false, nil
	}
	return e.val, true, nil
}
