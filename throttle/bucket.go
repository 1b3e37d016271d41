package throttle

import (
	"sync"
	"time"
)

// BucketConf is a token bucket policy: Burst tokens at most, Increment added every Period.
type BucketConf struct {
	Burst     int           `json:"burst"`
	Increment int           `json:"increment"`
	Period    time.Duration `json:"-"`
	PeriodSec int           `json:"period_sec"`
}

// Normalize fills Period from PeriodSec and clamps nonsense values.
func (c *BucketConf) Normalize() {
	if c.Period <= 0 {
		c.Period = time.Duration(c.PeriodSec) * time.Second
	}
	if c.Period <= 0 {
		c.Period = time.Minute
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Increment <= 0 {
		c.Increment = 1
	}
}

type Bucket struct {
	mu        sync.Mutex
	tokens    int
	lastCheck time.Time
	conf      *BucketConf
}

// refill must run under b.mu
func (b *Bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastCheck)
	if elapsed < b.conf.Period {
		return
	}
	times := int(elapsed / b.conf.Period)
	b.tokens += times * b.conf.Increment
	if b.tokens > b.conf.Burst {
		b.tokens = b.conf.Burst
	}
	b.lastCheck = b.lastCheck.Add(time.Duration(times) * b.conf.Period)
}

func (b *Bucket) Allow(now time.Time) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refill(now)
	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// RetryAfter is the wait until the next refill.
func (b *Bucket) RetryAfter(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := b.lastCheck.Add(b.conf.Period).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

func (b *Bucket) idleSince() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastCheck
}

type bucketGroup[K comparable] struct {
	conf    *BucketConf
	buckets sync.Map // K -> *Bucket
}

func (g *bucketGroup[K]) bucket(id K, now time.Time) (*Bucket, bool) {
	fresh := &Bucket{tokens: g.conf.Burst, lastCheck: now, conf: g.conf}
	b, loaded := g.buckets.LoadOrStore(id, fresh)
	return b.(*Bucket), loaded
}
