package throttle

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeptools/gw-cardpress/svc"
)

// BucketStore holds named bucket groups keyed by K and evicts idle buckets while running.
type BucketStore[K comparable] struct {
	Ctx              context.Context    // Service Context
	cancel           context.CancelFunc // Service Context CancelFunc
	state            atomic.Int32
	done             chan error
	cleanupCycle     time.Duration
	cleanupOlderThan time.Duration
	mu               sync.RWMutex
	groups           map[string]*bucketGroup[K]
}

var _ svc.Service = (*BucketStore[string])(nil)

func NewBucketStore[K comparable](parentCtx context.Context, cleanupCycle, cleanupOlderThan time.Duration) *BucketStore[K] {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &BucketStore[K]{
		Ctx:              svcCtx,
		cancel:           svcCancel,
		done:             make(chan error, 1),
		cleanupCycle:     cleanupCycle,
		cleanupOlderThan: cleanupOlderThan,
		groups:           make(map[string]*bucketGroup[K]),
	}
}

func (s *BucketStore[K]) Name() string {
	return "ThrottleBucketStore"
}

func (s *BucketStore[K]) Start() error {
	if !s.state.CompareAndSwap(int32(svc.StateREADY), int32(svc.StateRUNNING)) {
		return fmt.Errorf("cannot start bucket store in state %s", svc.State(s.state.Load()))
	}
	log.Printf("[INFO][THROTTLE] cleanup service started cycle=%v exp=%v", s.cleanupCycle, s.cleanupOlderThan)
	go s.run()
	return nil
}

func (s *BucketStore[K]) Stop() {
	s.cancel()
}

func (s *BucketStore[K]) Done() <-chan error {
	return s.done
}

func (s *BucketStore[K]) run() {
	ticker := time.NewTicker(s.cleanupCycle)
	defer ticker.Stop()
	for {
		select {
		case <-s.Ctx.Done():
			s.state.Store(int32(svc.StateSTOPPED))
			log.Println("[INFO][THROTTLE] service stopped")
			s.done <- nil
			return
		case now := <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						log.Printf("[PANIC] recovered in throttle cleanup: %v", r)
					}
				}()
				if n := s.Cleanup(now); n > 0 {
					log.Printf("[INFO][THROTTLE] %d idle buckets removed", n)
				}
			}()
		}
	}
}

func (s *BucketStore[K]) SetBucketGroup(id string, conf BucketConf) {
	conf.Normalize()
	s.mu.Lock()
	s.groups[id] = &bucketGroup[K]{conf: &conf}
	s.mu.Unlock()
}

func (s *BucketStore[K]) HasBucketGroup(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.groups[id]
	return ok
}

// Allow consumes one token of userID's bucket in groupID. Unknown groups always block.
func (s *BucketStore[K]) Allow(groupID string, userID K, now time.Time) bool {
	b, ok := s.Bucket(groupID, userID, now)
	if !ok {
		return false
	}
	return b.Allow(now)
}

// Bucket returns userID's bucket in groupID, creating a full one on first sight.
func (s *BucketStore[K]) Bucket(groupID string, userID K, now time.Time) (*Bucket, bool) {
	s.mu.RLock()
	g, ok := s.groups[groupID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	b, _ := g.bucket(userID, now)
	return b, true
}

// Cleanup drops buckets untouched for longer than the configured age and reports how many went.
func (s *BucketStore[K]) Cleanup(now time.Time) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cnt := 0
	for _, g := range s.groups {
		g.buckets.Range(func(id, value any) bool {
			if now.Sub(value.(*Bucket).idleSince()) > s.cleanupOlderThan {
				g.buckets.Delete(id)
				cnt++
			}
			return true
		})
	}
	return cnt
}
