package conf

import (
	"time"

	"github.com/zeptools/gw-cardpress/throttle"
)

// Throttle groups used by the routes
const (
	ThrottleOrders  = "orders"
	ThrottlePreview = "preview"
	ThrottleLogin   = "login"
)

// ThrottleConf is read from .throttle.json; missing groups keep their defaults.
type ThrottleConf struct {
	CleanupCycleSec     int                            `json:"cleanup_cycle_sec"`
	CleanupOlderThanSec int                            `json:"cleanup_older_than_sec"`
	Groups              map[string]throttle.BucketConf `json:"groups"`
}

func DefaultThrottleConf() ThrottleConf {
	return ThrottleConf{
		CleanupCycleSec:     300,
		CleanupOlderThanSec: 900,
		Groups: map[string]throttle.BucketConf{
			ThrottleOrders:  {Burst: 5, Increment: 1, PeriodSec: 60},
			ThrottlePreview: {Burst: 20, Increment: 1, PeriodSec: 6},
			ThrottleLogin:   {Burst: 5, Increment: 1, PeriodSec: 60},
		},
	}
}

// PrepareThrottleBucketStore builds the bucket store and its groups
func (c *Core[B]) PrepareThrottleBucketStore() error {
	tc := DefaultThrottleConf()
	defaults := tc.Groups
	tc.Groups = nil
	if _, err := c.loadOptionalJSON(".throttle.json", &tc); err != nil {
		return err
	}
	for id, bc := range defaults {
		if _, ok := tc.Groups[id]; !ok {
			if tc.Groups == nil {
				tc.Groups = map[string]throttle.BucketConf{}
			}
			tc.Groups[id] = bc
		}
	}
	c.ThrottleBucketStore = throttle.NewBucketStore[B](c.RootCtx,
		time.Duration(tc.CleanupCycleSec)*time.Second,
		time.Duration(tc.CleanupOlderThanSec)*time.Second,
	)
	for id, bc := range tc.Groups {
		c.ThrottleBucketStore.SetBucketGroup(id, bc)
	}
	c.AddService(c.ThrottleBucketStore)
	return nil
}
