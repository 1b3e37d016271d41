package throttle

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/zeptools/gw-cardpress/requests"
	"github.com/zeptools/gw-cardpress/responses"
)

// IPWrapper limits requests per client IP against one bucket group.
type IPWrapper struct {
	Store   *BucketStore[string]
	GroupID string
	Now     func() time.Time
}

func (iw *IPWrapper) Wrap(inner http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		if iw.Now != nil {
			now = iw.Now()
		}
		b, ok := iw.Store.Bucket(iw.GroupID, requests.GetClientIP(r), now)
		if ok && b.Allow(now) {
			inner.ServeHTTP(w, r)
			return
		}
		if ok {
			secs := int(math.Ceil(b.RetryAfter(now).Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
		}
		responses.WriteSimpleErrorJSON(w, http.StatusTooManyRequests, "too many requests")
	})
}
