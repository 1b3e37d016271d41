package schedjobs

import (
	"context"
	"time"
)

// OneTimeJobMinLead is how far in the future a one-time job must be registered.
const OneTimeJobMinLead = 30 * time.Second

type OneTimeJob struct {
	ID       string
	ExecTime time.Time
	Task     func(ctx context.Context) error
	// Job-specific callbacks
	OnAdded    func()
	OnFinished func(error)
}

// slot is the minute-level key the job fires in. Seconds round up.
func (job *OneTimeJob) slot() int64 {
	regTime := job.ExecTime
	if regTime.Second() > 0 || regTime.Nanosecond() > 0 {
		regTime = regTime.Truncate(time.Minute).Add(time.Minute)
	}
	return regTime.Unix() / 60
}
