package schedjobs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeptools/gw-cardpress/svc"
)

type Scheduler struct {
	Ctx         context.Context    // Service Context
	cancel      context.CancelFunc // Service Context CancelFunc
	state       atomic.Int32
	done        chan error
	oneTimeJobs map[int64][]*OneTimeJob
	cronJobs    []*CronJob
	mu          sync.Mutex
	wg          sync.WaitGroup
	now         func() time.Time
	// Default Callbacks
	OnOneTimeJobFinished func(job *OneTimeJob, err error)
	OnCronJobFinished    func(job *CronJob, err error)
}

var _ svc.Service = (*Scheduler)(nil)

func NewScheduler(parentCtx context.Context) *Scheduler {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Scheduler{
		Ctx:         svcCtx,
		cancel:      svcCancel,
		done:        make(chan error, 1),
		oneTimeJobs: make(map[int64][]*OneTimeJob),
		now:         time.Now,
	}
}

func (s *Scheduler) Name() string {
	return "JobScheduler"
}

func (s *Scheduler) State() svc.State {
	return svc.State(s.state.Load())
}

func (s *Scheduler) Start() error {
	if !s.state.CompareAndSwap(int32(svc.StateREADY), int32(svc.StateRUNNING)) {
		return fmt.Errorf("cannot start scheduler in state %s", s.State())
	}
	go s.loop()
	log.Println("[INFO][SCHED] job scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cancel()
}

func (s *Scheduler) Done() <-chan error {
	return s.done
}

func (s *Scheduler) loop() {
	// align ticks to minute boundaries
	wait := time.Until(s.now().Truncate(time.Minute).Add(time.Minute))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-s.Ctx.Done():
			s.wg.Wait() // let running tasks finish
			s.state.Store(int32(svc.StateSTOPPED))
			log.Println("[INFO][SCHED] job scheduler stopped")
			s.done <- nil
			return
		case <-timer.C:
			now := s.now()
			s.Tick(now)
			timer.Reset(time.Until(now.Truncate(time.Minute).Add(time.Minute)))
		}
	}
}

// Tick runs every job due at the minute of `now`.
func (s *Scheduler) Tick(now time.Time) {
	debugf("tick at %v", now)
	key := now.Unix() / 60
	s.mu.Lock()
	oneTime := s.oneTimeJobs[key]
	delete(s.oneTimeJobs, key)
	crons := append([]*CronJob(nil), s.cronJobs...) // copy jobs so unlocking early is possible
	s.mu.Unlock()

	for _, job := range oneTime {
		job := job
		s.spawn(job.ID, job.Task, func(err error) {
			if job.OnFinished != nil {
				job.OnFinished(err)
			}
			if s.OnOneTimeJobFinished != nil {
				s.OnOneTimeJobFinished(job, err)
			}
		})
	}
	for _, job := range crons {
		if !job.Matches(now) {
			continue
		}
		job := job
		s.spawn(job.ID, job.Task, func(err error) {
			if job.OnFinished != nil {
				job.OnFinished(err)
			}
			if s.OnCronJobFinished != nil {
				s.OnCronJobFinished(job, err)
			}
		})
	}
}

// Wait blocks until all running tasks return.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) spawn(id string, task func(context.Context) error, finished func(error)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] recovered in job %s: %v", id, r)
			}
		}()
		debugf("running job %s", id)
		var err error
		if task != nil {
			err = task(s.Ctx)
		}
		if err != nil {
			log.Printf("[ERROR][SCHED] job %s: %v", id, err)
		}
		finished(err)
	}()
}

func (s *Scheduler) AddOneTimeJob(job *OneTimeJob) error {
	now := s.now()
	if job.ExecTime.Before(now.Add(OneTimeJobMinLead)) {
		return fmt.Errorf(
			"cannot schedule job %s too close or in the past (ExecTime: %s, now: %s)",
			job.ID, job.ExecTime, now,
		)
	}
	key := job.slot()
	s.mu.Lock()
	s.oneTimeJobs[key] = append(s.oneTimeJobs[key], job)
	s.mu.Unlock()
	callAdded(job.OnAdded)
	return nil
}

func (s *Scheduler) AddCronJob(job *CronJob) {
	s.mu.Lock()
	s.cronJobs = append(s.cronJobs, job)
	s.mu.Unlock()
	callAdded(job.OnAdded)
}

func callAdded(fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Println("[PANIC] recovered in job.OnAdded:", r)
		}
	}()
	fn()
}

// HasOneTimeJob reports whether a pending one-time job carries the id.
func (s *Scheduler) HasOneTimeJob(jobID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, jobs := range s.oneTimeJobs {
		for _, job := range jobs {
			if job.ID == jobID {
				return true
			}
		}
	}
	return false
}

// CronJobs returns a copy of all registered cron jobs
func (s *Scheduler) CronJobs() []*CronJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*CronJob(nil), s.cronJobs...)
}

func (s *Scheduler) DeleteOneTimeJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, jobs := range s.oneTimeJobs {
		filtered := jobs[:0]
		for _, job := range jobs {
			if job.ID != jobID {
				filtered = append(filtered, job)
			}
		}
		if len(filtered) == 0 {
			delete(s.oneTimeJobs, key)
		} else {
			s.oneTimeJobs[key] = filtered
		}
	}
}

func (s *Scheduler) DeleteCronJob(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	newJobs := s.cronJobs[:0] // reuse underlying array
	for _, job := range s.cronJobs {
		if job.ID != jobID {
			newJobs = append(newJobs, job)
		}
	}
	s.cronJobs = newJobs
}
