package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zeptools/gw-cardpress/svc"
)

const shutdownGrace = 10 * time.Second

type Service struct {
	Ctx      context.Context    // Service Context
	cancel   context.CancelFunc // Service Context CancelFunc
	state    atomic.Int32       // internal service state
	done     chan error         // Shutdown Error Channel
	Server   *http.Server
	listener net.Listener
}

var _ svc.Service = (*Service)(nil)

func NewService(parentCtx context.Context, addr string, router http.Handler) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:    svcCtx,
		cancel: svcCancel,
		done:   make(chan error, 1),
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			BaseContext:       func(net.Listener) context.Context { return svcCtx },
		},
	}
}

func (s *Service) Name() string {
	return "WebService"
}

func (s *Service) State() svc.State {
	return svc.State(s.state.Load())
}

// Addr is the bound address, useful when listening on port 0
func (s *Service) Addr() string {
	if s.listener == nil {
		return s.Server.Addr
	}
	return s.listener.Addr().String()
}

// Start binds the listener. Bootstrapping errors are returned immediately.
// Runtime errors are pushed into Done().
func (s *Service) Start() error {
	ln, err := net.Listen("tcp", s.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen(%q) failed: %w", s.Server.Addr, err)
	}
	s.listener = ln
	s.state.Store(int32(svc.StateRUNNING))
	go s.shutdownOnCancel()
	go func() {
		log.Printf("[INFO][WEB] listening on %s ...", ln.Addr())
		err := s.Server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.state.Store(int32(svc.StateSTOPPED))
		s.done <- err
	}()
	return nil
}

func (s *Service) shutdownOnCancel() {
	<-s.Ctx.Done()
	log.Println("[INFO][WEB] stopping")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		log.Printf("[ERROR][WEB] shutdown: %v", err)
	}
}

func (s *Service) Stop() {
	s.cancel()
	log.Println("[INFO][WEB] service stop requested")
}

func (s *Service) Done() <-chan error {
	return s.done
}
