package uds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"strings"
	"sync/atomic"

	"github.com/zeptools/gw-cardpress/svc"
)

type Service struct {
	Ctx        context.Context    // Service Context
	cancel     context.CancelFunc // Service Context CancelFunc
	state      atomic.Int32       // internal service state
	done       chan error         // Shutdown Error Channel
	SocketPath string
	Commands   CommandStore
	listener   net.Listener
}

var _ svc.Service = (*Service)(nil)

func (s *Service) Name() string {
	return "UDSService"
}

func NewService(parentCtx context.Context, sockPath string, commands CommandStore) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:        svcCtx,
		cancel:     svcCancel,
		done:       make(chan error, 1),
		SocketPath: sockPath,
		Commands:   commands,
	}
}

// Start the unix socket service in the background.
// Bootstrapping errors are returned immediately.
// Runtime errors are pushed into Done().
func (s *Service) Start() error {
	// clean up old socket if any
	_ = os.Remove(s.SocketPath)
	listener, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("listen(%q) failed: %v", s.SocketPath, err)
	}
	s.listener = listener
	// tighten permissions immediately after binding
	if err = os.Chmod(s.SocketPath, 0600); err != nil {
		_ = s.listener.Close()
		_ = os.Remove(s.SocketPath)
		return fmt.Errorf("chmod(%q) failed: %w", s.SocketPath, err)
	}
	s.state.Store(int32(svc.StateRUNNING))
	go s.run()
	return nil
}

func (s *Service) Stop() {
	s.cancel()
	log.Println("[INFO][UDS] service stop requested")
}

func (s *Service) Done() <-chan error {
	return s.done
}

func (s *Service) State() svc.State {
	return svc.State(s.state.Load())
}

// run - internal run loop
func (s *Service) run() {
	go func() {
		<-s.Ctx.Done()
		log.Printf("[INFO][UDS] stopping")
		if err := s.listener.Close(); err != nil {
			log.Printf("[ERROR][UDS] cannot close listener: %v", err)
		}
		// To avoid TOCTOU race, just try removing before checking if it exists.
		if err := os.Remove(s.SocketPath); err != nil && !os.IsNotExist(err) {
			log.Printf("[ERROR][UDS] cannot remove socket file: %v", err)
		}
	}()

	log.Printf("[INFO][UDS] listening on %q ...", s.SocketPath)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Printf("[INFO][UDS] socket closed")
				s.state.Store(int32(svc.StateSTOPPED))
				s.done <- nil // also a clean shutdown
				return
			}
			// For transient errors, don’t kill the loop
			log.Println("[ERROR][UDS] accept failed:", err)
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Service) handleConn(c net.Conn) {
	stop := context.AfterFunc(s.Ctx, func() { _ = c.Close() })
	defer stop()
	defer func() {
		if err := c.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			log.Printf("[ERROR][UDS] closing connection: %v", err)
		}
	}()

	reader := bufio.NewReader(io.LimitReader(c, 1<<20)) // 1 MB max per session
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Printf("[ERROR][UDS] read error: %v", err)
			}
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !s.Exec(line, c) {
			return
		}
	}
}

// Exec runs one command line and writes its output to w.
// It returns false when the connection should close.
func (s *Service) Exec(line string, w io.Writer) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return true
	}
	cmdStr := args[0]
	switch cmdStr {
	case "quit":
		return false
	case "help":
		_, _ = fmt.Fprintln(w, "")
		for _, name := range s.Commands.Names() {
			hnd := s.Commands[name]
			_, _ = fmt.Fprintf(w, "%-36s %s\n", strings.TrimSpace(name+" "+hnd.Usage), hnd.Desc)
		}
		_, _ = fmt.Fprintln(w, "")
		return true
	}
	cmdHnd, ok := s.Commands[cmdStr]
	if !ok {
		_, _ = fmt.Fprintf(w, "unknown command: %s\n", cmdStr)
		return true // give another chance
	}
	log.Printf("[INFO][UDS] requested command `%s`", line)
	if err := cmdHnd.Fn(s.Ctx, args[1:], w); err != nil {
		log.Printf("[ERROR][UDS] command `%s`: %v", line, err)
		_, _ = fmt.Fprintf(w, "error: %v\n", err)
		if cmdHnd.Usage != "" {
			_, _ = fmt.Fprintf(w, "usage: %s %s\n", cmdStr, cmdHnd.Usage)
		}
		return true
	}
	log.Printf("[INFO][UDS] command `%s` done", line)
	return true
}
