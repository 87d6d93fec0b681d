package actions

import (
	"bytes"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"
)

var killGroup = syscall.Kill

// Process is a helper started by RunAsync.
type Process struct {
	id  string
	cmd *exec.Cmd
	log *slog.Logger

	stderr bytes.Buffer
	done   chan struct{}

	mu       sync.Mutex
	exitCode int
	detail   string
}

func newProcess(cmd *exec.Cmd, log *slog.Logger) *Process {
	p := &Process{
		id:   uuid.NewString(),
		cmd:  cmd,
		log:  log,
		done: make(chan struct{}),
	}
	cmd.Stdout = nil
	cmd.Stderr = &limitedWriter{w: &p.stderr, remaining: maxOutputBytes}
	return p
}

func (p *Process) start() error {
	if err := p.cmd.Start(); err != nil {
		return err
	}
	go p.wait()
	return nil
}

func (p *Process) wait() {
	err := p.cmd.Wait()

	p.mu.Lock()
	switch {
	case err == nil:
		p.exitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			p.exitCode = exitErr.ExitCode()
		} else {
			p.exitCode = -1
		}
		p.detail = strings.TrimSpace(p.stderr.String())
		if p.detail == "" {
			p.detail = err.Error()
		}
	}
	p.mu.Unlock()

	close(p.done)
}

func (p *Process) ID() string {
	return p.id
}

// Poll reports the exit code once the helper has exited. A helper killed by a
// signal reports -1.
func (p *Process) Poll() (int, bool) {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.exitCode, true
	default:
		return 0, false
	}
}

// Detail returns the helper's error output after a failed exit.
func (p *Process) Detail() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.detail
}

// Terminate sends SIGTERM to the helper's process group.
func (p *Process) Terminate() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	err := killGroup(-p.cmd.Process.Pid, syscall.SIGTERM)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	if err != nil {
		// Fall back to the leader alone, e.g. when sudo created its own group.
		return p.cmd.Process.Signal(syscall.SIGTERM)
	}
	return nil
}

// Wait blocks until the helper exits. Used by tests and shutdown.
func (p *Process) Wait() {
	<-p.done
}
