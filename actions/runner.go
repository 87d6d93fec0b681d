package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/ruteri/hostkey-panel/metrics"
)

const (
	// DefaultActionsDir is where the helper scripts are installed.
	DefaultActionsDir = "/usr/share/plinth/actions"

	// maxOutputBytes bounds the captured stdout and stderr of a helper.
	maxOutputBytes = 4 << 20
)

// Runner implements interfaces.ActionRunner with os/exec.
type Runner struct {
	// ActionsDir holds one executable per module.
	ActionsDir string

	// Sudo runs helpers through "sudo -n". Disabled in tests and when the
	// panel itself runs as root.
	Sudo bool

	// Timeout bounds synchronous runs. Zero means no limit beyond ctx.
	Timeout time.Duration

	Log *slog.Logger
}

// NewRunner creates a runner for the helpers in actionsDir.
func NewRunner(actionsDir string, sudo bool, timeout time.Duration, log *slog.Logger) *Runner {
	return &Runner{
		ActionsDir: actionsDir,
		Sudo:       sudo,
		Timeout:    timeout,
		Log:        log,
	}
}

func (r *Runner) command(ctx context.Context, module string, args []string) (*exec.Cmd, error) {
	if err := validateInvocation(module, args); err != nil {
		return nil, err
	}

	path := filepath.Join(r.ActionsDir, module)
	argv := args
	name := path
	if r.Sudo {
		name = "sudo"
		argv = append([]string{"-n", path}, args...)
	}

	cmd := exec.CommandContext(ctx, name, argv...) //nolint:gosec // module and args validated above
	// Signal the whole process group on cancellation.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	return cmd, nil
}

// Run executes module with args and returns its standard output.
func (r *Runner) Run(ctx context.Context, module string, args []string) ([]byte, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd, err := r.command(ctx, module, args)
	if err != nil {
		return nil, err
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, remaining: maxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, remaining: maxOutputBytes}

	start := time.Now()
	err = cmd.Run()
	metrics.ActionDuration.WithLabelValues(module).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.ActionRunsTotal.WithLabelValues(module, "error").Inc()
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			actionErr := &interfaces.ActionError{
				Module:   module,
				Args:     args,
				ExitCode: exitErr.ExitCode(),
				Message:  helperMessage(stderr.Bytes(), exitErr),
			}
			r.Log.Debug("Action failed",
				slog.String("module", module),
				slog.Any("args", args),
				slog.Int("exitCode", actionErr.ExitCode),
				slog.String("stderr", actionErr.Message))
			return nil, actionErr
		}
		return nil, fmt.Errorf("could not run action %s: %w", module, err)
	}

	metrics.ActionRunsTotal.WithLabelValues(module, "ok").Inc()
	r.Log.Debug("Action completed",
		slog.String("module", module),
		slog.Any("args", args),
		slog.Int("outputSize", stdout.Len()))
	return stdout.Bytes(), nil
}

// RunAsync starts module with args and returns without waiting for it.
func (r *Runner) RunAsync(module string, args []string) (interfaces.Job, error) {
	cmd, err := r.command(context.Background(), module, args)
	if err != nil {
		return nil, err
	}

	proc := newProcess(cmd, r.Log)
	if err := proc.start(); err != nil {
		return nil, fmt.Errorf("could not start action %s: %w", module, err)
	}

	r.Log.Info("Started background action",
		slog.String("module", module),
		slog.Any("args", args),
		slog.String("job", proc.ID()),
		slog.Int("pid", cmd.Process.Pid))
	return proc, nil
}

// validateInvocation rejects module names that could escape the actions
// directory and arguments that cannot be passed through exec.
func validateInvocation(module string, args []string) error {
	if module == "" || module == "." || module == ".." ||
		strings.ContainsAny(module, "/\\\x00") {
		return fmt.Errorf("invalid action module name %q", module)
	}
	for _, arg := range args {
		if strings.ContainsRune(arg, 0) {
			return fmt.Errorf("invalid argument for action %s: contains NUL", module)
		}
	}
	return nil
}

// helperMessage is the text shown to the user for a failed helper.
func helperMessage(stderr []byte, exitErr *exec.ExitError) string {
	msg := strings.TrimSpace(string(stderr))
	if msg == "" {
		return exitErr.Error()
	}
	return msg
}

// limitedWriter silently drops output beyond its budget so a chatty helper
// cannot exhaust memory.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.remaining <= 0 {
		return n, nil
	}
	if len(p) > lw.remaining {
		p = p[:lw.remaining]
	}
	written, err := lw.w.Write(p)
	lw.remaining -= written
	if err != nil {
		return written, err
	}
	return n, nil
}
