package interfaces

import "context"

// ActionRunner executes privileged helper modules.
type ActionRunner interface {
	// Run executes module with args, waits for it and returns its standard
	// output. A non-zero exit is reported as *ActionError.
	Run(ctx context.Context, module string, args []string) ([]byte, error)

	// RunAsync starts module with args and returns immediately.
	RunAsync(module string, args []string) (Job, error)
}

// Job is a handle on an asynchronously running helper process.
type Job interface {
	// ID identifies the job in logs.
	ID() string

	// Poll reports whether the process has exited and, if so, its exit code.
	// It never blocks.
	Poll() (exitCode int, done bool)

	// Terminate asks the process to stop. It does not wait for the exit.
	Terminate() error
}
