package jobs

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/ruteri/hostkey-panel/actions"
	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFingerprint = interfaces.Fingerprint("0123456789ABCDEF0123456789ABCDEF01234567")

var publishArgs = []string{"host-publish-key", string(testFingerprint)}

func newTestTracker() (*Tracker, *actions.MockRunner) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := new(actions.MockRunner)
	return NewTracker(runner, logger), runner
}

func newJob() *actions.MockJob {
	job := new(actions.MockJob)
	job.On("ID").Return("job-1").Maybe()
	return job
}

func TestStart_SingleFlight(t *testing.T) {
	tracker, runner := newTestTracker()
	job := newJob()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(job, nil).Once()

	require.NoError(t, tracker.Start(testFingerprint))
	require.NoError(t, tracker.Start(testFingerprint))

	assert.True(t, tracker.IsRunning())
	runner.AssertNumberOfCalls(t, "RunAsync", 1)
	runner.AssertExpectations(t)
}

func TestStart_ConcurrentRequestsLaunchOnce(t *testing.T) {
	tracker, runner := newTestTracker()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(newJob(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = tracker.Start(testFingerprint)
		}()
	}
	wg.Wait()

	runner.AssertNumberOfCalls(t, "RunAsync", 1)
}

func TestStart_LaunchErrorKeepsIdle(t *testing.T) {
	tracker, runner := newTestTracker()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(nil, errors.New("no sudo"))

	err := tracker.Start(testFingerprint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sudo")
	assert.False(t, tracker.IsRunning())
}

func TestCheckAndReconcile_IdleEmitsNothing(t *testing.T) {
	tracker, _ := newTestTracker()
	notes := &interfaces.Notifications{}

	tracker.CheckAndReconcile(notes)

	assert.Equal(t, 0, notes.Len())
	assert.False(t, tracker.IsRunning())
}

func TestCheckAndReconcile_StillRunning(t *testing.T) {
	tracker, runner := newTestTracker()
	job := newJob()
	job.On("Poll").Return(0, false)
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(job, nil)
	require.NoError(t, tracker.Start(testFingerprint))

	notes := &interfaces.Notifications{}
	tracker.CheckAndReconcile(notes)

	assert.Equal(t, 0, notes.Len())
	assert.True(t, tracker.IsRunning())
}

func TestCheckAndReconcile_SuccessReportedOnce(t *testing.T) {
	tracker, runner := newTestTracker()
	job := newJob()
	job.On("Poll").Return(0, true).Once()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(job, nil)
	require.NoError(t, tracker.Start(testFingerprint))

	notes := &interfaces.Notifications{}
	tracker.CheckAndReconcile(notes)

	assert.Equal(t, []interfaces.Notification{
		{Severity: interfaces.SeveritySuccess, Message: MsgPublished},
	}, notes.All())
	assert.False(t, tracker.IsRunning())

	tracker.CheckAndReconcile(notes)
	assert.Equal(t, 1, notes.Len())
	job.AssertExpectations(t)
}

func TestCheckAndReconcile_FailureIsGeneric(t *testing.T) {
	tracker, runner := newTestTracker()
	job := newJob()
	job.On("Poll").Return(2, true).Once()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(job, nil)
	require.NoError(t, tracker.Start(testFingerprint))

	notes := &interfaces.Notifications{}
	tracker.CheckAndReconcile(notes)

	assert.Equal(t, []interfaces.Notification{
		{Severity: interfaces.SeverityError, Message: MsgPublishFailed},
	}, notes.All())
	assert.False(t, tracker.IsRunning())
}

func TestStart_AllowedAgainAfterCompletion(t *testing.T) {
	tracker, runner := newTestTracker()
	first := newJob()
	first.On("Poll").Return(0, true)
	second := newJob()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(first, nil).Once()
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(second, nil).Once()

	require.NoError(t, tracker.Start(testFingerprint))
	tracker.CheckAndReconcile(&interfaces.Notifications{})
	require.NoError(t, tracker.Start(testFingerprint))

	assert.True(t, tracker.IsRunning())
	runner.AssertNumberOfCalls(t, "RunAsync", 2)
}

func TestCancel_Running(t *testing.T) {
	for name, terminateErr := range map[string]error{
		"terminated":       nil,
		"terminate failed": errors.New("no such process"),
	} {
		t.Run(name, func(t *testing.T) {
			tracker, runner := newTestTracker()
			job := newJob()
			job.On("Terminate").Return(terminateErr).Once()
			runner.On("RunAsync", "monkeysphere", publishArgs).Return(job, nil)
			require.NoError(t, tracker.Start(testFingerprint))

			notes := &interfaces.Notifications{}
			tracker.Cancel(notes)

			assert.Equal(t, []interfaces.Notification{
				{Severity: interfaces.SeverityInfo, Message: MsgPublishCanceled},
			}, notes.All())
			assert.False(t, tracker.IsRunning())
			job.AssertExpectations(t)
		})
	}
}

func TestCancel_IdleIsNoop(t *testing.T) {
	tracker, _ := newTestTracker()
	notes := &interfaces.Notifications{}

	tracker.Cancel(notes)

	assert.Equal(t, 0, notes.Len())
}

func TestCancel_AfterUnobservedCompletion(t *testing.T) {
	tracker, runner := newTestTracker()
	job := newJob()
	job.On("Terminate").Return(nil)
	runner.On("RunAsync", "monkeysphere", publishArgs).Return(job, nil)
	require.NoError(t, tracker.Start(testFingerprint))

	// The helper may already have succeeded; cancel still wins.
	notes := &interfaces.Notifications{}
	tracker.Cancel(notes)
	tracker.CheckAndReconcile(notes)

	assert.Equal(t, []interfaces.Notification{
		{Severity: interfaces.SeverityInfo, Message: MsgPublishCanceled},
	}, notes.All())
	job.AssertNotCalled(t, "Poll")
}
