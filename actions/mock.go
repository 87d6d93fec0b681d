package actions

import (
	"context"

	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockRunner mocks the interfaces.ActionRunner interface
type MockRunner struct {
	mock.Mock
}

// Run mocks the Run method
func (m *MockRunner) Run(ctx context.Context, module string, args []string) ([]byte, error) {
	ret := m.Called(ctx, module, args)
	out, _ := ret.Get(0).([]byte)
	return out, ret.Error(1)
}

// RunAsync mocks the RunAsync method
func (m *MockRunner) RunAsync(module string, args []string) (interfaces.Job, error) {
	ret := m.Called(module, args)
	job, _ := ret.Get(0).(interfaces.Job)
	return job, ret.Error(1)
}

// MockJob mocks the interfaces.Job interface
type MockJob struct {
	mock.Mock
}

// ID mocks the ID method
func (m *MockJob) ID() string {
	ret := m.Called()
	return ret.String(0)
}

// Poll mocks the Poll method
func (m *MockJob) Poll() (int, bool) {
	ret := m.Called()
	return ret.Int(0), ret.Bool(1)
}

// Terminate mocks the Terminate method
func (m *MockJob) Terminate() error {
	ret := m.Called()
	return ret.Error(0)
}
