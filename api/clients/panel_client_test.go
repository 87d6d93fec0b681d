package clients

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/hostkey-panel/actions"
	"github.com/ruteri/hostkey-panel/api/panelhandler"
	"github.com/ruteri/hostkey-panel/flash"
	"github.com/ruteri/hostkey-panel/hostkeys"
	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/ruteri/hostkey-panel/jobs"
	"github.com/ruteri/hostkey-panel/names"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testFingerprint = interfaces.Fingerprint("0123456789ABCDEF0123456789ABCDEF01234567")

func setupTestServer(t *testing.T) (*PanelClient, *actions.MockRunner) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	runner := new(actions.MockRunner)
	registry := names.NewStatic(map[string][]string{"domainname": {"example.org"}}, logger)
	service := hostkeys.NewService(runner, registry, logger)

	mux := chi.NewRouter()
	panelhandler.NewHandler(service, flash.NewStore(time.Minute), logger).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	runner.On("Run", mock.Anything, "monkeysphere", []string{"host-show-keys"}).
		Return([]byte(`{"keys": [{"uid": "ssh://example.org", "fingerprint": "`+string(testFingerprint)+`"}]}`), nil)
	runner.On("Run", mock.Anything, "letsencrypt", []string{"get-status"}).
		Return([]byte(`{"domains": {}}`), nil)

	client, err := NewPanelClient(srv.URL+"/", 5*time.Second)
	require.NoError(t, err)
	return client, runner
}

func TestPanelClient_Generate(t *testing.T) {
	client, runner := setupTestServer(t)
	runner.On("Run", mock.Anything, "monkeysphere", []string{"host-import-snakeoil-key", "example.org"}).
		Return([]byte{}, nil).Once()

	index, err := client.Generate(hostkeys.KindSnakeoil, "example.org")
	require.NoError(t, err)

	assert.Equal(t, []interfaces.Notification{
		{Severity: interfaces.SeveritySuccess, Message: hostkeys.MsgGenerated},
	}, index.Messages)
	require.Len(t, index.Status.Domains, 1)
	assert.Equal(t, "example.org", index.Status.Domains[0].Name)

	_, err = client.Generate(hostkeys.KeyKind("bogus"), "example.org")
	assert.ErrorIs(t, err, interfaces.ErrUnknownKeyKind)
}

func TestPanelClient_PublishAndWait(t *testing.T) {
	client, runner := setupTestServer(t)

	job := new(actions.MockJob)
	job.On("ID").Return("job-1").Maybe()
	job.On("Poll").Return(0, false).Twice()
	job.On("Poll").Return(0, true).Once()
	runner.On("RunAsync", "monkeysphere", []string{"host-publish-key", string(testFingerprint)}).Return(job, nil).Once()

	index, err := client.Publish(testFingerprint)
	require.NoError(t, err)
	assert.True(t, index.Running)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	index, err = client.WaitForPublish(ctx, 10*time.Millisecond)
	require.NoError(t, err)

	assert.False(t, index.Running)
	assert.Equal(t, []interfaces.Notification{
		{Severity: interfaces.SeveritySuccess, Message: jobs.MsgPublished},
	}, index.Messages)
	job.AssertExpectations(t)
}

func TestPanelClient_Cancel(t *testing.T) {
	client, runner := setupTestServer(t)

	job := new(actions.MockJob)
	job.On("ID").Return("job-1").Maybe()
	job.On("Poll").Return(0, false).Maybe()
	job.On("Terminate").Return(nil).Once()
	runner.On("RunAsync", "monkeysphere", []string{"host-publish-key", string(testFingerprint)}).Return(job, nil).Once()

	_, err := client.Publish(testFingerprint)
	require.NoError(t, err)

	index, err := client.Cancel()
	require.NoError(t, err)
	assert.False(t, index.Running)
	assert.Equal(t, []interfaces.Notification{
		{Severity: interfaces.SeverityInfo, Message: jobs.MsgPublishCanceled},
	}, index.Messages)
}

func TestPanelClient_Key(t *testing.T) {
	client, runner := setupTestServer(t)
	runner.On("Run", mock.Anything, "monkeysphere", []string{"host-show-keys", string(testFingerprint)}).
		Return([]byte(`{"keys": [{"uid": "ssh://example.org", "fingerprint": "`+string(testFingerprint)+`"}]}`), nil).Once()

	resp, err := client.Key(testFingerprint)
	require.NoError(t, err)
	assert.Equal(t, hostkeys.Title, resp.Title)
	assert.Equal(t, "ssh://example.org", resp.Key.UID)

	missing := interfaces.Fingerprint("FFFFFFFFFFFFFFFF")
	runner.On("Run", mock.Anything, "monkeysphere", []string{"host-show-keys", string(missing)}).
		Return([]byte(""), nil).Once()
	_, err = client.Key(missing)
	assert.ErrorIs(t, err, interfaces.ErrKeyNotFound)
}
