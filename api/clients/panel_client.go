package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/ruteri/hostkey-panel/api"
	"github.com/ruteri/hostkey-panel/hostkeys"
	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/stretchr/testify/mock"
)

var generatePaths = map[hostkeys.KeyKind]string{
	hostkeys.KindSSH:         "generate",
	hostkeys.KindSnakeoil:    "generate-snakeoil",
	hostkeys.KindLetsEncrypt: "generate-letsencrypt",
}

// PanelClient implements api.PanelProvider over HTTP.
type PanelClient struct {
	// ServerAddr is the base URL of the panel server
	ServerAddr string

	client *http.Client
}

// NewPanelClient creates a client with its own session.
func NewPanelClient(serverAddr string, timeout time.Duration) (*PanelClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &PanelClient{
		ServerAddr: strings.TrimSuffix(serverAddr, "/"),
		client: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

func (c *PanelClient) url(path string) string {
	return c.ServerAddr + api.PathPrefix + path
}

// Index fetches the status page.
func (c *PanelClient) Index() (*api.IndexResponse, error) {
	return c.doIndex(http.MethodGet, "/")
}

// Generate imports a key of the given kind for domain.
func (c *PanelClient) Generate(kind hostkeys.KeyKind, domain string) (*api.IndexResponse, error) {
	path, ok := generatePaths[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", interfaces.ErrUnknownKeyKind, kind)
	}
	return c.doIndex(http.MethodPost, fmt.Sprintf("/%s/%s", path, url.PathEscape(domain)))
}

// Publish starts publishing the key with the given fingerprint.
func (c *PanelClient) Publish(fingerprint interfaces.Fingerprint) (*api.IndexResponse, error) {
	return c.doIndex(http.MethodPost, "/publish/"+fingerprint.String())
}

// Cancel cancels a running publish job.
func (c *PanelClient) Cancel() (*api.IndexResponse, error) {
	return c.doIndex(http.MethodPost, "/cancel")
}

// Key fetches the details of one key.
func (c *PanelClient) Key(fingerprint interfaces.Fingerprint) (*api.KeyResponse, error) {
	resp, err := c.client.Get(c.url("/key/" + fingerprint.String()))
	if err != nil {
		return nil, fmt.Errorf("could not request key endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, interfaces.ErrKeyNotFound
	}
	if err := checkStatus(resp, "key"); err != nil {
		return nil, err
	}

	var parsed api.KeyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse key response: %w", err)
	}
	return &parsed, nil
}

// WaitForPublish polls the status page until no publish job is running and
// returns the page that reported completion. Notifications seen on the way
// are accumulated into the returned page.
func (c *PanelClient) WaitForPublish(ctx context.Context, interval time.Duration) (*api.IndexResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var messages []interfaces.Notification
	for {
		index, err := c.Index()
		if err != nil {
			return nil, err
		}
		messages = append(messages, index.Messages...)
		if !index.Running {
			index.Messages = messages
			return index, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (c *PanelClient) doIndex(method, path string) (*api.IndexResponse, error) {
	req, err := http.NewRequest(method, c.url(path), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request panel endpoint: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, "panel"); err != nil {
		return nil, err
	}

	var parsed api.IndexResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("could not parse panel response: %w", err)
	}
	return &parsed, nil
}

func checkStatus(resp *http.Response, endpoint string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s endpoint returned non-200 response: %d", endpoint, resp.StatusCode)
	}
	return fmt.Errorf("%s endpoint returned error %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
}

// MockPanelProvider implements a mock api.PanelProvider for testing.
type MockPanelProvider struct {
	mock.Mock
}

func (m *MockPanelProvider) Index() (*api.IndexResponse, error) {
	args := m.Called()
	resp, _ := args.Get(0).(*api.IndexResponse)
	return resp, args.Error(1)
}

func (m *MockPanelProvider) Generate(kind hostkeys.KeyKind, domain string) (*api.IndexResponse, error) {
	args := m.Called(kind, domain)
	resp, _ := args.Get(0).(*api.IndexResponse)
	return resp, args.Error(1)
}

func (m *MockPanelProvider) Key(fingerprint interfaces.Fingerprint) (*api.KeyResponse, error) {
	args := m.Called(fingerprint)
	resp, _ := args.Get(0).(*api.KeyResponse)
	return resp, args.Error(1)
}

func (m *MockPanelProvider) Publish(fingerprint interfaces.Fingerprint) (*api.IndexResponse, error) {
	args := m.Called(fingerprint)
	resp, _ := args.Get(0).(*api.IndexResponse)
	return resp, args.Error(1)
}

func (m *MockPanelProvider) Cancel() (*api.IndexResponse, error) {
	args := m.Called()
	resp, _ := args.Get(0).(*api.IndexResponse)
	return resp, args.Error(1)
}
