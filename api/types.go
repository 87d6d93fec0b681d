package api

import (
	"github.com/ruteri/hostkey-panel/hostkeys"
	"github.com/ruteri/hostkey-panel/interfaces"
)

// PathPrefix is where the panel pages are mounted.
const PathPrefix = "/monkeysphere"

// IndexResponse is the status page: the key listing, whether a publish job is
// running and the notifications pending for the caller's session.
type IndexResponse struct {
	hostkeys.IndexPage

	Messages []interfaces.Notification `json:"messages"`
}

// KeyResponse is the details page of a single key.
type KeyResponse struct {
	Title string          `json:"title"`
	Key   *interfaces.Key `json:"key"`
}

// PanelProvider is implemented by clients of the panel API.
type PanelProvider interface {
	Index() (*IndexResponse, error)
	Generate(kind hostkeys.KeyKind, domain string) (*IndexResponse, error)
	Key(fingerprint interfaces.Fingerprint) (*KeyResponse, error)
	Publish(fingerprint interfaces.Fingerprint) (*IndexResponse, error)
	Cancel() (*IndexResponse, error)
}
