package interfaces

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Key URI schemes used in the uid of a published host key.
const (
	SSHKeyScheme   = "ssh://"
	HTTPSKeyScheme = "https://"
)

// Fingerprint identifies an OpenPGP key. It is upper-case hex without spaces.
type Fingerprint string

// NewFingerprint normalizes and validates a fingerprint supplied by a client.
// Spaces are removed, as are an optional 0x prefix and letter case differences.
func NewFingerprint(s string) (Fingerprint, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	clean = strings.TrimPrefix(strings.TrimPrefix(clean, "0x"), "0X")
	if len(clean) < 16 || len(clean) > 40 || len(clean)%2 != 0 {
		return "", fmt.Errorf("%w: fingerprint must be 16 to 40 hex characters", ErrInvalidFingerprint)
	}
	if _, err := hex.DecodeString(clean); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidFingerprint, err)
	}
	return Fingerprint(strings.ToUpper(clean)), nil
}

func (f Fingerprint) String() string {
	return string(f)
}

// Key is one record of the helper's key listing. Only the fields the panel
// acts on are typed; everything else is kept in Extra and written back
// unchanged when the key is encoded.
type Key struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	UID         string `json:"uid"`

	// Name is the uid with its scheme stripped, i.e. the domain name.
	Name string `json:"name,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Scheme returns the uid scheme prefix or the empty string.
func (k *Key) Scheme() string {
	switch {
	case strings.HasPrefix(k.UID, SSHKeyScheme):
		return SSHKeyScheme
	case strings.HasPrefix(k.UID, HTTPSKeyScheme):
		return HTTPSKeyScheme
	}
	return ""
}

func (k *Key) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	uid, ok := fields["uid"]
	if !ok {
		return fmt.Errorf("%w: key record without uid", ErrMalformedOutput)
	}
	if err := json.Unmarshal(uid, &k.UID); err != nil {
		return fmt.Errorf("%w: key uid: %v", ErrMalformedOutput, err)
	}
	delete(fields, "uid")

	if fpr, ok := fields["fingerprint"]; ok {
		if err := json.Unmarshal(fpr, &k.Fingerprint); err != nil {
			return fmt.Errorf("%w: key fingerprint: %v", ErrMalformedOutput, err)
		}
		delete(fields, "fingerprint")
	}
	delete(fields, "name")

	if len(fields) > 0 {
		k.Extra = fields
	}
	k.Name = strings.TrimPrefix(k.UID, k.Scheme())
	return nil
}

func (k Key) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(k.Extra)+3)
	for name, value := range k.Extra {
		out[name] = value
	}

	var err error
	if out["uid"], err = json.Marshal(k.UID); err != nil {
		return nil, err
	}
	if k.Fingerprint != "" {
		if out["fingerprint"], err = json.Marshal(k.Fingerprint); err != nil {
			return nil, err
		}
	}
	if k.Name != "" {
		if out["name"], err = json.Marshal(k.Name); err != nil {
			return nil, err
		}
	}
	return json.Marshal(out)
}

// DomainEntry pairs a domain name with the key published for it, if any.
type DomainEntry struct {
	Name string `json:"name"`
	Key  *Key   `json:"key"`
}

// Status is the display view of all known keys. Domains lists SSH host keys;
// the HTTPS keys are split by certificate provenance.
type Status struct {
	Domains            []DomainEntry `json:"domains"`
	SnakeoilDomains    []DomainEntry `json:"snakeoil_domains"`
	LetsEncryptDomains []DomainEntry `json:"letsencrypt_domains"`
}

// KeyListing is the output of "monkeysphere host-show-keys".
type KeyListing struct {
	Keys []Key `json:"keys"`
}

// CertificateStatus is the per-domain record of "letsencrypt get-status".
type CertificateStatus struct {
	CertificateAvailable bool `json:"certificate_available"`
}

// CertificateListing is the output of "letsencrypt get-status".
type CertificateListing struct {
	Domains map[string]CertificateStatus `json:"domains"`
}
