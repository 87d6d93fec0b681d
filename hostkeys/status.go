package hostkeys

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/ruteri/hostkey-panel/names"
)

// Status lists every registered domain with its SSH key and its HTTPS key,
// the latter split into snakeoil and Let's Encrypt buckets.
func (s *Service) Status(ctx context.Context) (*interfaces.Status, error) {
	output, err := s.runner.Run(ctx, monkeysphereModule, []string{"host-show-keys"})
	if err != nil {
		return nil, fmt.Errorf("could not list keys: %w", err)
	}
	listing, err := parseKeyListing(output, false)
	if err != nil {
		return nil, err
	}

	sshKeys := make(map[string]*interfaces.Key)
	httpsKeys := make(map[string]*interfaces.Key)
	for i := range listing.Keys {
		key := &listing.Keys[i]
		switch key.Scheme() {
		case interfaces.SSHKeyScheme:
			sshKeys[key.Name] = key
		case interfaces.HTTPSKeyScheme:
			httpsKeys[key.Name] = key
		}
	}

	output, err = s.runner.Run(ctx, letsencryptModule, []string{"get-status"})
	if err != nil {
		return nil, fmt.Errorf("could not get certificate status: %w", err)
	}
	certificates, err := parseCertificateListing(output)
	if err != nil {
		return nil, err
	}

	return classify(names.All(s.registry.Domains()), sshKeys, httpsKeys, certificates), nil
}

// classify places each domain in Domains and in exactly one of the two
// certificate buckets. Provenance is taken from the certificate record, not
// from the key.
func classify(domains []string, sshKeys, httpsKeys map[string]*interfaces.Key, certificates map[string]interfaces.CertificateStatus) *interfaces.Status {
	status := &interfaces.Status{
		Domains:            []interfaces.DomainEntry{},
		SnakeoilDomains:    []interfaces.DomainEntry{},
		LetsEncryptDomains: []interfaces.DomainEntry{},
	}

	for _, domain := range domains {
		status.Domains = append(status.Domains, interfaces.DomainEntry{Name: domain, Key: sshKeys[domain]})

		entry := interfaces.DomainEntry{Name: domain, Key: httpsKeys[domain]}
		if cert, ok := certificates[domain]; ok && cert.CertificateAvailable {
			status.LetsEncryptDomains = append(status.LetsEncryptDomains, entry)
		} else {
			status.SnakeoilDomains = append(status.SnakeoilDomains, entry)
		}
	}
	return status
}

// parseKeyListing decodes host-show-keys output. When allowEmpty is set, empty
// output yields a nil listing instead of an error.
func parseKeyListing(output []byte, allowEmpty bool) (*interfaces.KeyListing, error) {
	if len(bytes.TrimSpace(output)) == 0 {
		if allowEmpty {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: empty key listing", interfaces.ErrMalformedOutput)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(output, &fields); err != nil {
		return nil, fmt.Errorf("%w: key listing: %v", interfaces.ErrMalformedOutput, err)
	}
	if _, ok := fields["keys"]; !ok {
		return nil, fmt.Errorf("%w: key listing without keys", interfaces.ErrMalformedOutput)
	}

	var listing interfaces.KeyListing
	if err := json.Unmarshal(output, &listing); err != nil {
		return nil, fmt.Errorf("%w: key listing: %v", interfaces.ErrMalformedOutput, err)
	}
	return &listing, nil
}

func parseCertificateListing(output []byte) (map[string]interfaces.CertificateStatus, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(output, &fields); err != nil {
		return nil, fmt.Errorf("%w: certificate status: %v", interfaces.ErrMalformedOutput, err)
	}
	if _, ok := fields["domains"]; !ok {
		return nil, fmt.Errorf("%w: certificate status without domains", interfaces.ErrMalformedOutput)
	}

	var listing interfaces.CertificateListing
	if err := json.Unmarshal(output, &listing); err != nil {
		return nil, fmt.Errorf("%w: certificate status: %v", interfaces.ErrMalformedOutput, err)
	}
	return listing.Domains, nil
}
