package hostkeys

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/hostkey-panel/interfaces"
	"github.com/ruteri/hostkey-panel/jobs"
)

const (
	Title       = "Monkeysphere"
	Description = "With Monkeysphere, an OpenPGP key can be generated for each configured " +
		"domain serving SSH. The OpenPGP public key can then be uploaded to the OpenPGP " +
		"keyservers. Users connecting to this machine through SSH can verify that they " +
		"are connecting to the correct host. For users to trust the key, at least one " +
		"person (usually the machine owner) must sign the key using the regular OpenPGP " +
		"key signing process."

	MsgGenerated = "Generated OpenPGP key."

	monkeysphereModule = "monkeysphere"
	letsencryptModule  = "letsencrypt"
)

// KeyKind selects the source of a generated OpenPGP key.
type KeyKind string

const (
	KindSSH         KeyKind = "ssh"
	KindSnakeoil    KeyKind = "snakeoil"
	KindLetsEncrypt KeyKind = "letsencrypt"
)

var importCommands = map[KeyKind]string{
	KindSSH:         "host-import-ssh-key",
	KindSnakeoil:    "host-import-snakeoil-key",
	KindLetsEncrypt: "host-import-letsencrypt-key",
}

// IndexPage is everything the status page shows.
type IndexPage struct {
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Status      *interfaces.Status `json:"status"`
	Running     bool               `json:"running"`
}

// Service implements the host key panel operations. It is safe for
// concurrent use; the only shared mutable state is the publish tracker.
type Service struct {
	runner   interfaces.ActionRunner
	registry interfaces.DomainRegistry
	tracker  *jobs.Tracker
	log      *slog.Logger
}

// NewService creates a Service with its own publish tracker. One Service
// should exist per process.
func NewService(runner interfaces.ActionRunner, registry interfaces.DomainRegistry, log *slog.Logger) *Service {
	return &Service{
		runner:   runner,
		registry: registry,
		tracker:  jobs.NewTracker(runner, log),
		log:      log,
	}
}

// Generate imports a key of the given kind for domain. Requests for domains
// not in the registry are dropped silently. Helper failures are reported to
// notes with the helper's message; only an unknown kind is returned as error.
func (s *Service) Generate(ctx context.Context, kind KeyKind, domain string, notes *interfaces.Notifications) error {
	command, ok := importCommands[kind]
	if !ok {
		return fmt.Errorf("%w: %q", interfaces.ErrUnknownKeyKind, kind)
	}

	if !s.registry.Contains(domain) {
		s.log.Debug("Ignoring key generation for unknown domain",
			slog.String("kind", string(kind)),
			slog.String("domain", domain))
		return nil
	}

	if _, err := s.runner.Run(ctx, monkeysphereModule, []string{command, domain}); err != nil {
		s.log.Warn("Key generation failed",
			slog.String("kind", string(kind)),
			slog.String("domain", domain),
			slog.Any("err", err))
		notes.Error(userMessage(err))
		return nil
	}

	s.log.Info("Generated OpenPGP key", slog.String("kind", string(kind)), slog.String("domain", domain))
	notes.Success(MsgGenerated)
	return nil
}

// Publish starts uploading the key to the keyservers unless an upload is
// already running.
func (s *Service) Publish(fingerprint interfaces.Fingerprint, notes *interfaces.Notifications) {
	if err := s.tracker.Start(fingerprint); err != nil {
		s.log.Error("Could not start key publishing", slog.String("fingerprint", fingerprint.String()), slog.Any("err", err))
		notes.Error(jobs.MsgPublishFailed)
	}
}

// Cancel stops a running upload.
func (s *Service) Cancel(notes *interfaces.Notifications) {
	s.tracker.Cancel(notes)
}

// Reconcile reports a finished upload to notes.
func (s *Service) Reconcile(notes *interfaces.Notifications) {
	s.tracker.CheckAndReconcile(notes)
}

// Running reports whether an upload is in progress.
func (s *Service) Running() bool {
	return s.tracker.IsRunning()
}

// Index reconciles the publish job and then collects the status page. The
// running flag is read after reconciliation so it reflects the latest known
// completion.
func (s *Service) Index(ctx context.Context, notes *interfaces.Notifications) (*IndexPage, error) {
	s.Reconcile(notes)

	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}

	return &IndexPage{
		Title:       Title,
		Description: Description,
		Status:      status,
		Running:     s.Running(),
	}, nil
}

// Key returns the key with the given fingerprint.
func (s *Service) Key(ctx context.Context, fingerprint interfaces.Fingerprint) (*interfaces.Key, error) {
	output, err := s.runner.Run(ctx, monkeysphereModule, []string{"host-show-keys", fingerprint.String()})
	if err != nil {
		return nil, err
	}

	listing, err := parseKeyListing(output, true)
	if err != nil {
		return nil, err
	}
	if listing == nil || len(listing.Keys) == 0 {
		return nil, interfaces.ErrKeyNotFound
	}
	return &listing.Keys[0], nil
}

// userMessage is the text shown for a failed helper invocation.
func userMessage(err error) string {
	var actionErr *interfaces.ActionError
	if errors.As(err, &actionErr) {
		return actionErr.Message
	}
	return err.Error()
}
