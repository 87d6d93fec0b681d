// Package hostkeys implements the panel operations for OpenPGP host key
// publication.
//
// A Service validates requests against the domain registry, invokes the
// privileged "monkeysphere" and "letsencrypt" helpers through an
// interfaces.ActionRunner and turns their JSON output into display-ready
// views. Every user-visible operation takes an explicit
// *interfaces.Notifications that collects the success, error and info
// messages the caller should show on the next page render.
//
// # Operations
//
//   - Generate imports the host key of an SSH service, a snakeoil certificate
//     or a Let's Encrypt certificate for a registered domain into the
//     OpenPGP keyring. Unregistered domains are ignored without a message.
//   - Publish starts the single background upload of a key to the keyservers;
//     Cancel stops it. Completion is picked up by Index on the next render.
//   - Status joins the helper's key listing with the certificate status and
//     groups keys by service and certificate provenance.
//   - Key returns the details of one key by fingerprint.
//
// # Certificate provenance
//
// The helper does not record whether an HTTPS key came from a snakeoil or a
// Let's Encrypt certificate. Status infers it from the certificate status of
// the domain, so a snakeoil key imported before Let's Encrypt was enabled for
// that domain is listed with the Let's Encrypt keys.
package hostkeys
