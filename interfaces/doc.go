// Package interfaces defines the core types and collaborator contracts of the
// host key publication panel, separating interface definitions from their
// implementations.
//
// # Collaborators
//
// ActionRunner: runs the privileged helper scripts, either synchronously
// (returning the helper's standard output) or asynchronously (returning a Job).
//
// Job: a handle on an asynchronous helper process that can be polled without
// blocking and terminated early.
//
// DomainRegistry: the read-only mapping from domain type to domain names that
// every domain-scoped operation is validated against.
//
// # Notifications
//
// Notifications is the explicit, request-scoped collection of user-visible
// messages. Panel operations take it as a parameter and append to it instead
// of relying on a web framework's session messages.
//
// # Key Records
//
// Key, DomainEntry and Status model the JSON produced by the helper's
// host-show-keys and get-status commands, shaped for display.
package interfaces
