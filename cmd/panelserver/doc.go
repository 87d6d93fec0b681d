// Package main (cmd/panelserver) serves the host key publication panel.
//
// The server reads the configured domains from a YAML file, runs the
// privileged monkeysphere and letsencrypt helpers from the actions directory
// and exposes the panel pages under /monkeysphere together with health,
// readiness and drain endpoints. Prometheus metrics are served on a separate
// address.
//
// At most one background key publication runs at a time; its completion is
// reported on the next status page render.
//
// The server implements graceful shutdown on receiving termination signals
// (SIGINT/SIGTERM). A running publication is terminated on shutdown.
//
// Example usage:
//
//	panelserver --listen-addr=127.0.0.1:8080 \
//	    --domains-file=/etc/plinth/domains.yaml \
//	    --actions-dir=/usr/share/plinth/actions
package main
