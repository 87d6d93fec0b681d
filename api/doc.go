/*
Package api provides the HTTP surface of the host key publication panel.

This package is organized into two subpackages:

1. panelhandler - Request processing for the panel pages and form actions
2. clients - Client library for driving the panel over HTTP

The shared request and response types and the HTTP server configuration live
in this package.

# Pages

All pages are mounted under /monkeysphere and rendered as JSON:

  - GET  /monkeysphere/                            status page (IndexResponse)
  - GET  /monkeysphere/key/{fingerprint}           key details (KeyResponse)
  - POST /monkeysphere/generate/{domain}           import the SSH host key
  - POST /monkeysphere/generate-snakeoil/{domain}  import the snakeoil certificate key
  - POST /monkeysphere/generate-letsencrypt/{domain}  import the Let's Encrypt key
  - POST /monkeysphere/publish/{fingerprint}       start publishing a key
  - POST /monkeysphere/cancel                      cancel publishing

Form actions answer with 303 See Other to the status page. The notifications
they produce are kept for the caller's session and returned by the next status
page request.
*/
package api
