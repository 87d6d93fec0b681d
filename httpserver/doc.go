/*
Package httpserver runs the host key publication panel over HTTP.

The Server mounts the panel handler next to the operational endpoints and
manages the listener lifecycle:

  - /livez    liveness check, always 200 while the process serves requests
  - /readyz   readiness check, 503 while the server is draining
  - /drain    mark the server not ready so load balancers stop routing to it
  - /undrain  mark the server ready again
  - /debug    pprof, when enabled

Prometheus metrics are served on a separate listener when a metrics address is
configured. Shutdown stops both listeners gracefully within the configured
grace period.
*/
package httpserver
