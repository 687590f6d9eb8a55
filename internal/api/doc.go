// Package api hosts the HTTP server used when the function runs outside a
// serverless runtime (local development or a container). Notable routes:
//   - GET /healthz and /readyz for probes.
//   - GET /metrics for Prometheus scraping.
//   - GET /* for every other path, answered by the thanks page handler. Paths
//     outside the serverless route get the handler's 404 JSON document.
package api
