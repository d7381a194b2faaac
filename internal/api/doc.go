// Package api serves the echo server's admin HTTP endpoints.
//
// Routes:
//
//	GET /api/status        session count and uptime
//	GET /api/metrics       connection metrics snapshot
//	GET /api/log/domains   every configured log domain with its settings
//	GET /api/log/resolve   the configuration a domain resolves to (?domain=a/b)
//	GET /ws                websocket stream of session events and metrics
//
// Requests are logged under the "api" sub-domain of the handle passed to
// Start or Handler.
package api
