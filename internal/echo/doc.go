// Package echo implements a TCP echo server whose sessions are visible in
// the log domain hierarchy.
//
// The accept loop runs in the "client" sub-domain of the caller's handle and
// every connection gets its own sub-domain named after the remote address,
// for example "echo-server/client/#127.0.0.1:53122". Connection bookkeeping is
// done by a ConnectionManager that logs under "@connection-manager" beneath
// whichever session called it.
//
// Connections are served by a worker.Pool sized to the connection limit, so a
// session's log handle travels with it onto the worker goroutine.
package echo
