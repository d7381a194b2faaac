// Package output provides the sinks that render log records.
//
// An Output receives a severity, a domain and an already built message.
// Outputs that want to render errors themselves also implement ErrorWriter;
// for the others WriteError falls back to writing the message followed by the
// error and its stack trace. WriteErrorOnly hands the error to an
// ErrorOnlyWriter when the output implements one and otherwise supplies a
// fixed placeholder message.
//
// # Kinds
//
// Outputs are named by kind in configuration files. A Registry maps kind
// names to factories and a Cache makes sure each kind is constructed at most
// once and then shared by every domain that resolves to it:
//
//	reg := output.DefaultRegistry()
//	cache := output.NewCache(reg)
//	out, err := cache.Get("console")
//
// The default registry knows these kinds:
//   - console: timestamped, optionally coloured lines on stdout
//   - void: discards everything
//   - slog: JSON lines on stderr through log/slog
//   - zerolog: JSON lines on stderr through zerolog
//   - hclog: hclog formatted lines on stderr
//
// # Thread Safety
//
// Every shipped Output serializes its own writes. Cache.Get is safe for
// concurrent use and never constructs the same kind twice.
package output
