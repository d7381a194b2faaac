// Package severity defines the seven ordered log severities.
//
// Severities are ordered from the most restrictive to the most verbose:
//
//	None < Fatal < Error < Warning < Info < Debug < Trace
//
// A record of severity A is emitted by a handle whose ceiling is B only when
// A.Passes(B), that is when rank(A) <= rank(B). A ceiling of None therefore
// suppresses everything, including fatal records.
//
// # Parsing
//
// Parse accepts the seven names case-insensitively:
//
//	s, err := severity.Parse("Debug")
//	if errors.Is(err, severity.ErrUnknownSeverity) {
//	    // not one of none, fatal, error, warning, info, debug, trace
//	}
package severity
