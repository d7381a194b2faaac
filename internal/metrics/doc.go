// Package metrics provides connection metrics for the echo server.
//
// Metrics counts accepted, active and closed connections, bytes echoed, and
// keeps a bounded sample of connection lifetimes for percentile reporting.
// It is thread-safe and built on atomic counters.
//
// # Basic Usage
//
//	m := metrics.New()
//
//	m.RecordAccepted()
//	start := time.Now()
//	// ... serve the connection ...
//	m.RecordClosed(time.Since(start), n, err)
//
//	snap := m.Snapshot()
//	fmt.Printf("active: %d, bytes: %d, P99: %v\n",
//	    snap.ActiveConnections, snap.BytesEchoed, snap.P99Lifetime)
//
// # Configuration
//
// Use NewWithConfig to change how many lifetime samples are kept:
//
//	m := metrics.NewWithConfig(metrics.Config{MaxLifetimeSamples: 5000})
package metrics
