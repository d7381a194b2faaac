// Package client provides a load generator for the echo server.
//
// The Client opens a number of concurrent sessions, each sending fixed-size
// random payloads and checking that every byte comes back. Sessions run on a
// worker.Pool and log under "bench/session-<n>" beneath the caller's handle.
//
// # Basic Usage
//
//	config := client.DefaultConfig()
//	config.Addr = "localhost:1337"
//	config.Sessions = 20
//	cl := client.New(config)
//
//	snap, err := cl.Run(ctx)
//	fmt.Printf("bytes: %d, failed: %d\n", snap.BytesEchoed, snap.FailedConnections)
//
// # Configuration
//
// The Config struct allows tuning:
//   - NumWorkers: parallel workers (0 = CPU count)
//   - Sessions: number of connections to open
//   - Messages: payloads sent per session
//   - PayloadSize: size of each payload in bytes
//   - DialTimeout: connect timeout per session
package client
