// Package timeouts holds the timeout values used for database and I/O
// work outside a request's own deadline. Named values beat scattered
// literals when an operator asks why a call gave up.
//
//   - Ping: connectivity checks against the master and tenant databases
//   - Long: startup work such as connecting and building indexes
//   - Batch: bulk enrollment and other multi-document loops
package timeouts

import "time"

const (
	Ping  = 2 * time.Second
	Long  = 30 * time.Second
	Batch = 60 * time.Second
)
