// Package round defines the round-number vocabulary ThresholdCore's
// protocol errors are tagged with.
package round

// Number identifies a round within a protocol, starting at 1.
type Number int
