// Package service orchestrates the ordered store: the treemap that holds
// the data, the sequencer that numbers changes, the outbox that publishes
// them, and the metrics that describe them.
//
// It provides a clean API for writing, reading and ranging over keys,
// decoupled from network transports like gRPC.
package service
