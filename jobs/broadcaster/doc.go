// Package broadcaster publishes store change events to Kafka.
//
// Events wait in an in-memory outbox ordered by sequence number and are
// drained oldest first. A failed send stops the drain; the event stays at
// the head of the outbox and is retried on the next tick.
package broadcaster
