// Package events consumes platform workflow events from a redis pub/sub
// channel and dispatches them to registered handlers by rule code.
//
// Messages are CBOR-encoded WorkflowEvent values carrying an opaque
// transaction payload. Decode failures and handler errors are logged and
// skipped; a single malformed message never terminates the subscription.
// If the broker connection drops, the subscriber reconnects with
// exponential backoff. Delivery is at-most-once: messages published while
// disconnected are lost.
package events
