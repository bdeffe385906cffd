package events

import "errors"

var (
	// ErrDecodeEvent is returned when a pub/sub message is not a valid
	// CBOR-encoded WorkflowEvent.
	ErrDecodeEvent = errors.New("events.decode_failed")

	// ErrDecodePayload is returned when a transaction payload cannot be
	// decoded into the requested type.
	ErrDecodePayload = errors.New("events.payload_decode_failed")

	// ErrUnhandledRule is returned by Dispatch when no handler is
	// registered for the event's rule code.
	ErrUnhandledRule = errors.New("events.unhandled_rule_code")

	// ErrNoChannel is returned when a Subscriber is constructed without a
	// channel name.
	ErrNoChannel = errors.New("events.no_channel")
)
