package events

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// ServiceName identifies the platform service that emitted an event.
type ServiceName string

const (
	ServiceUnknown        ServiceName = ""
	ServiceSalesOrders    ServiceName = "sales_orders"
	ServicePurchaseOrders ServiceName = "purchase_orders"
	ServiceVendors        ServiceName = "vendors"
)

// WorkflowEvent is a platform-wide notification of a business-process state
// change. The transaction payload is itself CBOR-encoded; its shape depends
// on the emitting service and rule code.
type WorkflowEvent struct {
	RuleCode           string      `cbor:"rule_code"`
	ServiceName        ServiceName `cbor:"service_name"`
	TransactionPayload []byte      `cbor:"transaction_payload"`
}

// SalesOrder is the transaction payload of the generic order event (empty
// rule code).
type SalesOrder struct {
	ID     uint64 `cbor:"id"`
	Number string `cbor:"number"`
	Status string `cbor:"status"`
}

// Decode parses a raw pub/sub message into a WorkflowEvent.
func Decode(data []byte) (WorkflowEvent, error) {
	var ev WorkflowEvent
	if err := cbor.Unmarshal(data, &ev); err != nil {
		return WorkflowEvent{}, errors.Join(ErrDecodeEvent, err)
	}
	return ev, nil
}

// DecodePayload parses the event's transaction payload into v.
func (e WorkflowEvent) DecodePayload(v any) error {
	if err := cbor.Unmarshal(e.TransactionPayload, v); err != nil {
		return errors.Join(ErrDecodePayload, err)
	}
	return nil
}

// Encode serializes an event for publishing. Used by tests and by tooling
// that replays events into the channel.
func Encode(ev WorkflowEvent) ([]byte, error) {
	return cbor.Marshal(ev)
}

// EncodePayload serializes a transaction payload for embedding in an event.
func EncodePayload(v any) ([]byte, error) {
	return cbor.Marshal(v)
}
