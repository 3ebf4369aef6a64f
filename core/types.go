package core

import (
	"encoding/json"

	"github.com/otakuverse/ovchain/common"
	"github.com/otakuverse/ovchain/sysaction"
)

const (
	// ReceiptStatusFailed is the status code of a rejected operation.
	ReceiptStatusFailed = uint64(0)
	// ReceiptStatusSuccessful is the status code of an applied operation.
	ReceiptStatusSuccessful = uint64(1)
)

// Message is one authorized operation: the JSON action envelope and the
// identity that signed it.
type Message struct {
	From common.Address  `json:"from"`
	Data json.RawMessage `json:"action"`
}

// NewMessage encodes payload as an action of the given kind.
func NewMessage(from common.Address, kind sysaction.ActionKind, payload interface{}) (Message, error) {
	data, err := sysaction.MakeSysAction(kind, payload)
	if err != nil {
		return Message{}, err
	}
	return Message{From: from, Data: data}, nil
}

// Receipt reports the outcome of one message.
type Receipt struct {
	Index    int                  `json:"index"`
	From     common.Address       `json:"from"`
	Action   sysaction.ActionKind `json:"action,omitempty"`
	Status   uint64               `json:"status"`
	Category string               `json:"category,omitempty"`
	Error    string               `json:"error,omitempty"`
	Writes   int                  `json:"writes"`
}

// Failed reports whether the message was rejected.
func (r *Receipt) Failed() bool { return r.Status == ReceiptStatusFailed }
