package streaming

import (
	"encoding/json"
	"fmt"
)

// Message type constants for the widget WebSocket protocol.
const (
	// server to client
	TypeState = "state"
	TypeAck   = "ack"
	TypeError = "error"

	// client to server
	TypeSelectCategory = "select_category"
	TypeClosePopup     = "close_popup"
	TypeClick          = "click"
	TypeSetZoom        = "set_zoom"
)

// Envelope wraps all messages sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// ErrorMessage reports a client command that could not be applied.
type ErrorMessage struct {
	Type  string `json:"type"` // always "error"
	For   string `json:"for"`
	Error string `json:"error"`
}

// SelectCategoryPayload switches the rendered category.
type SelectCategoryPayload struct {
	Category string `json:"category"`
}

// ClickPayload clicks a drawn object by ID.
type ClickPayload struct {
	ID string `json:"id"`
}

// SetZoomPayload changes the map zoom.
type SetZoomPayload struct {
	Zoom int `json:"zoom"`
}

// Marshal builds an envelope of type t around payload.
func Marshal(t string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return json.Marshal(Envelope{Type: t, Payload: raw})
}

// Decode unmarshals the envelope payload into v. An empty payload leaves v
// untouched.
func (e Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", e.Type, err)
	}
	return nil
}
