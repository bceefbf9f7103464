package streaming

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_WrapsPayload(t *testing.T) {
	data, err := Marshal(TypeClick, ClickPayload{ID: "pm-0-1"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"click","payload":{"id":"pm-0-1"}}`, string(data))
}

func TestMarshal_UnsupportedPayload(t *testing.T) {
	_, err := Marshal(TypeState, make(chan int))
	assert.Error(t, err)
}

func TestEnvelope_Decode(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"type":"set_zoom","payload":{"zoom":12}}`), &env))

	var p SetZoomPayload
	require.NoError(t, env.Decode(&p))
	assert.Equal(t, TypeSetZoom, env.Type)
	assert.Equal(t, 12, p.Zoom)
}

func TestEnvelope_DecodeEmptyPayload(t *testing.T) {
	env := Envelope{Type: TypeClosePopup}

	p := SelectCategoryPayload{Category: "dumps"}
	require.NoError(t, env.Decode(&p))
	assert.Equal(t, "dumps", p.Category)
}

func TestEnvelope_DecodeBadPayload(t *testing.T) {
	env := Envelope{Type: TypeSetZoom, Payload: json.RawMessage(`{"zoom":"x"}`)}

	var p SetZoomPayload
	err := env.Decode(&p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode set_zoom payload")
}
