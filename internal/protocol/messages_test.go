package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRequestPopulatesTypedFields(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"type":"login","username":"alice_01","password":"secret1"}`))
	require.NoError(t, err)

	assert.Equal(t, TypeLogin, req.Type)
	assert.Equal(t, "alice_01", req.Username)
	assert.Equal(t, "secret1", req.Password)
}

func TestDecodeRequestKeepsRawFrame(t *testing.T) {
	frame := []byte(`{"type":"share_location","location":"forest","extra":{"a":1}}`)
	req, err := DecodeRequest(frame)
	require.NoError(t, err)

	// The raw frame is retained byte for byte for rebroadcast
	assert.Equal(t, string(frame), string(req.Raw))
}

func TestDecodeRequestIgnoresUnknownFields(t *testing.T) {
	req, err := DecodeRequest([]byte(`{"type":"ping","whatever":true}`))
	require.NoError(t, err)
	assert.Equal(t, TypePing, req.Type)
}

func TestDecodeRequestRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeRequest([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestEncodeLoginResult(t *testing.T) {
	data, err := Encode(LoginResult{
		Type:      TypeLoginResult,
		Success:   true,
		SessionID: "sess_abc",
		Nickname:  "Alice",
	})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"login_result","success":true,"sessionId":"sess_abc","nickname":"Alice"}`, string(data))
}

func TestEncodeErrorEnvelope(t *testing.T) {
	data, err := Encode(ErrorMessage{Type: TypeError, Message: "not authenticated"})
	require.NoError(t, err)

	assert.JSONEq(t, `{"type":"error","message":"not authenticated"}`, string(data))
}
