package network

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	data := []byte(`{"code":"ABCDE"}`)
	raw, err := Encode(MsgTypeStartGame, data)
	require.NoError(t, err)
	assert.Len(t, raw, 4+len(data))

	packet, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(MsgTypeStartGame), packet.MsgID)
	assert.Equal(t, uint16(len(data)), packet.Length)
	assert.Equal(t, data, packet.Data)
}

func TestDecode_Short(t *testing.T) {
	_, err := Decode([]byte{0, 1})
	assert.ErrorIs(t, err, io.ErrShortBuffer)

	// header claims more data than present
	_, err = Decode([]byte{0, 1, 0, 9, 'x'})
	assert.ErrorIs(t, err, io.ErrShortBuffer)
}

func TestEncode_TooLarge(t *testing.T) {
	_, err := Encode(MsgTypeRoomUpdate, bytes.Repeat([]byte("x"), 1<<16))
	assert.ErrorIs(t, err, ErrPacketTooLarge)
}

func TestMsgName(t *testing.T) {
	assert.Equal(t, "questionAnswered", MsgName(MsgTypeQuestionAnswered))
	assert.Equal(t, "unknown", MsgName(9999))
}
