package network

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

// ErrPacketTooLarge is returned when a payload does not fit the 16-bit length field.
var ErrPacketTooLarge = errors.New("packet payload too large")

type Packet struct {
	MsgID  uint16
	Data   []byte
	Length uint16
}

// Encode 封包: 2字节消息ID + 2字节数据长度 + 数据
func Encode(msgID uint16, data []byte) ([]byte, error) {
	if len(data) > math.MaxUint16 {
		return nil, ErrPacketTooLarge
	}
	packet := make([]byte, 4+len(data))
	binary.BigEndian.PutUint16(packet[0:2], msgID)
	binary.BigEndian.PutUint16(packet[2:4], uint16(len(data)))
	copy(packet[4:], data)
	return packet, nil
}

// Decode parses one framed packet.
func Decode(data []byte) (*Packet, error) {
	if len(data) < 4 {
		return nil, io.ErrShortBuffer
	}

	msgID := binary.BigEndian.Uint16(data[0:2])
	length := binary.BigEndian.Uint16(data[2:4])

	if len(data) < 4+int(length) {
		return nil, io.ErrShortBuffer
	}

	return &Packet{
		MsgID:  msgID,
		Length: length,
		Data:   data[4 : 4+int(length)],
	}, nil
}
