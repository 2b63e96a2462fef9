// pkg/network/protocol.go
package network

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/engine"
)

// MessageType names the payload carried by an envelope.
type MessageType string

// Client to server.
const (
	MsgInitGame MessageType = "initGame"
	MsgKeyDown  MessageType = "keydown"
	MsgKeyUp    MessageType = "keyup"
	MsgIntent   MessageType = "intent"
	MsgPing     MessageType = "ping"
)

// Server to client.
const (
	MsgWelcome MessageType = "welcome"
	MsgState   MessageType = "state"
	MsgPong    MessageType = "pong"
)

// Envelope is an inbound message. Inbound frames are always JSON text.
type Envelope struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// outbound is a server message before encoding.
type outbound struct {
	Type    MessageType `json:"type" msgpack:"type"`
	Payload any         `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// Welcome is sent once after the upgrade.
type Welcome struct {
	ID       string  `json:"id" msgpack:"id"`
	Width    float64 `json:"width" msgpack:"width"`
	Height   float64 `json:"height" msgpack:"height"`
	TickRate int     `json:"tickRate" msgpack:"tickRate"`
	Encoding string  `json:"encoding" msgpack:"encoding"`
}

// Frame is an encoded websocket message.
type Frame struct {
	Kind int
	Data []byte
}

// Codec encodes server messages as JSON text frames or msgpack binary frames.
type Codec struct {
	encoding string
}

// NewCodec returns the codec for a configured encoding name.
func NewCodec(encoding string) (Codec, error) {
	switch encoding {
	case config.EncodingJSON, config.EncodingMsgpack:
		return Codec{encoding: encoding}, nil
	}
	return Codec{}, fmt.Errorf("unsupported encoding %q", encoding)
}

// Encoding returns the codec's encoding name.
func (c Codec) Encoding() string { return c.encoding }

// Encode wraps payload in an envelope of the given type.
func (c Codec) Encode(msgType MessageType, payload any) (Frame, error) {
	msg := outbound{Type: msgType, Payload: payload}
	if c.encoding == config.EncodingMsgpack {
		data, err := msgpack.Marshal(&msg)
		if err != nil {
			return Frame{}, fmt.Errorf("failed to encode %s: %w", msgType, err)
		}
		return Frame{Kind: websocket.BinaryMessage, Data: data}, nil
	}
	data, err := json.Marshal(&msg)
	if err != nil {
		return Frame{}, fmt.Errorf("failed to encode %s: %w", msgType, err)
	}
	return Frame{Kind: websocket.TextMessage, Data: data}, nil
}

// decoded is a server message with its payload still encoded.
type decoded struct {
	Type    MessageType
	payload []byte
	binary  bool
}

// decodeFrame splits a server frame into its type and raw payload. The
// frame kind selects the format.
func decodeFrame(kind int, data []byte) (decoded, error) {
	switch kind {
	case websocket.BinaryMessage:
		var msg struct {
			Type    MessageType        `msgpack:"type"`
			Payload msgpack.RawMessage `msgpack:"payload"`
		}
		if err := msgpack.Unmarshal(data, &msg); err != nil {
			return decoded{}, fmt.Errorf("failed to decode msgpack frame: %w", err)
		}
		return decoded{Type: msg.Type, payload: msg.Payload, binary: true}, nil
	case websocket.TextMessage:
		var msg Envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			return decoded{}, fmt.Errorf("failed to decode JSON frame: %w", err)
		}
		return decoded{Type: msg.Type, payload: msg.Payload}, nil
	}
	return decoded{}, fmt.Errorf("unexpected frame kind %d", kind)
}

// into decodes the payload into v.
func (d decoded) into(v any) error {
	if d.binary {
		return msgpack.Unmarshal(d.payload, v)
	}
	return json.Unmarshal(d.payload, v)
}

// KeyDown applies a pressed key to the held intent: w thrusts, space or
// Shift fires, a and d turn.
func KeyDown(in engine.Intent, key string) engine.Intent {
	switch {
	case strings.EqualFold(key, "w"):
		in.Thrust = true
	case isFireKey(key):
		in.Fire = true
	case strings.EqualFold(key, "d"):
		in.Turn = -1
	case strings.EqualFold(key, "a"):
		in.Turn = 1
	}
	return in
}

// KeyUp applies a released key. Releasing a turn key only stops the turn
// when the other turn key is not the one being held.
func KeyUp(in engine.Intent, key string) engine.Intent {
	switch {
	case strings.EqualFold(key, "w"):
		in.Thrust = false
	case isFireKey(key):
		in.Fire = false
	case strings.EqualFold(key, "d") && in.Turn != 1,
		strings.EqualFold(key, "a") && in.Turn != -1:
		in.Turn = 0
	}
	return in
}

func isFireKey(key string) bool {
	return key == " " || key == "Shift"
}
