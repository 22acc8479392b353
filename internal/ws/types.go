package ws

import "encoding/json"

const (
	// client - server
	MsgSend = "send"

	// server - client
	MsgReady   = "ready"
	MsgMessage = "message"
	MsgError   = "error"
)

// Envelope is every frame on the group chat socket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SendPayload struct {
	Content string `json:"content"`
}

type ErrorPayload struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

func encode(typ string, payload any) ([]byte, error) {
	env := Envelope{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}
