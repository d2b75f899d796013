package domain

import (
	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrEmptyMessage     = errors.New("empty message")
	ErrMalformedMessage = errors.New("malformed message")
)

const (
	ClientKeyHeader = "X-Client-Key"
	ClientKeyQuery  = "key"
)

type messageType byte

const (
	Hello = messageType(iota)
	StateUpdate
	Click
	Restart
	ChangeMode
	Error
)

type Message struct {
	Type    messageType
	Payload any `json:",omitempty"`
}

type HelloPayload struct {
	ClientKey string
}

type ClickPayload struct {
	Position int
}

type ChangeModePayload struct {
	Mode Mode
}

type ErrorPayload struct {
	Reason string
}

type MessageOption func(m *Message)

func WithState(state State) MessageOption {
	return func(m *Message) {
		m.Type = StateUpdate
		m.Payload = state
	}
}

func WithError(err error) MessageOption {
	return func(m *Message) {
		m.Type = Error
		m.Payload = ErrorPayload{Reason: err.Error()}
	}
}

func NewMessage(opts ...MessageOption) Message {
	msg := Message{}
	for _, opt := range opts {
		opt(&msg)
	}
	return msg
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Key() string
}
