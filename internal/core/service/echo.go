package service

import (
	"encoding/json"

	"github.com/yndnr/meshnode/internal/core/message"
)

// Echo workload payload types.
const (
	TypeEcho   = "echo"
	TypeEchoOK = "echo_ok"
)

// Echo asks the node to send Echo back unchanged.
type Echo struct {
	Echo json.RawMessage `json:"echo"`
}

func (Echo) Type() string { return TypeEcho }

// EchoOK answers Echo.
type EchoOK struct {
	Echo json.RawMessage `json:"echo"`
}

func (EchoOK) Type() string { return TypeEchoOK }

// EchoRegistry returns the echo workload's message set.
func EchoRegistry() *message.Registry {
	r := message.NewRegistry()
	message.Register[Echo](r)
	message.Register[EchoOK](r)
	return r
}

// EchoNode answers every echo with the same value.
type EchoNode struct {
	base
}

// NewEchoNode creates an echo node.
func NewEchoNode(init message.Init, ids *message.Sequence) *EchoNode {
	return &EchoNode{base: newBase(init, ids)}
}

// Handle implements the echo workload.
func (n *EchoNode) Handle(msg message.Message) (*message.Message, error) {
	switch p := msg.Body.Payload.(type) {
	case Echo:
		echo := p.Echo
		if len(echo) == 0 {
			echo = json.RawMessage("null")
		}
		return n.reply(msg, EchoOK{Echo: echo})
	default:
		return nil, nil
	}
}
