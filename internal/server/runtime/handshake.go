package runtime

import (
	"errors"
	"io"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/core/message"
)

var handshakeRegistry = func() *message.Registry {
	r := message.NewRegistry()
	message.Register[message.Init](r)
	return r
}()

// Handshake reads exactly one line, which must be an init request, and
// answers it with init_ok (msg_id 0, in_reply_to the init's msg_id).
// It returns the init payload and the next message id to use, which is 1.
//
// Any other first line, or none at all, yields domain.ErrHandshake. So does a
// node id that collides with a reserved body key.
func Handshake(dec *message.Decoder, enc *message.Encoder) (message.Init, int, error) {
	msg, err := dec.Decode(handshakeRegistry)
	if errors.Is(err, io.EOF) {
		return message.Init{}, 0, domain.ErrHandshake.WithDetails("input closed before init")
	}
	if err != nil {
		return message.Init{}, 0, domain.ErrHandshake.WithCause(err)
	}

	init, ok := msg.Body.Payload.(message.Init)
	if !ok {
		return message.Init{}, 0, domain.ErrHandshake.WithDetailsf("first message is %s, want init", msg.Type())
	}
	if init.NodeID == "" {
		return message.Init{}, 0, domain.ErrHandshake.WithDetails("init has no node_id")
	}
	for _, id := range append([]string{init.NodeID}, init.NodeIDs...) {
		if message.IsHeaderKey(id) {
			return message.Init{}, 0, domain.ErrHandshake.WithDetailsf("node id %q is a reserved body key", id)
		}
	}

	if err := enc.Encode(msg.Reply(0, message.InitOK{})); err != nil {
		return message.Init{}, 0, domain.ErrHandshake.WithCause(err)
	}
	return init, 1, nil
}
