package service

import (
	"testing"

	"github.com/yndnr/meshnode/internal/core/message"
)

func initFor(id string, roster ...string) message.Init {
	return message.Init{NodeID: id, NodeIDs: roster}
}

func request(src, dest string, id int, p message.Payload) message.Message {
	return message.Message{Src: src, Dest: dest, Body: message.Body{ID: message.IntPtr(id), Payload: p}}
}

type handler interface {
	Handle(msg message.Message) (*message.Message, error)
}

// mustReply delivers msg and fails the test unless exactly one reply comes back.
func mustReply(t *testing.T, n handler, msg message.Message) message.Message {
	t.Helper()
	reply, err := n.Handle(msg)
	if err != nil {
		t.Fatalf("Handle(%s) error = %v", msg.Type(), err)
	}
	if reply == nil {
		t.Fatalf("Handle(%s) returned no reply", msg.Type())
	}
	if reply.Src != msg.Dest || reply.Dest != msg.Src {
		t.Errorf("reply src/dest = %s/%s, want %s/%s", reply.Src, reply.Dest, msg.Dest, msg.Src)
	}
	if msg.Body.ID != nil && (reply.Body.InReplyTo == nil || *reply.Body.InReplyTo != *msg.Body.ID) {
		t.Errorf("reply in_reply_to = %v, want %d", reply.Body.InReplyTo, *msg.Body.ID)
	}
	return *reply
}

// mustNotReply delivers msg and fails the test if anything comes back.
func mustNotReply(t *testing.T, n handler, msg message.Message) {
	t.Helper()
	reply, err := n.Handle(msg)
	if err != nil {
		t.Fatalf("Handle(%s) error = %v", msg.Type(), err)
	}
	if reply != nil {
		t.Fatalf("Handle(%s) replied %s", msg.Type(), reply)
	}
}
