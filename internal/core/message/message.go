package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Payload is one variant of a workload's message set.
// Type returns the value of the body "type" key.
type Payload interface {
	Type() string
}

// Body is the body of an envelope: correlation header plus payload.
type Body struct {
	ID        *int
	InReplyTo *int
	Payload   Payload
}

// Message is one envelope.
type Message struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body Body   `json:"body"`
}

// Type returns the payload type, or "" for an empty body.
func (m Message) Type() string {
	if m.Body.Payload == nil {
		return ""
	}
	return m.Body.Payload.Type()
}

// Reply builds the response to m: source and destination swapped,
// msg_id set to id and in_reply_to set to m's msg_id.
func (m Message) Reply(id int, p Payload) Message {
	return Message{
		Src:  m.Dest,
		Dest: m.Src,
		Body: Body{
			ID:        IntPtr(id),
			InReplyTo: copyInt(m.Body.ID),
			Payload:   p,
		},
	}
}

// New builds a message with no correlation header, as used for gossip.
func New(src, dest string, p Payload) Message {
	return Message{Src: src, Dest: dest, Body: Body{Payload: p}}
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	return IntPtr(*p)
}

// header holds the reserved body keys.
type header struct {
	Type      string `json:"type"`
	MsgID     *int   `json:"msg_id"`
	InReplyTo *int   `json:"in_reply_to"`
}

// IsHeaderKey reports whether key is one of the body keys reserved for the
// envelope header. Payloads that flatten map keys into the body must not use them.
func IsHeaderKey(key string) bool {
	switch key {
	case "type", "msg_id", "in_reply_to":
		return true
	}
	return false
}

var errNoPayload = errors.New("body has no payload")

// MarshalJSON flattens the payload fields into the body object.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Payload == nil {
		return nil, errNoPayload
	}

	raw, err := json.Marshal(b.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", b.Payload.Type(), err)
	}

	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%s payload is not a JSON object: %w", b.Payload.Type(), err)
	}

	typ, err := json.Marshal(b.Payload.Type())
	if err != nil {
		return nil, err
	}
	fields["type"] = typ
	if b.ID != nil {
		fields["msg_id"] = json.RawMessage(fmt.Sprint(*b.ID))
	}
	if b.InReplyTo != nil {
		fields["in_reply_to"] = json.RawMessage(fmt.Sprint(*b.InReplyTo))
	}

	return json.Marshal(fields)
}

// Sequence hands out a node's outbound message ids.
// It is owned by the consumer goroutine and is not safe for concurrent use.
type Sequence struct {
	next int
}

// NewSequence returns a sequence whose first id is start.
func NewSequence(start int) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next id and advances the sequence.
func (s *Sequence) Next() int {
	id := s.next
	s.next++
	return id
}

// Peek returns the id Next would return without consuming it.
func (s *Sequence) Peek() int {
	return s.next
}
