package message

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yndnr/meshnode/internal/core/domain"
)

// DefaultMaxLineBytes bounds a single inbound line.
const DefaultMaxLineBytes = 1 << 20

type decodeFunc func(raw json.RawMessage) (Payload, error)

// Registry is the closed set of payload types a workload accepts.
type Registry struct {
	decoders map[string]decodeFunc
}

// NewRegistry returns a registry that accepts error bodies and nothing else.
func NewRegistry() *Registry {
	r := &Registry{decoders: make(map[string]decodeFunc)}
	Register[Error](r)
	return r
}

// Register adds payload type T to r under T's zero-value Type().
// Registering the same type name twice replaces the earlier entry.
func Register[T Payload](r *Registry) {
	var zero T
	r.decoders[zero.Type()] = func(raw json.RawMessage) (Payload, error) {
		var p T
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		return p, nil
	}
}

const ackSuffix = "_ok"

func ackDecoder(typ string) decodeFunc {
	return func(json.RawMessage) (Payload, error) {
		return Ack{Kind: typ}, nil
	}
}

// Knows reports whether typ is registered.
func (r *Registry) Knows(typ string) bool {
	_, ok := r.decoders[typ]
	return ok
}

type rawEnvelope struct {
	Src  string          `json:"src"`
	Dest string          `json:"dest"`
	Body json.RawMessage `json:"body"`
}

// Unmarshal decodes one envelope.
func (r *Registry) Unmarshal(data []byte) (Message, error) {
	var env rawEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Message{}, domain.ErrMalformedMessage.WithCause(err)
	}
	if len(env.Body) == 0 || bytes.Equal(env.Body, []byte("null")) {
		return Message{}, domain.ErrMalformedMessage.WithDetails("missing body")
	}

	var h header
	if err := json.Unmarshal(env.Body, &h); err != nil {
		return Message{}, domain.ErrMalformedMessage.WithCause(err)
	}
	if h.Type == "" {
		return Message{}, domain.ErrMalformedMessage.WithDetails("missing body type")
	}

	decode, ok := r.decoders[h.Type]
	if !ok && strings.HasSuffix(h.Type, ackSuffix) {
		decode = ackDecoder(h.Type)
	} else if !ok {
		return Message{}, domain.ErrUnknownMessageType.WithDetails(h.Type)
	}
	p, err := decode(env.Body)
	if err != nil {
		return Message{}, domain.ErrMalformedMessage.WithDetailsf("%s body", h.Type).WithCause(err)
	}

	return Message{
		Src:  env.Src,
		Dest: env.Dest,
		Body: Body{ID: h.MsgID, InReplyTo: h.InReplyTo, Payload: p},
	}, nil
}

// Decoder reads envelopes from a line-delimited stream.
type Decoder struct {
	sc *bufio.Scanner
}

// NewDecoder returns a decoder over r. maxLine <= 0 selects DefaultMaxLineBytes.
func NewDecoder(r io.Reader, maxLine int) *Decoder {
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, min(maxLine, 64*1024)), maxLine)
	return &Decoder{sc: sc}
}

// Decode reads the next non-blank line and decodes it with reg.
// It returns io.EOF once the stream is exhausted.
func (d *Decoder) Decode(reg *Registry) (Message, error) {
	for d.sc.Scan() {
		line := bytes.TrimSpace(d.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		return reg.Unmarshal(line)
	}
	if err := d.sc.Err(); err != nil {
		return Message{}, domain.ErrMalformedMessage.WithCause(err)
	}
	return Message{}, io.EOF
}

// Encoder writes envelopes, one JSON object per line.
type Encoder struct {
	w io.Writer
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode serializes m and writes it followed by a newline.
func (e *Encoder) Encode(m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return domain.ErrEncode.WithDetailsf("%s to %s", m.Type(), m.Dest).WithCause(err)
	}
	data = append(data, '\n')
	if _, err := e.w.Write(data); err != nil {
		return domain.ErrEncode.WithDetails("write").WithCause(err)
	}
	return nil
}

// String renders m the way it appears on the wire, for logs and tests.
func (m Message) String() string {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Sprintf("<unencodable %s message: %v>", m.Type(), err)
	}
	return string(data)
}
