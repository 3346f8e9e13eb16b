package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/meshnode/internal/core/domain"
	"github.com/yndnr/meshnode/internal/core/message"
)

// Unique-id workload payload types.
const (
	TypeGenerate   = "generate"
	TypeGenerateOK = "generate_ok"
)

// Generate asks for a new id.
type Generate struct{}

func (Generate) Type() string { return TypeGenerate }

// GenerateOK carries a generated id.
type GenerateOK struct {
	ID string `json:"id"`
}

func (GenerateOK) Type() string { return TypeGenerateOK }

// UniqueIDRegistry returns the unique-id workload's message set.
func UniqueIDRegistry() *message.Registry {
	r := message.NewRegistry()
	message.Register[Generate](r)
	message.Register[GenerateOK](r)
	return r
}

// UniqueIDNode generates ids of the form "<node id>-<ulid>".
//
// The node id prefix makes ids from different nodes disjoint without
// coordination; the monotonic ULID keeps ids from one node distinct and
// sortable by creation time.
type UniqueIDNode struct {
	base
	entropy io.Reader
	now     func() time.Time
}

// UniqueIDOption configures a UniqueIDNode.
type UniqueIDOption func(*UniqueIDNode)

// WithClock overrides the time source.
func WithClock(now func() time.Time) UniqueIDOption {
	return func(n *UniqueIDNode) { n.now = now }
}

// WithEntropy overrides the randomness source.
func WithEntropy(r io.Reader) UniqueIDOption {
	return func(n *UniqueIDNode) { n.entropy = r }
}

// NewUniqueIDNode creates a unique-id node.
func NewUniqueIDNode(init message.Init, ids *message.Sequence, opts ...UniqueIDOption) *UniqueIDNode {
	n := &UniqueIDNode{
		base: newBase(init, ids),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.entropy == nil {
		n.entropy = rand.Reader
	}
	n.entropy = ulid.Monotonic(n.entropy, 0)
	return n
}

// Handle implements the unique-id workload.
func (n *UniqueIDNode) Handle(msg message.Message) (*message.Message, error) {
	switch msg.Body.Payload.(type) {
	case Generate:
		id, err := ulid.New(ulid.Timestamp(n.now()), n.entropy)
		if err != nil {
			return nil, domain.ErrTemporarilyUnavailable.WithDetails("id generation").WithCause(err)
		}
		return n.reply(msg, GenerateOK{ID: fmt.Sprintf("%s-%s", n.id, id)})
	default:
		return nil, nil
	}
}
