package service

import (
	"github.com/yndnr/meshnode/internal/core/message"
)

// Kafka workload payload types.
const (
	TypeSend                   = "send"
	TypeSendOK                 = "send_ok"
	TypePoll                   = "poll"
	TypePollOK                 = "poll_ok"
	TypeCommitOffsets          = "commit_offsets"
	TypeCommitOffsetsOK        = "commit_offsets_ok"
	TypeListCommittedOffsets   = "list_committed_offsets"
	TypeListCommittedOffsetsOK = "list_committed_offsets_ok"
)

// Send appends Msg to the log named Key.
type Send struct {
	Key string `json:"key"`
	Msg int    `json:"msg"`
}

func (Send) Type() string { return TypeSend }

// SendOK returns the offset assigned to a sent message.
type SendOK struct {
	Offset int `json:"offset"`
}

func (SendOK) Type() string { return TypeSendOK }

// Poll asks for the messages of each log starting at the given offset.
type Poll struct {
	Offsets map[string]int `json:"offsets"`
}

func (Poll) Type() string { return TypePoll }

// PollOK lists [offset, msg] pairs per log.
type PollOK struct {
	Msgs map[string][][2]int `json:"msgs"`
}

func (PollOK) Type() string { return TypePollOK }

// CommitOffsets records consumer progress per log.
type CommitOffsets struct {
	Offsets map[string]int `json:"offsets"`
}

func (CommitOffsets) Type() string { return TypeCommitOffsets }

// CommitOffsetsOK acknowledges CommitOffsets.
type CommitOffsetsOK struct{}

func (CommitOffsetsOK) Type() string { return TypeCommitOffsetsOK }

// ListCommittedOffsets asks for the committed offset of each key.
type ListCommittedOffsets struct {
	Keys []string `json:"keys"`
}

func (ListCommittedOffsets) Type() string { return TypeListCommittedOffsets }

// ListCommittedOffsetsOK maps keys to committed offsets.
type ListCommittedOffsetsOK struct {
	Offsets map[string]int `json:"offsets"`
}

func (ListCommittedOffsetsOK) Type() string { return TypeListCommittedOffsetsOK }

// KafkaRegistry returns the kafka workload's message set.
func KafkaRegistry() *message.Registry {
	r := message.NewRegistry()
	message.Register[Send](r)
	message.Register[SendOK](r)
	message.Register[Poll](r)
	message.Register[PollOK](r)
	message.Register[CommitOffsets](r)
	message.Register[CommitOffsetsOK](r)
	message.Register[ListCommittedOffsets](r)
	message.Register[ListCommittedOffsetsOK](r)
	return r
}

// KafkaNode keeps append-only logs in memory. Offsets start at 1 and grow
// by one per message within each log.
type KafkaNode struct {
	base
	logs      map[string][]int
	committed map[string]int
}

// NewKafkaNode creates a kafka node.
func NewKafkaNode(init message.Init, ids *message.Sequence) *KafkaNode {
	return &KafkaNode{
		base:      newBase(init, ids),
		logs:      make(map[string][]int),
		committed: make(map[string]int),
	}
}

// Handle implements the kafka workload.
func (n *KafkaNode) Handle(msg message.Message) (*message.Message, error) {
	switch p := msg.Body.Payload.(type) {
	case Send:
		n.logs[p.Key] = append(n.logs[p.Key], p.Msg)
		return n.reply(msg, SendOK{Offset: len(n.logs[p.Key])})
	case Poll:
		return n.reply(msg, PollOK{Msgs: n.poll(p.Offsets)})
	case CommitOffsets:
		for key, off := range p.Offsets {
			// Commits never move backwards.
			if off > n.committed[key] {
				n.committed[key] = off
			}
		}
		return n.reply(msg, CommitOffsetsOK{})
	case ListCommittedOffsets:
		offsets := make(map[string]int, len(p.Keys))
		for _, key := range p.Keys {
			if off, ok := n.committed[key]; ok {
				offsets[key] = off
			}
		}
		return n.reply(msg, ListCommittedOffsetsOK{Offsets: offsets})
	default:
		return nil, nil
	}
}

// poll returns, for every requested key, the entries at or after its offset.
// Unknown keys map to an empty list.
func (n *KafkaNode) poll(from map[string]int) map[string][][2]int {
	out := make(map[string][][2]int, len(from))
	for key, off := range from {
		entries := [][2]int{}
		for i, m := range n.logs[key] {
			if offset := i + 1; offset >= off {
				entries = append(entries, [2]int{offset, m})
			}
		}
		out[key] = entries
	}
	return out
}

// StateSize reports the number of stored messages across all logs.
func (n *KafkaNode) StateSize() int {
	total := 0
	for _, l := range n.logs {
		total += len(l)
	}
	return total
}
