package service

import (
	"slices"

	"github.com/yndnr/meshnode/internal/core/message"
)

// Payload types shared by the gossiping workloads.
const (
	TypeRead       = "read"
	TypeReadOK     = "read_ok"
	TypeTopology   = "topology"
	TypeTopologyOK = "topology_ok"
	TypeGossip     = "gossip"
)

// Read asks for the node's current state.
type Read struct{}

func (Read) Type() string { return TypeRead }

// Topology maps node ids to their neighbours.
type Topology struct {
	Topology map[string][]string `json:"topology"`
}

func (Topology) Type() string { return TypeTopology }

// TopologyOK acknowledges Topology.
type TopologyOK struct{}

func (TopologyOK) Type() string { return TypeTopologyOK }

// base holds what every node learns at handshake.
type base struct {
	id     string
	roster []string
	ids    *message.Sequence
}

func newBase(init message.Init, ids *message.Sequence) base {
	if ids == nil {
		ids = message.NewSequence(1)
	}
	return base{id: init.NodeID, roster: slices.Clone(init.NodeIDs), ids: ids}
}

// ID returns the node id.
func (b *base) ID() string {
	return b.id
}

// reply answers req, consuming one message id.
func (b *base) reply(req message.Message, p message.Payload) (*message.Message, error) {
	r := req.Reply(b.ids.Next(), p)
	return &r, nil
}

// neighbourSet is the set of peers a node gossips to.
// It never contains the node itself.
type neighbourSet struct {
	self  string
	peers []string
}

func newNeighbourSet(self string, roster []string) neighbourSet {
	n := neighbourSet{self: self}
	n.replace(roster)
	return n
}

// replace sets the peers to ids, dropping self and duplicates and keeping order.
func (n *neighbourSet) replace(ids []string) {
	peers := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == n.self || slices.Contains(peers, id) {
			continue
		}
		peers = append(peers, id)
	}
	n.peers = peers
}

// apply installs the entry for self from a topology message.
// It reports false, leaving the set unchanged, when there is no such entry.
func (n *neighbourSet) apply(topology map[string][]string) bool {
	ids, ok := topology[n.self]
	if !ok {
		return false
	}
	n.replace(ids)
	return true
}

func (n *neighbourSet) contains(id string) bool {
	return slices.Contains(n.peers, id)
}

// list returns a copy of the peers.
func (n *neighbourSet) list() []string {
	return slices.Clone(n.peers)
}
