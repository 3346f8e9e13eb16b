package tests

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yndnr/meshnode/internal/core/message"
	"github.com/yndnr/meshnode/internal/core/service"
	"github.com/yndnr/meshnode/internal/server/runtime"
	"github.com/yndnr/meshnode/internal/telemetry/logger"
)

// mailbox is an unbounded line queue feeding one node's stdin, so that a
// slow node never stalls the router of another.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	lines  [][]byte
	closed bool
}

func newMailbox() *mailbox {
	m := &mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

func (m *mailbox) push(line []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.lines = append(m.lines, line)
	m.cond.Signal()
}

func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Signal()
}

func (m *mailbox) run(w io.WriteCloser) {
	defer w.Close()
	for {
		m.mu.Lock()
		for len(m.lines) == 0 && !m.closed {
			m.cond.Wait()
		}
		if len(m.lines) == 0 {
			m.mu.Unlock()
			return
		}
		line := m.lines[0]
		m.lines = m.lines[1:]
		m.mu.Unlock()

		if _, err := w.Write(append(line, '\n')); err != nil {
			return
		}
	}
}

type envelope struct {
	Src  string `json:"src"`
	Dest string `json:"dest"`
	Body struct {
		Type      string `json:"type"`
		InReplyTo *int   `json:"in_reply_to"`
	} `json:"body"`
}

// cluster runs one runtime per node id and routes their output.
type cluster struct {
	t     *testing.T
	ids   []string
	boxes map[string]*mailbox

	mu      sync.Mutex
	nextID  int
	waiters map[int]chan map[string]any

	cancel context.CancelFunc
	done   chan error
}

func startCluster(t *testing.T, w runtime.Workload, n int) *cluster {
	t.Helper()

	cfg := runtime.DefaultConfig()
	cfg.GossipInterval = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	c := &cluster{
		t:       t,
		boxes:   make(map[string]*mailbox),
		waiters: make(map[int]chan map[string]any),
		cancel:  cancel,
		done:    make(chan error, n),
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("n%d", i)
		c.ids = append(c.ids, id)
		c.boxes[id] = newMailbox()
	}

	for _, id := range c.ids {
		inR, inW := io.Pipe()
		outR, outW := io.Pipe()

		go c.boxes[id].run(inW)
		go c.route(outR)
		go func() {
			rt := runtime.New(w, cfg, runtime.WithLogger(logger.Discard()))
			err := rt.Run(ctx, inR, outW)
			_ = inR.Close()
			_ = outW.Close()
			c.done <- err
		}()
	}

	for _, id := range c.ids {
		reply := c.call(id, map[string]any{"type": "init", "node_id": id, "node_ids": c.ids})
		if reply["type"] != message.TypeInitOK {
			t.Fatalf("init %s: reply %v", id, reply)
		}
	}
	return c
}

// route forwards node-bound lines and resolves client-bound replies.
func (c *cluster) route(r io.Reader) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := append([]byte(nil), sc.Bytes()...)

		var env envelope
		if err := json.Unmarshal(line, &env); err != nil {
			c.t.Errorf("node wrote invalid JSON %q: %v", line, err)
			continue
		}

		if box, ok := c.boxes[env.Dest]; ok {
			box.push(line)
			continue
		}
		if env.Body.InReplyTo == nil {
			continue
		}

		var full struct {
			Body map[string]any `json:"body"`
		}
		_ = json.Unmarshal(line, &full)

		c.mu.Lock()
		ch := c.waiters[*env.Body.InReplyTo]
		delete(c.waiters, *env.Body.InReplyTo)
		c.mu.Unlock()
		if ch != nil {
			ch <- full.Body
		}
	}
}

// call sends body from client c1 to node and waits for the reply.
func (c *cluster) call(node string, body map[string]any) map[string]any {
	c.t.Helper()

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	ch := make(chan map[string]any, 1)
	c.waiters[id] = ch
	c.mu.Unlock()

	body["msg_id"] = id
	line, err := json.Marshal(map[string]any{"src": "c1", "dest": node, "body": body})
	if err != nil {
		c.t.Fatalf("marshal request: %v", err)
	}
	c.boxes[node].push(line)

	select {
	case reply := <-ch:
		return reply
	case <-time.After(5 * time.Second):
		c.t.Fatalf("no reply from %s to %v", node, body)
		return nil
	}
}

// stop closes every node's input and waits for all runtimes to finish.
func (c *cluster) stop() {
	c.t.Helper()
	defer c.cancel()

	for _, box := range c.boxes {
		box.close()
	}
	for range c.ids {
		select {
		case err := <-c.done:
			if err != nil {
				c.t.Errorf("runtime exited with error: %v", err)
			}
		case <-time.After(5 * time.Second):
			c.t.Fatal("runtime did not stop after input closed")
		}
	}
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, timeout time.Duration, cond func() (bool, string)) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		ok, state := cond()
		if ok {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %v: %s", timeout, state)
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func ints(v any) []int {
	raw, _ := v.([]any)
	out := make([]int, 0, len(raw))
	for _, x := range raw {
		if f, ok := x.(float64); ok {
			out = append(out, int(f))
		}
	}
	sort.Ints(out)
	return out
}

func broadcastWorkload(mode service.GossipMode) runtime.Workload {
	return runtime.Workload{
		Name:     "broadcast",
		Registry: service.BroadcastRegistry(),
		NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
			return service.NewBroadcastNode(init, ids, mode), nil
		},
	}
}

func TestCluster_BroadcastLineTopology(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	for _, mode := range []service.GossipMode{service.GossipDelta, service.GossipFull} {
		t.Run(string(mode), func(t *testing.T) {
			c := startCluster(t, broadcastWorkload(mode), 5)
			defer c.stop()

			// n1 - n2 - n3 - n4 - n5
			topology := map[string][]string{}
			for i, id := range c.ids {
				var nbrs []string
				if i > 0 {
					nbrs = append(nbrs, c.ids[i-1])
				}
				if i < len(c.ids)-1 {
					nbrs = append(nbrs, c.ids[i+1])
				}
				topology[id] = nbrs
			}
			for _, id := range c.ids {
				if r := c.call(id, map[string]any{"type": "topology", "topology": topology}); r["type"] != "topology_ok" {
					t.Fatalf("topology %s: %v", id, r)
				}
			}

			var want []int
			for v := 1; v <= 20; v++ {
				node := c.ids[v%len(c.ids)]
				if r := c.call(node, map[string]any{"type": "broadcast", "message": v}); r["type"] != "broadcast_ok" {
					t.Fatalf("broadcast %d: %v", v, r)
				}
				want = append(want, v)
			}

			eventually(t, 5*time.Second, func() (bool, string) {
				var state []string
				ok := true
				for _, id := range c.ids {
					got := ints(c.call(id, map[string]any{"type": "read"})["messages"])
					if fmt.Sprint(got) != fmt.Sprint(want) {
						ok = false
					}
					state = append(state, fmt.Sprintf("%s=%v", id, got))
				}
				return ok, strings.Join(state, " ")
			})
		})
	}
}

func TestCluster_CounterConverges(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	c := startCluster(t, runtime.Workload{
		Name:     "counter",
		Registry: service.CounterRegistry(),
		NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
			return service.NewCounterNode(init, ids), nil
		},
	}, 3)
	defer c.stop()

	total := 0
	for i, id := range c.ids {
		for d := 1; d <= 3; d++ {
			delta := d * (i + 1)
			if r := c.call(id, map[string]any{"type": "add", "delta": delta}); r["type"] != "add_ok" {
				t.Fatalf("add on %s: %v", id, r)
			}
			total += delta
		}
	}

	rejected := c.call(c.ids[0], map[string]any{"type": "add", "delta": -1})
	if rejected["type"] != "error" || rejected["code"] != float64(12) {
		t.Errorf("negative add reply = %v, want error code 12", rejected)
	}

	eventually(t, 5*time.Second, func() (bool, string) {
		var state []string
		ok := true
		for _, id := range c.ids {
			v := c.call(id, map[string]any{"type": "read"})["value"]
			if v != float64(total) {
				ok = false
			}
			state = append(state, fmt.Sprintf("%s=%v", id, v))
		}
		return ok, strings.Join(state, " ")
	})
}

func TestCluster_UniqueIDsAcrossNodes(t *testing.T) {
	c := startCluster(t, runtime.Workload{
		Name:     "unique-ids",
		Registry: service.UniqueIDRegistry(),
		NewNode: func(init message.Init, ids *message.Sequence) (runtime.Node, error) {
			return service.NewUniqueIDNode(init, ids), nil
		},
	}, 3)
	defer c.stop()

	seen := make(map[string]string)
	for i := 0; i < 30; i++ {
		node := c.ids[i%len(c.ids)]
		r := c.call(node, map[string]any{"type": "generate"})
		id, _ := r["id"].(string)
		if id == "" {
			t.Fatalf("generate on %s: %v", node, r)
		}
		if prev, dup := seen[id]; dup {
			t.Fatalf("id %s issued by both %s and %s", id, prev, node)
		}
		seen[id] = node
	}
}
