package message

// Payload types shared by every workload.
const (
	TypeInit   = "init"
	TypeInitOK = "init_ok"
	TypeError  = "error"
)

// Init is the first message a node receives. It names the node and the roster.
type Init struct {
	NodeID  string   `json:"node_id"`
	NodeIDs []string `json:"node_ids"`
}

func (Init) Type() string { return TypeInit }

// InitOK acknowledges Init.
type InitOK struct{}

func (InitOK) Type() string { return TypeInitOK }

// Error rejects a request. Code is a protocol error code.
type Error struct {
	Code int    `json:"code"`
	Text string `json:"text,omitempty"`
}

func (Error) Type() string { return TypeError }

// Ack is an acknowledgement of a type the workload does not register,
// such as another workload's "*_ok". Handlers ignore it.
type Ack struct {
	Kind string `json:"-"`
}

func (a Ack) Type() string { return a.Kind }
