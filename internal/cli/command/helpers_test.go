package command

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"
)

const initLine = `{"src":"c0","dest":"n1","body":{"type":"init","msg_id":1,"node_id":"n1","node_ids":["n1"]}}`

type outLine struct {
	Src  string         `json:"src"`
	Dest string         `json:"dest"`
	Body map[string]any `json:"body"`
}

// runApp runs the CLI with the given stdin and returns stdout.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var stdout bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &stdout
	app.ErrWriter = io.Discard

	err := app.Run(append([]string{"meshnode"}, args...))
	return stdout.String(), err
}

func parseLines(t *testing.T, out string) []outLine {
	t.Helper()
	var msgs []outLine
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if l == "" {
			continue
		}
		var m outLine
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("bad output line %q: %v", l, err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

func input(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}
