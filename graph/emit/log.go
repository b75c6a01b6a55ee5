package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// LogEmitter writes events to a writer, either as text or as JSON lines.
//
// Example text output:
//
//	[node_end] run=3f2a step=1 node=show_menu duration_ms=0
//
// Example JSON output:
//
//	{"runID":"3f2a","step":1,"nodeID":"show_menu","msg":"node_end","meta":{"duration_ms":0}}
type LogEmitter struct {
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a LogEmitter. A nil writer means os.Stderr.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stderr
	}
	return &LogEmitter{writer: writer, jsonMode: jsonMode}
}

// Emit writes one line for event.
func (l *LogEmitter) Emit(event Event) {
	if l.jsonMode {
		l.emitJSON(event)
		return
	}
	l.emitText(event)
}

func (l *LogEmitter) emitJSON(event Event) {
	data, err := json.Marshal(struct {
		RunID  string                 `json:"runID"`
		Step   int                    `json:"step"`
		NodeID string                 `json:"nodeID,omitempty"`
		Msg    string                 `json:"msg"`
		Meta   map[string]interface{} `json:"meta,omitempty"`
	}{event.RunID, event.Step, event.NodeID, event.Msg, textErrors(event.Meta)})
	if err != nil {
		fmt.Fprintf(l.writer, "{\"error\":%q}\n", "failed to marshal event: "+err.Error())
		return
	}
	fmt.Fprintf(l.writer, "%s\n", data)
}

func (l *LogEmitter) emitText(event Event) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] run=%s step=%d", event.Msg, event.RunID, event.Step)
	if event.NodeID != "" {
		fmt.Fprintf(&b, " node=%s", event.NodeID)
	}
	keys := make([]string, 0, len(event.Meta))
	for k := range event.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, event.Meta[k])
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(l.writer, b.String())
}

// textErrors replaces error values in meta with their text; most error types
// have no exported fields and would marshal as {}.
func textErrors(meta map[string]interface{}) map[string]interface{} {
	var out map[string]interface{}
	for k, v := range meta {
		err, ok := v.(error)
		if !ok {
			continue
		}
		if out == nil {
			out = make(map[string]interface{}, len(meta))
			for k2, v2 := range meta {
				out[k2] = v2
			}
		}
		out[k] = err.Error()
	}
	if out == nil {
		return meta
	}
	return out
}
