package emit

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapEmitter writes events as structured zap log entries. run_abort events are
// logged at warn level, everything else at debug.
type ZapEmitter struct {
	logger *zap.Logger
}

// NewZapEmitter creates a ZapEmitter. A nil logger discards everything.
func NewZapEmitter(logger *zap.Logger) *ZapEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapEmitter{logger: logger}
}

// Emit logs event.
func (z *ZapEmitter) Emit(event Event) {
	level := zapcore.DebugLevel
	if event.Msg == MsgRunAbort {
		level = zapcore.WarnLevel
	}
	ce := z.logger.Check(level, event.Msg)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, 3+len(event.Meta))
	fields = append(fields, zap.String("run_id", event.RunID), zap.Int("step", event.Step))
	if event.NodeID != "" {
		fields = append(fields, zap.String("node_id", event.NodeID))
	}
	keys := make([]string, 0, len(event.Meta))
	for k := range event.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fields = append(fields, zap.Any(k, event.Meta[k]))
	}
	ce.Write(fields...)
}
