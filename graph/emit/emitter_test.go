package emit

import "testing"

func TestMultiEmitter(t *testing.T) {
	a := NewBufferedEmitter()
	b := NewBufferedEmitter()
	m := NewMultiEmitter(a, nil, b, NewNullEmitter())

	if len(m) != 3 {
		t.Fatalf("expected nil emitters to be skipped, got %d", len(m))
	}

	m.Emit(Event{RunID: "run-1", Msg: MsgRunStart})

	if len(a.GetHistory("run-1")) != 1 || len(b.GetHistory("run-1")) != 1 {
		t.Error("expected event forwarded to every emitter")
	}
}

func TestEmitterImplementations(t *testing.T) {
	var _ Emitter = NewNullEmitter()
	var _ Emitter = NewBufferedEmitter()
	var _ Emitter = NewLogEmitter(nil, false)
	var _ Emitter = NewOTelEmitter(nil)
	var _ Emitter = NewZapEmitter(nil)
	var _ Emitter = MultiEmitter(nil)
}
