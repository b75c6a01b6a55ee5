package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// testStoreContract exercises the Store behavior every backend must share.
// States use JSON-native values so SQL round-trips compare equal.
func testStoreContract(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	at := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)

	t.Run("save and load steps in order", func(t *testing.T) {
		st := newStore(t)

		recs := []Record{
			{RunID: "run-1", Step: 2, NodeID: "fetch_joke", Next: "show_menu", State: map[string]any{"category": "neutral"}, At: at},
			{RunID: "run-1", Step: 1, NodeID: "show_menu", Label: "n", Next: "fetch_joke", State: map[string]any{"jokes_choice": "n"}, At: at},
		}
		for _, r := range recs {
			if err := st.SaveStep(ctx, r); err != nil {
				t.Fatalf("SaveStep failed: %v", err)
			}
		}

		got, err := st.LoadSteps(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadSteps failed: %v", err)
		}
		want := []Record{recs[1], recs[0]}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("LoadSteps mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("latest is highest step", func(t *testing.T) {
		st := newStore(t)
		for _, step := range []int{1, 3, 2} {
			rec := Record{RunID: "run-2", Step: step, NodeID: "n", Next: "END", State: map[string]any{}, At: at}
			if err := st.SaveStep(ctx, rec); err != nil {
				t.Fatalf("SaveStep failed: %v", err)
			}
		}

		latest, err := st.LoadLatest(ctx, "run-2")
		if err != nil {
			t.Fatalf("LoadLatest failed: %v", err)
		}
		if latest.Step != 3 {
			t.Errorf("expected latest step 3, got %d", latest.Step)
		}
	})

	t.Run("same step replaces record", func(t *testing.T) {
		st := newStore(t)
		first := Record{RunID: "run-3", Step: 1, NodeID: "a", Next: "b", State: map[string]any{"x": "1"}, At: at}
		second := Record{RunID: "run-3", Step: 1, NodeID: "a", Next: "END", State: map[string]any{"x": "2"}, At: at}
		if err := st.SaveStep(ctx, first); err != nil {
			t.Fatal(err)
		}
		if err := st.SaveStep(ctx, second); err != nil {
			t.Fatal(err)
		}

		got, err := st.LoadSteps(ctx, "run-3")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
		if got[0].Next != "END" || got[0].State["x"] != "2" {
			t.Errorf("expected replaced record, got %+v", got[0])
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		st := newStore(t)
		if _, err := st.LoadSteps(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadSteps: expected ErrNotFound, got %v", err)
		}
		if _, err := st.LoadLatest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadLatest: expected ErrNotFound, got %v", err)
		}
	})

	t.Run("lists runs", func(t *testing.T) {
		st := newStore(t)
		for _, id := range []string{"run-b", "run-a", "run-b"} {
			rec := Record{RunID: id, Step: 1, NodeID: "n", Next: "END", State: map[string]any{}, At: at}
			if err := st.SaveStep(ctx, rec); err != nil {
				t.Fatal(err)
			}
		}
		ids, err := st.Runs(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"run-a", "run-b"}, ids); diff != "" {
			t.Errorf("Runs mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("closed store rejects writes", func(t *testing.T) {
		st := newStore(t)
		if err := st.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		err := st.SaveStep(ctx, Record{RunID: "r", Step: 1, State: map[string]any{}})
		if !errors.Is(err, ErrClosed) {
			t.Errorf("expected ErrClosed, got %v", err)
		}
	})
}
