package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dshills/jokegraph/config"
	"github.com/dshills/jokegraph/graph/store"
)

var errNoHistory = errors.New("no persistent history configured (use --history-driver sqlite or mysql)")

func newHistoryCmd() *cobra.Command {
	var showState bool

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Inspect recorded sessions",
		Long: `Without arguments, lists the sessions recorded in the step journal.
With a run ID, prints every step of that session: the node that ran, the
router label it produced and where the engine went next.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.History.Driver != config.HistorySQLite && cfg.History.Driver != config.HistoryMySQL {
				return errNoHistory
			}
			st, err := openHistory(cfg.History)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 0 {
				return listRuns(cmd, st)
			}
			return printRun(cmd, st, args[0], showState)
		},
	}
	cmd.Flags().BoolVar(&showState, "state", false, "Also print the state after each step")
	return cmd
}

func listRuns(cmd *cobra.Command, st store.Store) error {
	ctx := cmd.Context()
	ids, err := st.Runs(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(ids) == 0 {
		_, err := fmt.Fprintln(out, "No sessions recorded.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tSTEPS\tLAST NODE\tFINISHED")
	for _, id := range ids {
		rec, err := st.LoadLatest(ctx, id)
		if err != nil {
			return fmt.Errorf("load run %s: %w", id, err)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", id, rec.Step, rec.NodeID, rec.At.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func printRun(cmd *cobra.Command, st store.Store, runID string, showState bool) error {
	records, err := st.LoadSteps(cmd.Context(), runID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("run %q not found", runID)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tNODE\tLABEL\tNEXT")
	for _, rec := range records {
		label := rec.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", rec.Step, rec.NodeID, label, rec.Next)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if showState {
		return printStates(out, records)
	}
	return nil
}

func printStates(w io.Writer, records []store.Record) error {
	for _, rec := range records {
		data, err := json.Marshal(rec.State)
		if err != nil {
			return fmt.Errorf("encode state of step %d: %w", rec.Step, err)
		}
		if _, err := fmt.Fprintf(w, "%d %s\n", rec.Step, data); err != nil {
			return err
		}
	}
	return nil
}
