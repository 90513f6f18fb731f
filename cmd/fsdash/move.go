package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/field-service/internal/app"
	"github.com/nhle/field-service/internal/crossref"
	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/jql"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/workflow"
)

var transitionsCmd = &cobra.Command{
	Use:   "transitions KEY",
	Short: "List the transitions a ticket offers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := crossref.ParseKeys(cfg.Jira.Project, args...)
		if len(keys) == 0 {
			return fmt.Errorf("not a %s ticket: %s", cfg.Jira.Project, args[0])
		}
		client, err := app.Connect(cfg, logger)
		if err != nil {
			return err
		}
		ts, err := client.Transitions(cmd.Context(), keys[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, ts)
		}
		for _, t := range ts {
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s %-30s -> %s\n", t.ID, t.Name, t.To.Name)
		}
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move --to STATUS KEY...",
	Short: "Move tickets to a status",
	Long: `Move every ticket to STATUS, one at a time. Each ticket's own transition
toward STATUS is looked up; tickets without one are reported and skipped.

Keys may be given as FSA-123, bare numbers or comma separated lists.

With --date (and optionally --time and --tech) the visit is sent along with
every transition, the way scheduling needs it.

Examples:
  fsdash move --to Agendado --date 2026-10-21 --time 14:00 --tech "Ana-123-999" FSA-101 FSA-102
  fsdash move --to TEC-CAMPO 101,102,103`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMove,
}

var dispatchCmd = &cobra.Command{
	Use:   "dispatch --date YYYY-MM-DD --time HH:MM KEY...",
	Short: "Schedule tickets and send them to the field",
	Long: `Schedule the tickets still in AGENDAMENTO with the given visit date,
time and technicians, then move every ticket to TEC-CAMPO. Tickets already
scheduled are only moved.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDispatch,
}

func init() {
	moveCmd.Flags().String("to", "", "Target status name")
	moveCmd.Flags().String("from", "", "Current status of every ticket (read from the first ticket when empty)")
	moveCmd.Flags().String("date", "", "Visit date (YYYY-MM-DD); sends the schedule fields")
	moveCmd.Flags().String("time", "09:00", "Visit time, with --date")
	moveCmd.Flags().StringArray("tech", nil, "Technician (name-document-phone), with --date; repeatable")
	_ = moveCmd.MarkFlagRequired("to")

	dispatchCmd.Flags().String("date", time.Now().Format("2006-01-02"), "Visit date")
	dispatchCmd.Flags().String("time", "09:00", "Visit time")
	dispatchCmd.Flags().StringArray("tech", nil, "Technician (name-document-phone); repeatable")

	rootCmd.AddCommand(transitionsCmd, moveCmd, dispatchCmd)
}

func parseKeyArgs(args []string) ([]string, error) {
	keys := crossref.ParseKeys(cfg.Jira.Project, args...)
	if len(keys) == 0 {
		return nil, fmt.Errorf("no %s tickets in %s", cfg.Jira.Project, strings.Join(args, " "))
	}
	return keys, nil
}

func newSession(client *jira.Client) *workflow.Session {
	return workflow.NewSession(client,
		workflow.WithFieldSet(cfg.Fields),
		workflow.WithLocation(cfg.Schedule.Location()),
		workflow.WithLogger(logger),
	)
}

func runMove(cmd *cobra.Command, args []string) error {
	to, _ := cmd.Flags().GetString("to")
	from, _ := cmd.Flags().GetString("from")
	date, _ := cmd.Flags().GetString("date")
	clock, _ := cmd.Flags().GetString("time")
	techs, _ := cmd.Flags().GetStringArray("tech")

	keys, err := parseKeyArgs(args)
	if err != nil {
		return err
	}
	sched, err := scheduleFromFlags(date, clock, techs, cfg.Schedule.Location())
	if err != nil {
		return err
	}
	client, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}

	res := newSession(client).MoveBatch(cmd.Context(), workflow.BatchRequest{
		Keys:     keys,
		Select:   jira.ToStatus(to),
		From:     from,
		To:       to,
		Schedule: sched,
	})
	return reportOutcomes(cmd, res.Outcomes)
}

// scheduleFromFlags builds the visit sent with a move. It is nil without a
// date; technicians alone are rejected.
func scheduleFromFlags(date, clock string, techs []string, loc *time.Location) (*workflow.Schedule, error) {
	if strings.TrimSpace(date) == "" {
		if len(techs) > 0 {
			return nil, errors.New("--tech needs --date")
		}
		return nil, nil
	}
	at, err := workflow.ParseSchedule(date, clock, loc)
	if err != nil {
		return nil, err
	}
	return &workflow.Schedule{At: at, Technicians: strings.Join(techs, "\n")}, nil
}

func runDispatch(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")
	clock, _ := cmd.Flags().GetString("time")
	techs, _ := cmd.Flags().GetStringArray("tech")

	keys, err := parseKeyArgs(args)
	if err != nil {
		return err
	}
	at, err := workflow.ParseSchedule(date, clock, cfg.Schedule.Location())
	if err != nil {
		return err
	}
	client, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}

	tickets, err := fetchTickets(cmd, client, jql.Keys(keys...))
	if err != nil {
		return err
	}

	var pending, scheduled []string
	for _, t := range tickets {
		switch t.Status {
		case model.StatusScheduling:
			pending = append(pending, t.Key)
		case model.StatusScheduled:
			scheduled = append(scheduled, t.Key)
		default:
			fmt.Fprintf(cmd.ErrOrStderr(), "skipping %s: status %s\n", t.Key, t.Status)
		}
	}
	if len(pending)+len(scheduled) == 0 {
		return errors.New("no ticket is waiting to be dispatched")
	}

	res := newSession(client).DispatchToField(cmd.Context(), pending, scheduled, workflow.Schedule{
		At:          at,
		Technicians: strings.Join(techs, "\n"),
	})
	return reportOutcomes(cmd, append(append([]jira.Outcome(nil), res.Scheduled...), res.Moved...))
}

// reportOutcomes prints one line per outcome and fails when any did.
func reportOutcomes(cmd *cobra.Command, outcomes []jira.Outcome) error {
	if jsonOutput {
		type row struct {
			Key          string `json:"key"`
			TransitionID string `json:"transition_id,omitempty"`
			Success      bool   `json:"success"`
			StatusCode   int    `json:"status_code"`
			Error        string `json:"error,omitempty"`
		}
		rows := make([]row, len(outcomes))
		for i, o := range outcomes {
			rows[i] = row{Key: o.Key, TransitionID: o.TransitionID, Success: o.Success, StatusCode: o.StatusCode}
			if o.Err != nil {
				rows[i].Error = o.Err.Error()
			}
		}
		if err := printJSON(cmd, rows); err != nil {
			return err
		}
	}

	failed := 0
	for _, o := range outcomes {
		if !o.Success {
			failed++
		}
		if jsonOutput {
			continue
		}
		if o.Success {
			fmt.Fprintf(cmd.OutOrStdout(), "ok      %s (transition %s)\n", o.Key, o.TransitionID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "failed  %s: %v\n", o.Key, o.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transitions failed", failed, len(outcomes))
	}
	return nil
}
