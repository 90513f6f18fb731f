package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/field-service/internal/app"
	"github.com/nhle/field-service/internal/jql"
	"github.com/nhle/field-service/internal/model"
	"github.com/nhle/field-service/internal/notify"
	"github.com/nhle/field-service/internal/ticket"
)

var draftCmd = &cobra.Command{
	Use:   "draft STORE",
	Short: "Save a store's dispatch message as an e-mail draft",
	Long: `Compose the dispatch message of every ticket of STORE waiting for a
visit (AGENDAMENTO and Agendado) and append it to the drafts mailbox
configured under mail.*. Use --print to only show the message.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().Bool("print", false, "Print the e-mail instead of saving it")
	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	storeID := args[0]
	printOnly, _ := cmd.Flags().GetBool("print")

	client, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}

	query := jql.New(cfg.Jira.Project).InStatuses(model.StatusScheduling, model.StatusScheduled)
	tickets, err := fetchTickets(cmd, client, query)
	if err != nil {
		return err
	}
	group := ticket.Group(tickets)[storeID]
	if len(group) == 0 {
		return fmt.Errorf("store %s has no tickets waiting for a visit", storeID)
	}

	d := notify.DispatchDraft(cfg.Mail.From, cfg.Mail.To, storeID, group, time.Now())
	if printOnly {
		raw, err := notify.Compose(d)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(raw)
		return err
	}

	stager, err := app.OpenStager(cfg.Mail)
	if err != nil {
		return err
	}
	staged, err := stager.Stage(cmd.Context(), d)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "draft saved to %s: %s\n", cfg.Mail.Mailbox, staged.Subject)
	return nil
}
