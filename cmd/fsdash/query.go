package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/field-service/internal/app"
	"github.com/nhle/field-service/internal/jira"
	"github.com/nhle/field-service/internal/jql"
	"github.com/nhle/field-service/internal/ticket"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Check the credentials against Jira",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := app.Connect(cfg, logger)
		if err != nil {
			return err
		}
		me, err := client.WhoAmI(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, me)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> via %s mode (%s)\n",
			me.DisplayName, me.EmailAddress, client.Mode().Name(), client.BaseURL())
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List open tickets grouped by store",
	Long: `List the open tickets of the monitored statuses grouped by store.

Examples:
  fsdash search                       # every monitored status
  fsdash search --status Agendado     # one status
  fsdash search --store L042 --message
  fsdash search --jql 'project = FSA AND status = "Aguardando Spare"'`,
	Args: cobra.NoArgs,
	RunE: runSearch,
}

var countCmd = &cobra.Command{
	Use:   "count [JQL]",
	Short: "Approximate number of issues matching a query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := app.Connect(cfg, logger)
		if err != nil {
			return err
		}
		q := jql.New(cfg.Jira.Project).InStatuses(cfg.Statuses.StatusIDs()...)
		if len(args) == 1 {
			q = args[0]
		}
		n, err := client.ApproximateCount(cmd.Context(), q)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, map[string]any{"jql": q, "count": n})
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate JQL",
	Short: "Check a query with the Jira parser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := app.Connect(cfg, logger)
		if err != nil {
			return err
		}
		res, err := client.ParseJQL(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd, res)
		}
		if res.Valid() {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		}
		for _, q := range res.Queries {
			for _, e := range q.Errors {
				fmt.Fprintln(cmd.OutOrStdout(), e)
			}
		}
		return errors.New("invalid query")
	},
}

func init() {
	searchCmd.Flags().String("jql", "", "Run this query instead of the monitored statuses")
	searchCmd.Flags().String("status", "", "Only this status")
	searchCmd.Flags().String("store", "", "Only this store")
	searchCmd.Flags().Bool("message", false, "Print the dispatch message of each store")

	rootCmd.AddCommand(whoamiCmd, searchCmd, countCmd, validateCmd)
}

func runSearch(cmd *cobra.Command, _ []string) error {
	query, _ := cmd.Flags().GetString("jql")
	status, _ := cmd.Flags().GetString("status")
	storeID, _ := cmd.Flags().GetString("store")
	withMessage, _ := cmd.Flags().GetBool("message")

	client, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}

	if query == "" {
		b := jql.New(cfg.Jira.Project)
		query = b.InStatuses(cfg.Statuses.StatusIDs()...)
		if status != "" {
			query = b.InStatus(status)
		}
	}

	tickets, err := fetchTickets(cmd, client, query)
	if err != nil {
		return err
	}

	grouped := ticket.Group(tickets)
	stores := grouped.Stores()
	if storeID != "" {
		stores = []string{storeID}
	}

	if jsonOutput {
		out := make(map[string][]ticket.Ticket, len(stores))
		for _, s := range stores {
			out[s] = grouped[s]
		}
		return printJSON(cmd, out)
	}

	w := cmd.OutOrStdout()
	for _, s := range stores {
		group := grouped[s]
		dups := ticket.FindDuplicates(group)
		line := fmt.Sprintf("%s (%d): %s", s, len(group), strings.Join(grouped.Keys(s), ", "))
		if len(dups) > 0 {
			line += fmt.Sprintf("  [duplicados: %s]", strings.Join(ticket.DuplicateKeys(group), ", "))
		}
		fmt.Fprintln(w, line)
		if withMessage && len(group) > 0 {
			fmt.Fprintf(w, "\n%s\n\n", ticket.DispatchMessage(s, group))
		}
	}
	fmt.Fprintf(w, "%d chamado(s) em %d loja(s)\n", grouped.Len(), len(grouped))
	return nil
}

// fetchTickets runs query and projects the issues.
func fetchTickets(cmd *cobra.Command, client *jira.Client, query string) ([]ticket.Ticket, error) {
	issues, info := client.FetchAll(cmd.Context(), jira.Query{
		JQL:      query,
		Fields:   cfg.Fields.SearchFields(),
		PageSize: cfg.Jira.PageSize,
	})
	if info.Failed() {
		return nil, fmt.Errorf("search failed with status %d: %v", info.Status, info.Error)
	}
	return ticket.ProjectAll(issues, cfg.Fields), nil
}
