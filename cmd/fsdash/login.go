package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/field-service/internal/app"
	"github.com/nhle/field-service/internal/credential"
	"github.com/nhle/field-service/internal/model"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the Jira credentials",
	Long: `Ask for the Jira connection details, check them with a whoami call,
save them to the config file and keep the API token in the OS keyring.
With --mail the IMAP password of the drafts mailbox is stored as well.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored secrets from the OS keyring",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for _, key := range credential.Keys {
			removed, err := credential.Delete(key)
			if err != nil {
				return err
			}
			if removed {
				fmt.Fprintf(out, "removed %s\n", key)
			}
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().Bool("mail", false, "Also store the IMAP password")
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

// loginBindings holds form values on the heap for huh's Value() pointers.
type loginBindings struct {
	mode     string
	siteURL  string
	cloudID  string
	email    string
	token    string
	password string
}

func runLogin(cmd *cobra.Command, _ []string) error {
	withMail, _ := cmd.Flags().GetBool("mail")

	lb := &loginBindings{
		mode:    cfg.Jira.Mode,
		siteURL: cfg.Jira.SiteURL,
		cloudID: cfg.Jira.CloudID,
		email:   cfg.Jira.Email,
	}
	if lb.mode == "" {
		lb.mode = "routed"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Connection").
				Options(
					huh.NewOption("API gateway (cloud id)", "routed"),
					huh.NewOption("Site URL", "direct"),
				).
				Value(&lb.mode),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Cloud ID").
				Value(&lb.cloudID).
				Validate(validateRequired("Cloud ID")),
		).WithHideFunc(func() bool { return lb.mode != "routed" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Site URL").
				Placeholder("https://acme.atlassian.net").
				Value(&lb.siteURL).
				Validate(validateURL),
		).WithHideFunc(func() bool { return lb.mode != "direct" }),
		huh.NewGroup(
			huh.NewInput().
				Title("E-mail").
				Value(&lb.email).
				Validate(validateRequired("E-mail")),
			huh.NewInput().
				Title("API token").
				EchoMode(huh.EchoModePassword).
				Value(&lb.token).
				Validate(validateRequired("API token")),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("IMAP password").
				Description(fmt.Sprintf("%s at %s", cfg.Mail.Username, cfg.Mail.Host)).
				EchoMode(huh.EchoModePassword).
				Value(&lb.password),
		).WithHideFunc(func() bool { return !withMail }),
	)
	if err := form.RunWithContext(cmd.Context()); err != nil {
		return err
	}

	cfg.Jira.Mode = lb.mode
	cfg.Jira.SiteURL = strings.TrimSpace(lb.siteURL)
	cfg.Jira.CloudID = strings.TrimSpace(lb.cloudID)
	cfg.Jira.Email = strings.TrimSpace(lb.email)

	if err := credential.Set(credential.KeyAPIToken, strings.TrimSpace(lb.token)); err != nil {
		return err
	}

	client, err := app.Connect(cfg, logger)
	if err != nil {
		return err
	}
	me, err := client.WhoAmI(cmd.Context())
	if err != nil {
		return fmt.Errorf("checking credentials: %w", err)
	}

	if err := model.SaveConfig(configPath, cfg); err != nil {
		return err
	}
	if withMail && lb.password != "" {
		if err := credential.Set(credential.KeyIMAPPassword, lb.password); err != nil {
			return err
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s <%s>\n", me.DisplayName, me.EmailAddress)
	return nil
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter a full URL such as https://acme.atlassian.net")
	}
	return nil
}
