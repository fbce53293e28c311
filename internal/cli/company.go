package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

var (
	companyName        string
	companyLocation    string
	companyLinkedIn    string
	companyEmails      string
	companyPhones      string
	companyComments    string
	companyPeriodicity int
)

var companyCmd = &cobra.Command{
	Use:     "company",
	Aliases: []string{"companies"},
	Short:   "Manage tracked companies",
}

var companyAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a new company",
	Long: `Register a company to track outreach for.

--name and --location are required. Emails and phone numbers are given as
comma-separated lists. --periodicity sets the number of days between
expected contacts and defaults to the configured value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		var added models.Company
		err := commit(func() error {
			var err error
			added, err = Engine.Registry.Add(models.Company{
				Name:                     companyName,
				Location:                 companyLocation,
				LinkedInProfile:          companyLinkedIn,
				Emails:                   core.SplitList(companyEmails),
				PhoneNumbers:             core.SplitList(companyPhones),
				Comments:                 companyComments,
				CommunicationPeriodicity: companyPeriodicity,
			})
			if err != nil {
				return fmt.Errorf("adding company: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if outputJSON {
			return printJSON(out(cmd), added)
		}
		fmt.Fprintf(out(cmd), "Added company %s (%s)\n", added.Name, added.ID)
		return nil
	},
}

var companyUpdateCmd = &cobra.Command{
	Use:   "update <company-id>",
	Short: "Update a company's details",
	Long: `Update a registered company. Only the flags given on the command line
change; everything else keeps its current value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		var company models.Company
		err := commit(func() error {
			var ok bool
			company, ok = Engine.Registry.Lookup(args[0])
			if !ok {
				return fmt.Errorf("company %q not found", args[0])
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				company.Name = companyName
			}
			if flags.Changed("location") {
				company.Location = companyLocation
			}
			if flags.Changed("linkedin") {
				company.LinkedInProfile = companyLinkedIn
			}
			if flags.Changed("emails") {
				company.Emails = core.SplitList(companyEmails)
			}
			if flags.Changed("phones") {
				company.PhoneNumbers = core.SplitList(companyPhones)
			}
			if flags.Changed("comments") {
				company.Comments = companyComments
			}
			if flags.Changed("periodicity") {
				company.CommunicationPeriodicity = companyPeriodicity
			}

			if err := Engine.Registry.Update(company); err != nil {
				return fmt.Errorf("updating company: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Updated company %s (%s)\n", company.Name, company.ID)
		return nil
	},
}

var companyDeleteCmd = &cobra.Command{
	Use:   "delete <company-id>",
	Short: "Remove a company from the registry",
	Long: `Remove a company from the registry. Its communication history and
scheduled communications are kept and show up as belonging to an unknown
company.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		err := commit(func() error {
			if !Engine.Registry.Delete(args[0]) {
				return errUnchanged
			}
			return nil
		})
		if errors.Is(err, errUnchanged) {
			fmt.Fprintf(out(cmd), "Company %s does not exist, nothing to delete.\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Deleted company %s\n", args[0])
		return nil
	},
}

var companyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered companies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		companies := Engine.Registry.List()
		if outputJSON {
			return printJSON(out(cmd), companies)
		}
		if len(companies) == 0 {
			fmt.Fprintln(out(cmd), "No companies registered.")
			return nil
		}

		w := out(cmd)
		fmt.Fprintf(w, "%-38s %-30s %-20s %s\n", "ID", "NAME", "LOCATION", "EVERY")
		fmt.Fprintf(w, "%-38s %-30s %-20s %s\n", "--", "----", "--------", "-----")
		for _, c := range companies {
			fmt.Fprintf(w, "%-38s %-30s %-20s %dd\n", c.ID, c.Name, c.Location, c.CommunicationPeriodicity)
		}
		return nil
	},
}

var companyShowCmd = &cobra.Command{
	Use:   "show <company-id>",
	Short: "Show a company with its recent and pending communications",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		company, ok := Engine.Registry.Lookup(args[0])
		if !ok {
			return fmt.Errorf("company %q not found", args[0])
		}
		history := Engine.Ledger.HistoryFor(company.ID)
		var pending []models.ScheduledCommunication
		for _, item := range Engine.Ledger.ScheduledAll() {
			if item.CompanyID == company.ID {
				pending = append(pending, item)
			}
		}

		if outputJSON {
			if pending == nil {
				pending = []models.ScheduledCommunication{}
			}
			return printJSON(out(cmd), struct {
				Company   models.Company                  `json:"company"`
				History   []models.LoggedCommunication    `json:"history"`
				Scheduled []models.ScheduledCommunication `json:"scheduled"`
			}{company, history, pending})
		}

		w := out(cmd)
		fmt.Fprintf(w, "%s (%s)\n", company.Name, company.ID)
		fmt.Fprintf(w, "  %-12s %s\n", "Location:", company.Location)
		fmt.Fprintf(w, "  %-12s %s\n", "LinkedIn:", orDash(company.LinkedInProfile))
		fmt.Fprintf(w, "  %-12s %s\n", "Emails:", orDash(strings.Join(company.Emails, ", ")))
		fmt.Fprintf(w, "  %-12s %s\n", "Phones:", orDash(strings.Join(company.PhoneNumbers, ", ")))
		fmt.Fprintf(w, "  %-12s every %d days\n", "Contact:", company.CommunicationPeriodicity)
		if company.Comments != "" {
			fmt.Fprintf(w, "  %-12s %s\n", "Comments:", company.Comments)
		}

		now := Engine.Now()
		fmt.Fprintf(w, "\nScheduled (%d):\n", len(pending))
		for _, item := range pending {
			status := core.Classify(item.ScheduledDate, now, Engine.Location)
			fmt.Fprintf(w, "  %-16s %-16s %-10s %s\n", localTime(item.ScheduledDate), item.Type, status, item.Notes)
		}
		fmt.Fprintf(w, "\nHistory (%d):\n", len(history))
		for _, entry := range history {
			fmt.Fprintf(w, "  %-16s %-16s %s\n", localTime(entry.Timestamp), entry.Type, orDash(entry.Outcome))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{companyAddCmd, companyUpdateCmd} {
		c.Flags().StringVar(&companyName, "name", "", "Company name")
		c.Flags().StringVar(&companyLocation, "location", "", "Company location")
		c.Flags().StringVar(&companyLinkedIn, "linkedin", "", "LinkedIn profile URL")
		c.Flags().StringVar(&companyEmails, "emails", "", "Comma-separated email addresses")
		c.Flags().StringVar(&companyPhones, "phones", "", "Comma-separated phone numbers")
		c.Flags().StringVar(&companyComments, "comments", "", "Free-form comments")
		c.Flags().IntVar(&companyPeriodicity, "periodicity", 0, "Days between expected contacts")
	}
	_ = companyAddCmd.MarkFlagRequired("name")
	_ = companyAddCmd.MarkFlagRequired("location")

	companyCmd.AddCommand(companyAddCmd, companyUpdateCmd, companyDeleteCmd, companyListCmd, companyShowCmd)
	rootCmd.AddCommand(companyCmd)
}
