package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

var (
	methodName        string
	methodDescription string
	methodMandatory   bool
)

var methodCmd = &cobra.Command{
	Use:     "method",
	Aliases: []string{"methods"},
	Short:   "Manage the ordered catalogue of communication methods",
}

var methodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List communication methods in sequence order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		methods := Engine.Methods.List()
		if outputJSON {
			return printJSON(out(cmd), methods)
		}
		w := out(cmd)
		fmt.Fprintf(w, "%-4s %-38s %-20s %-9s %s\n", "SEQ", "ID", "NAME", "REQUIRED", "DESCRIPTION")
		for _, m := range methods {
			required := "no"
			if m.Mandatory {
				required = "yes"
			}
			fmt.Fprintf(w, "%-4d %-38s %-20s %-9s %s\n", m.Sequence, m.ID, m.Name, required, m.Description)
		}
		return nil
	},
}

var methodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a communication method to the catalogue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		var added models.CommunicationMethod
		err := commit(func() error {
			var err error
			added, err = Engine.Methods.Add(models.CommunicationMethod{
				Name:        methodName,
				Description: methodDescription,
				Mandatory:   methodMandatory,
			})
			return err
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Added method %s at position %d (%s)\n", added.Name, added.Sequence, added.ID)
		return nil
	},
}

var methodUpdateCmd = &cobra.Command{
	Use:   "update <method-id>",
	Short: "Change a communication method's name, description or mandatory flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		var method models.CommunicationMethod
		err := commit(func() error {
			var ok bool
			method, ok = findMethod(args[0])
			if !ok {
				return fmt.Errorf("communication method %q not found", args[0])
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				method.Name = methodName
			}
			if flags.Changed("description") {
				method.Description = methodDescription
			}
			if flags.Changed("mandatory") {
				method.Mandatory = methodMandatory
			}
			return Engine.Methods.Update(method)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Updated method %s\n", method.Name)
		return nil
	},
}

var methodDeleteCmd = &cobra.Command{
	Use:   "delete <method-id>",
	Short: "Remove a communication method",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		err := commit(func() error {
			if !Engine.Methods.Delete(args[0]) {
				return errUnchanged
			}
			return nil
		})
		if errors.Is(err, errUnchanged) {
			fmt.Fprintf(out(cmd), "Method %s does not exist, nothing to delete.\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Deleted method %s\n", args[0])
		return nil
	},
}

var methodReorderCmd = &cobra.Command{
	Use:   "reorder <method-id>...",
	Short: "Put the named methods first, in the given order",
	Long: `Assign sequence positions 1..n to the given methods. Methods not named
keep their relative order after them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		if err := commit(func() error { return Engine.Methods.Reorder(args) }); err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Reordered %d method(s)\n", len(args))
		return nil
	},
}

func findMethod(id string) (models.CommunicationMethod, bool) {
	for _, m := range Engine.Methods.List() {
		if m.ID == id {
			return m, true
		}
	}
	return models.CommunicationMethod{}, false
}

func init() {
	for _, c := range []*cobra.Command{methodAddCmd, methodUpdateCmd} {
		c.Flags().StringVar(&methodName, "name", "", "Method name")
		c.Flags().StringVar(&methodDescription, "description", "", "What the method involves")
		c.Flags().BoolVar(&methodMandatory, "mandatory", false, "Whether the method must be part of every outreach")
	}
	_ = methodAddCmd.MarkFlagRequired("name")

	methodCmd.AddCommand(methodListCmd, methodAddCmd, methodUpdateCmd, methodDeleteCmd, methodReorderCmd)
	rootCmd.AddCommand(methodCmd)
}
