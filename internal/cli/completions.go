package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// completeCompanyIDs lists registered company IDs with their names as
// descriptions.
func completeCompanyIDs(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Engine == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	// --company takes a comma-separated list; complete the last element.
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix, toComplete = toComplete[:i+1], toComplete[i+1:]
	}

	var ids []string
	for _, c := range Engine.Registry.List() {
		if strings.HasPrefix(c.ID, toComplete) {
			ids = append(ids, prefix+c.ID+"\t"+c.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

// completeScheduleIDs lists pending communication IDs described by company
// and type.
func completeScheduleIDs(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Engine == nil || len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, item := range Engine.Ledger.ScheduledAll() {
		if strings.HasPrefix(item.ID, toComplete) {
			desc := Engine.Registry.Get(item.CompanyID).Name + ": " + string(item.Type) + " " + localTime(item.ScheduledDate)
			ids = append(ids, item.ID+"\t"+desc)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeMethodIDs lists communication method IDs with their names.
func completeMethodIDs(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if Engine == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var ids []string
	for _, m := range Engine.Methods.List() {
		if strings.HasPrefix(m.ID, toComplete) {
			ids = append(ids, m.ID+"\t"+m.Name)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// completeTypes returns the communication types.
func completeTypes(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	types := models.CommunicationTypes()
	out := make([]string, 0, len(types))
	for _, t := range types {
		out = append(out, string(t))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeExportFormats(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{
		"csv\tFrequency and effectiveness tables",
		"markdown\tAll sections as Markdown tables",
	}, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	for _, c := range []*cobra.Command{commLogCmd, commScheduleCmd, commScheduledCmd,
		analyticsFrequencyCmd, analyticsEffectivenessCmd, analyticsTrendCmd, analyticsExportCmd} {
		_ = c.RegisterFlagCompletionFunc("company", completeCompanyIDs)
	}
	for _, c := range []*cobra.Command{commLogCmd, commScheduleCmd, commEditCmd, commCompleteCmd} {
		_ = c.RegisterFlagCompletionFunc("type", completeTypes)
	}
	_ = analyticsExportCmd.RegisterFlagCompletionFunc("format", completeExportFormats)

	for _, c := range []*cobra.Command{companyUpdateCmd, companyDeleteCmd, companyShowCmd, commHistoryCmd} {
		c.ValidArgsFunction = completeCompanyIDs
	}
	for _, c := range []*cobra.Command{commEditCmd, commCompleteCmd, commDeleteCmd} {
		c.ValidArgsFunction = completeScheduleIDs
	}
	for _, c := range []*cobra.Command{methodUpdateCmd, methodDeleteCmd, methodReorderCmd} {
		c.ValidArgsFunction = completeMethodIDs
	}
}
