package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/lalith-99/kosboard/internal/service"
	"github.com/spf13/cobra"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "List active tenants whose rent is due soon",
	RunE:  runReminders,
}

func init() {
	rootCmd.AddCommand(remindersCmd)
}

func runReminders(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	reminders, err := e.svc.Reminders(cmd.Context(), service.Operator)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(reminders) == 0 {
		fmt.Fprintln(out, "no rent due in the reminder window")
		return nil
	}
	return printReminders(cmd, reminders)
}

func printReminders(cmd *cobra.Command, reminders []service.Reminder) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ROOM\tTENANT\tPHONE\tDUE\tSTATUS")
	for _, r := range reminders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.RoomNumber, r.TenantName, r.TenantPhone, r.DueDate.Format("2006-01-02"), r.StatusText)
	}
	return w.Flush()
}
