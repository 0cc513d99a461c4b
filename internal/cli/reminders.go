package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/pkg/models"
)

func (c *CLI) newReminderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminder",
		Aliases: []string{"reminders"},
		Short:   "Manage care reminders",
	}

	cmd.AddCommand(c.newReminderListCmd())
	cmd.AddCommand(c.newReminderAddCmd())
	cmd.AddCommand(c.newReminderEditCmd())
	cmd.AddCommand(c.newReminderCompleteCmd())
	cmd.AddCommand(c.newReminderSnoozeCmd())
	cmd.AddCommand(c.newReminderDeleteCmd())

	return cmd
}

func (c *CLI) newReminderListCmd() *cobra.Command {
	var (
		filter string
		petID  int64
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active reminders",
		Long: `List reminders that are not completed.

Filters:
  all       every active reminder
  today     due today
  overdue   due before today
  upcoming  due after today`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := schedule.ParseFilter(filter)
			if err != nil {
				return errors.NewInvalidField(care.KindReminder, "filter", err.Error())
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			list, err := c.newGatewayClient().Reminders(ctx, f, petID)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(list)
			}

			p := c.palette()
			n := list.Counts
			c.printf("all %d  today %d  %s  upcoming %d\n\n",
				n.All, n.Today, p.overdue.Render(fmt.Sprintf("overdue %d", n.Overdue)), n.Upcoming)
			if len(list.Reminders) == 0 {
				c.printf("No %s reminders.\n", list.Filter)
				return nil
			}

			now := c.currentTime()
			w := c.newTable()
			fmt.Fprintln(w, "ID\tPET\tTYPE\tTITLE\tDUE\tWHEN\tSTATE")
			for _, r := range list.Reminders {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					r.ID, r.PetID, r.Type, r.Title, formatTime(r.DateTime),
					p.bucketLabel(r.DateTime, now), reminderState(r, now))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&filter, "filter", string(schedule.FilterAll), "all, today, overdue or upcoming")
	cmd.Flags().Int64Var(&petID, "pet", 0, "only this pet's reminders")
	return cmd
}

func addReminderFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("pet", 0, "pet ID")
	cmd.Flags().String("type", "", "kind: "+joinTypes(care.AllReminderTypes()))
	cmd.Flags().String("title", "", "short title")
	cmd.Flags().String("description", "", "details")
	cmd.Flags().String("at", "", "due date and time (YYYY-MM-DD HH:MM)")
	cmd.Flags().StringP("file", "f", "", "read the reminder from a YAML file ('-' for stdin)")
}

func (c *CLI) reminderPatch(cmd *cobra.Command) (models.ReminderPatch, error) {
	var patch models.ReminderPatch
	file, _ := cmd.Flags().GetString("file")
	if err := c.loadPatch(file, &patch); err != nil {
		return patch, err
	}
	at, err := c.changedTime(cmd, "at")
	if err != nil {
		return patch, err
	}
	overlay(&patch.PetID, changedInt64(cmd, "pet"))
	overlay(&patch.Type, changedString(cmd, "type"))
	overlay(&patch.Title, changedString(cmd, "title"))
	overlay(&patch.Description, changedString(cmd, "description"))
	overlay(&patch.DateTime, at)
	return patch, nil
}

func (c *CLI) newReminderAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a reminder",
		Example: `  petcare reminder add --pet 1 --type medication --title "Heartworm pill" --at "2024-03-20 08:00"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := c.reminderPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			rem, err := c.newGatewayClient().CreateReminder(ctx, patch)
			if err != nil {
				return err
			}
			return c.reminderDone("Added", rem)
		},
	}
	addReminderFlags(cmd)
	return cmd
}

func (c *CLI) newReminderEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindReminder, args[0])
			if err != nil {
				return err
			}
			patch, err := c.reminderPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			rem, err := c.newGatewayClient().UpdateReminder(ctx, id, patch)
			if err != nil {
				return err
			}
			return c.reminderDone("Updated", rem)
		},
	}
	addReminderFlags(cmd)
	return cmd
}

func (c *CLI) newReminderCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Mark a reminder done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindReminder, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			rem, err := c.newGatewayClient().CompleteReminder(ctx, id)
			if err != nil {
				return err
			}
			return c.reminderDone("Completed", rem)
		},
	}
}

func (c *CLI) newReminderSnoozeCmd() *cobra.Command {
	var d time.Duration
	cmd := &cobra.Command{
		Use:   "snooze ID",
		Short: "Hide a reminder for a while",
		Long:  `Hide a reminder from due lists. Without --for the gateway's default snooze is used.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindReminder, args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("for") && d <= 0 {
				return errors.NewInvalidField(care.KindReminder, "for", "snooze duration must be positive")
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			rem, err := c.newGatewayClient().SnoozeReminder(ctx, id, d)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(rem)
			}
			c.printf("✓ Snoozed reminder #%d %s", rem.ID, rem.Title)
			if rem.SnoozedUntil != nil {
				c.printf(" until %s", formatTime(*rem.SnoozedUntil))
			}
			c.println()
			return nil
		},
	}
	cmd.Flags().DurationVar(&d, "for", 0, "snooze length, e.g. 30m or 2h")
	return cmd
}

func (c *CLI) newReminderDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindReminder, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			if err := c.newGatewayClient().DeleteReminder(ctx, id); err != nil {
				return err
			}
			c.printf("✓ Deleted reminder #%d\n", id)
			return nil
		},
	}
}

func (c *CLI) reminderDone(verb string, rem *care.Reminder) error {
	if c.jsonOutput {
		return c.outputJSON(rem)
	}
	c.printf("✓ %s reminder #%d %s (%s)\n", verb, rem.ID, rem.Title, formatTime(rem.DateTime))
	return nil
}
