package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/pkg/api"
	"github.com/petcare-labs/petcare/pkg/models"
)

func (c *CLI) newAppointmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "appointment",
		Aliases: []string{"appointments", "apt"},
		Short:   "Manage vet appointments",
	}

	cmd.AddCommand(c.newAppointmentListCmd())
	cmd.AddCommand(c.newAppointmentAddCmd())
	cmd.AddCommand(c.newAppointmentEditCmd())
	cmd.AddCommand(c.newAppointmentCompleteCmd())
	cmd.AddCommand(c.newAppointmentDeleteCmd())
	cmd.AddCommand(c.newAppointmentCalendarCmd())

	return cmd
}

func (c *CLI) newAppointmentListCmd() *cobra.Command {
	var petID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List appointments by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			apts, err := c.newGatewayClient().ListAppointments(ctx, petID)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(apts)
			}
			if len(apts) == 0 {
				c.println("No appointments.")
				return nil
			}

			p := c.palette()
			w := c.newTable()
			fmt.Fprintln(w, "ID\tPET\tTYPE\tWHEN\tVET\tREASON\tSTATUS")
			for _, a := range apts {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.PetID, a.Type, formatTime(a.DateTime), orDash(a.Veterinarian),
					a.Reason, p.completedLabel(a.Completed))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&petID, "pet", 0, "only this pet's appointments")
	return cmd
}

func addAppointmentFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("pet", 0, "pet ID")
	cmd.Flags().String("type", "", "kind: "+joinTypes(care.AllAppointmentTypes()))
	cmd.Flags().String("at", "", "date and time (YYYY-MM-DD HH:MM)")
	cmd.Flags().String("vet", "", "veterinarian")
	cmd.Flags().String("reason", "", "reason for the visit")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().StringP("file", "f", "", "read the appointment from a YAML file ('-' for stdin)")
}

func (c *CLI) appointmentPatch(cmd *cobra.Command) (models.AppointmentPatch, error) {
	var patch models.AppointmentPatch
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
	overlay(&patch.DateTime, at)
	overlay(&patch.Veterinarian, changedString(cmd, "vet"))
	overlay(&patch.Reason, changedString(cmd, "reason"))
	overlay(&patch.Notes, changedString(cmd, "notes"))
	return patch, nil
}

func (c *CLI) newAppointmentAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Schedule an appointment",
		Example: `  petcare appointment add --pet 2 --type dental --at "2024-04-02 14:30" --vet "Dr. Chen" --reason "Teeth cleaning"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := c.appointmentPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			apt, err := c.newGatewayClient().CreateAppointment(ctx, patch)
			if err != nil {
				return err
			}
			return c.appointmentDone("Scheduled", apt)
		},
	}
	addAppointmentFlags(cmd)
	return cmd
}

func (c *CLI) newAppointmentEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindAppointment, args[0])
			if err != nil {
				return err
			}
			patch, err := c.appointmentPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			apt, err := c.newGatewayClient().UpdateAppointment(ctx, id, patch)
			if err != nil {
				return err
			}
			return c.appointmentDone("Updated", apt)
		},
	}
	addAppointmentFlags(cmd)
	return cmd
}

func (c *CLI) newAppointmentCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete ID",
		Short: "Mark an appointment as attended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindAppointment, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			apt, err := c.newGatewayClient().CompleteAppointment(ctx, id)
			if err != nil {
				return err
			}
			return c.appointmentDone("Completed", apt)
		},
	}
}

func (c *CLI) newAppointmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Cancel an appointment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindAppointment, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			if err := c.newGatewayClient().DeleteAppointment(ctx, id); err != nil {
				return err
			}
			c.printf("✓ Deleted appointment #%d\n", id)
			return nil
		},
	}
}

func (c *CLI) newAppointmentCalendarCmd() *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show a month of appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if month != "" {
				if _, err := time.Parse(api.MonthLayout, month); err != nil {
					return errors.NewInvalidField(care.KindAppointment, "month", "month must look like 2024-03")
				}
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			days, err := c.newGatewayClient().Calendar(ctx, month)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(days)
			}

			p := c.palette()
			if len(days) > 0 {
				first, _ := time.Parse(time.DateOnly, days[0].Date)
				c.println(p.title.Render(first.Format("January 2006")))
			}
			busy := 0
			for _, d := range days {
				if len(d.Appointments) == 0 && !d.Today {
					continue
				}
				busy++
				label := d.Date
				if day, err := time.Parse(time.DateOnly, d.Date); err == nil {
					label = day.Format(dayLayout)
				}
				if d.Today {
					label = p.today.Render(label + " (today)")
				}
				c.println(label)
				for _, a := range d.Appointments {
					c.printf("  %s #%d pet %d %s: %s\n", a.DateTime.Format("15:04"), a.ID, a.PetID, a.Type, a.Reason)
				}
			}
			if busy == 0 {
				c.println("No appointments this month.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month to show (YYYY-MM, default current)")
	return cmd
}

func (c *CLI) appointmentDone(verb string, apt *care.Appointment) error {
	if c.jsonOutput {
		return c.outputJSON(apt)
	}
	c.printf("✓ %s appointment #%d %s on %s\n", verb, apt.ID, apt.Type, formatTime(apt.DateTime))
	return nil
}
