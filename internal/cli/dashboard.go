package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/service"
)

func (c *CLI) newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"today"},
		Short:   "Show today's household overview",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			d, err := c.newGatewayClient().Dashboard(ctx)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(d)
			}
			c.printDashboard(d)
			return nil
		},
	}
}

func (c *CLI) printDashboard(d *service.Dashboard) {
	p := c.palette()
	// Classify against the gateway's clock, not the local one.
	now := d.GeneratedAt

	c.println(p.title.Render("Pet Care Dashboard") + "  " + p.muted.Render(formatTime(now)))
	c.println("")

	overdue := fmt.Sprintf("%d overdue", d.OverdueReminders)
	if d.OverdueReminders > 0 {
		overdue = p.overdue.Render(overdue)
	}
	c.printf("Pets: %d   Reminders due: %d (%s)   Active feedings: %d\n",
		d.TotalPets, len(d.TodayReminders), overdue, d.ActiveFeedings)

	if d.NextFeeding != nil && d.NextFeeding.Schedule != nil {
		f := d.NextFeeding.Schedule
		c.printf("Next feeding: %s, pet %d, %s %s\n",
			formatTime(d.NextFeeding.At), f.PetID, orDash(f.FoodType), orDash(f.Amount))
	}

	c.println("")
	c.println(p.title.Render("Pets"))
	if len(d.Pets) == 0 {
		c.println("  no pets yet")
	}
	for _, pet := range d.Pets {
		c.printf("  #%d %s, %s, %s\n", pet.ID, pet.Name, pet.Type, pet.Age)
	}

	c.println("")
	c.println(p.title.Render("Needs attention"))
	if len(d.TodayReminders) == 0 {
		c.println("  all caught up")
	}
	for _, r := range d.TodayReminders {
		c.printf("  #%d %s  %s (%s)\n", r.ID, formatTime(r.DateTime), r.Title, p.bucketLabel(r.DateTime, now))
	}

	c.println("")
	c.println(p.title.Render("Upcoming appointments"))
	if len(d.UpcomingAppointments) == 0 {
		c.println("  none scheduled")
	}
	for _, a := range d.UpcomingAppointments {
		c.printf("  #%d %s  %s: %s (%s)\n", a.ID, formatTime(a.DateTime), a.Type, a.Reason, orDash(a.Veterinarian))
	}
}
