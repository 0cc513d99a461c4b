package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/pkg/models"
)

func (c *CLI) newFeedingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "feeding",
		Aliases: []string{"feedings"},
		Short:   "Manage daily feeding schedules",
	}

	cmd.AddCommand(c.newFeedingListCmd())
	cmd.AddCommand(c.newFeedingAddCmd())
	cmd.AddCommand(c.newFeedingEditCmd())
	cmd.AddCommand(c.newFeedingToggleCmd())
	cmd.AddCommand(c.newFeedingDeleteCmd())

	return cmd
}

func (c *CLI) newFeedingListCmd() *cobra.Command {
	var petID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feeding schedules by time of day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			feedings, err := c.newGatewayClient().ListFeedings(ctx, petID)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(feedings)
			}
			if len(feedings) == 0 {
				c.println("No feeding schedules.")
				return nil
			}

			p := c.palette()
			w := c.newTable()
			fmt.Fprintln(w, "ID\tPET\tTIME\tFOOD\tAMOUNT\tENABLED")
			for _, f := range feedings {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
					f.ID, f.PetID, f.Time, orDash(f.FoodType), orDash(f.Amount), p.enabledLabel(f.Enabled))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&petID, "pet", 0, "only this pet's schedules")
	return cmd
}

func addFeedingFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("pet", 0, "pet ID")
	cmd.Flags().String("time", "", "time of day (HH:MM)")
	cmd.Flags().String("food", "", "food type")
	cmd.Flags().String("amount", "", "amount per feeding")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().Bool("enabled", true, "whether the schedule is active")
	cmd.Flags().StringP("file", "f", "", "read the schedule from a YAML file ('-' for stdin)")
}

func (c *CLI) feedingPatch(cmd *cobra.Command) (models.FeedingPatch, error) {
	var patch models.FeedingPatch
	file, _ := cmd.Flags().GetString("file")
	if err := c.loadPatch(file, &patch); err != nil {
		return patch, err
	}
	overlay(&patch.PetID, changedInt64(cmd, "pet"))
	overlay(&patch.Time, changedString(cmd, "time"))
	overlay(&patch.FoodType, changedString(cmd, "food"))
	overlay(&patch.Amount, changedString(cmd, "amount"))
	overlay(&patch.Notes, changedString(cmd, "notes"))
	overlay(&patch.Enabled, changedBool(cmd, "enabled"))
	return patch, nil
}

func (c *CLI) newFeedingAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Add a feeding schedule",
		Example: `  petcare feeding add --pet 1 --time 07:30 --food "Salmon kibble" --amount "2 cups"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := c.feedingPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			f, err := c.newGatewayClient().CreateFeeding(ctx, patch)
			if err != nil {
				return err
			}
			return c.feedingDone("Added", f)
		},
	}
	addFeedingFlags(cmd)
	return cmd
}

func (c *CLI) newFeedingEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a feeding schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindFeeding, args[0])
			if err != nil {
				return err
			}
			patch, err := c.feedingPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			f, err := c.newGatewayClient().UpdateFeeding(ctx, id, patch)
			if err != nil {
				return err
			}
			return c.feedingDone("Updated", f)
		},
	}
	addFeedingFlags(cmd)
	return cmd
}

func (c *CLI) newFeedingToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Turn a feeding schedule on or off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindFeeding, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			f, err := c.newGatewayClient().ToggleFeeding(ctx, id)
			if err != nil {
				return err
			}
			return c.feedingDone("Toggled", f)
		},
	}
}

func (c *CLI) newFeedingDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a feeding schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindFeeding, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			if err := c.newGatewayClient().DeleteFeeding(ctx, id); err != nil {
				return err
			}
			c.printf("✓ Deleted feeding #%d\n", id)
			return nil
		},
	}
}

func (c *CLI) feedingDone(verb string, f *care.FeedingSchedule) error {
	if c.jsonOutput {
		return c.outputJSON(f)
	}
	state := "off"
	if f.Enabled {
		state = "on"
	}
	c.printf("✓ %s feeding #%d at %s (%s)\n", verb, f.ID, f.Time, state)
	return nil
}
