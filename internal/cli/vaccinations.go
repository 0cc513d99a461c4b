package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/schedule"
	"github.com/petcare-labs/petcare/pkg/models"
)

func (c *CLI) newVaccinationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "vaccination",
		Aliases: []string{"vaccinations", "vax"},
		Short:   "Manage vaccination records",
	}

	cmd.AddCommand(c.newVaccinationListCmd())
	cmd.AddCommand(c.newVaccinationAddCmd())
	cmd.AddCommand(c.newVaccinationEditCmd())
	cmd.AddCommand(c.newVaccinationDeleteCmd())

	return cmd
}

func (c *CLI) newVaccinationListCmd() *cobra.Command {
	var petID int64
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vaccinations with their due status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			vs, err := c.newGatewayClient().ListVaccinations(ctx, petID)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(vs)
			}
			if len(vs) == 0 {
				c.println("No vaccinations recorded.")
				return nil
			}

			p := c.palette()
			now := c.currentTime()
			w := c.newTable()
			fmt.Fprintln(w, "ID\tPET\tVACCINE\tGIVEN\tNEXT DUE\tVET\tSTATUS")
			for _, v := range vs {
				fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
					v.ID, v.PetID, v.Name, v.DateGiven, orDash(v.NextDueDate), orDash(v.Veterinarian),
					p.dueLabel(schedule.VaccinationStatus(v, now)))
			}
			return w.Flush()
		},
	}
	cmd.Flags().Int64Var(&petID, "pet", 0, "only this pet's vaccinations")
	return cmd
}

func addVaccinationFlags(cmd *cobra.Command) {
	cmd.Flags().Int64("pet", 0, "pet ID")
	cmd.Flags().String("name", "", "vaccine name")
	cmd.Flags().String("given", "", "date given (YYYY-MM-DD)")
	cmd.Flags().String("next-due", "", "next dose due (YYYY-MM-DD)")
	cmd.Flags().String("vet", "", "veterinarian")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().StringP("file", "f", "", "read the record from a YAML file ('-' for stdin)")
}

func (c *CLI) vaccinationPatch(cmd *cobra.Command) (models.VaccinationPatch, error) {
	var patch models.VaccinationPatch
	file, _ := cmd.Flags().GetString("file")
	if err := c.loadPatch(file, &patch); err != nil {
		return patch, err
	}
	overlay(&patch.PetID, changedInt64(cmd, "pet"))
	overlay(&patch.Name, changedString(cmd, "name"))
	overlay(&patch.DateGiven, changedString(cmd, "given"))
	overlay(&patch.NextDueDate, changedString(cmd, "next-due"))
	overlay(&patch.Veterinarian, changedString(cmd, "vet"))
	overlay(&patch.Notes, changedString(cmd, "notes"))
	return patch, nil
}

func (c *CLI) newVaccinationAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Record a vaccination",
		Example: `  petcare vaccination add --pet 1 --name Rabies --given 2024-03-01 --next-due 2027-03-01`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := c.vaccinationPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			v, err := c.newGatewayClient().CreateVaccination(ctx, patch)
			if err != nil {
				return err
			}
			return c.vaccinationDone("Recorded", v)
		},
	}
	addVaccinationFlags(cmd)
	return cmd
}

func (c *CLI) newVaccinationEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a vaccination record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindVaccination, args[0])
			if err != nil {
				return err
			}
			patch, err := c.vaccinationPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			v, err := c.newGatewayClient().UpdateVaccination(ctx, id, patch)
			if err != nil {
				return err
			}
			return c.vaccinationDone("Updated", v)
		},
	}
	addVaccinationFlags(cmd)
	return cmd
}

func (c *CLI) newVaccinationDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a vaccination record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindVaccination, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			if err := c.newGatewayClient().DeleteVaccination(ctx, id); err != nil {
				return err
			}
			c.printf("✓ Deleted vaccination #%d\n", id)
			return nil
		},
	}
}

func (c *CLI) vaccinationDone(verb string, v *care.Vaccination) error {
	if c.jsonOutput {
		return c.outputJSON(v)
	}
	c.printf("✓ %s %s (#%d) for pet %d\n", verb, v.Name, v.ID, v.PetID)
	return nil
}
