package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/service"
	"github.com/petcare-labs/petcare/pkg/models"
)

func (c *CLI) newPetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pet",
		Aliases: []string{"pets"},
		Short:   "Manage pets",
	}

	cmd.AddCommand(c.newPetListCmd())
	cmd.AddCommand(c.newPetShowCmd())
	cmd.AddCommand(c.newPetAddCmd())
	cmd.AddCommand(c.newPetEditCmd())
	cmd.AddCommand(c.newPetTrackCmd())
	cmd.AddCommand(c.newPetDeleteCmd())

	return cmd
}

func (c *CLI) newPetListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List pets with their ages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			pets, err := c.newGatewayClient().ListPets(ctx)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(pets)
			}
			if len(pets) == 0 {
				c.println("No pets yet. Add one with 'petcare pet add --name NAME --type TYPE'.")
				return nil
			}

			w := c.newTable()
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tBREED\tAGE\tAPPETITE\tENERGY")
			for _, p := range pets {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\n",
					p.ID, p.Name, p.Type, orDash(p.Breed), orDash(p.Age), p.Appetite, p.Energy)
			}
			return w.Flush()
		},
	}
}

func (c *CLI) newPetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a pet and all of its care records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindPet, args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			detail, err := c.newGatewayClient().PetDetail(ctx, id)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(detail)
			}
			return c.printPetDetail(detail)
		},
	}
}

func (c *CLI) printPetDetail(d *service.PetDetail) error {
	p := c.palette()
	pet := d.Pet

	c.println(p.title.Render(fmt.Sprintf("%s (#%d)", pet.Name, pet.ID)))
	c.printf("  Type:      %s\n", pet.Type)
	c.printf("  Breed:     %s\n", orDash(pet.Breed))
	c.printf("  Age:       %s\n", orDash(d.Age))
	if pet.Notes != "" {
		c.printf("  Notes:     %s\n", pet.Notes)
	}
	c.printf("  Appetite:  %s\n", levelBar(pet.Appetite))
	c.printf("  Energy:    %s\n", levelBar(pet.Energy))

	c.println("")
	c.println(p.title.Render("Feeding"))
	if len(d.Feedings) == 0 {
		c.println("  no feeding schedules")
	}
	for _, f := range d.Feedings {
		c.printf("  #%d %s %s %s [%s]\n", f.ID, f.Time, orDash(f.FoodType), orDash(f.Amount), p.enabledLabel(f.Enabled))
	}
	if d.NextFeeding != nil {
		c.printf("  next: %s\n", formatTime(d.NextFeeding.At))
	}

	c.println("")
	c.println(p.title.Render("Reminders due"))
	if len(d.Reminders) == 0 {
		c.println("  nothing due")
	}
	now := c.currentTime()
	for _, r := range d.Reminders {
		c.printf("  #%d %s %s (%s)\n", r.ID, formatTime(r.DateTime), r.Title, p.bucketLabel(r.DateTime, now))
	}

	c.println("")
	c.println(p.title.Render("Appointments"))
	if len(d.Appointments) == 0 {
		c.println("  no appointments")
	}
	for _, a := range d.Appointments {
		c.printf("  #%d %s %s %s [%s]\n", a.ID, formatTime(a.DateTime), a.Type, a.Reason, p.completedLabel(a.Completed))
	}

	c.println("")
	c.println(p.title.Render("Vaccinations"))
	if len(d.Vaccinations) == 0 {
		c.println("  no vaccinations")
	}
	for _, v := range d.Vaccinations {
		c.printf("  #%d %s given %s, next %s [%s]\n", v.ID, v.Name, v.DateGiven, orDash(v.NextDueDate), p.dueLabel(v.Status))
	}
	return nil
}

// addPetFlags registers the flags shared by add and edit.
func addPetFlags(cmd *cobra.Command) {
	cmd.Flags().String("name", "", "pet name")
	cmd.Flags().String("type", "", "species: "+joinTypes(care.AllPetTypes()))
	cmd.Flags().String("breed", "", "breed")
	cmd.Flags().String("birth-date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().String("photo-url", "", "photo URL")
	cmd.Flags().String("notes", "", "free-form notes")
	cmd.Flags().Int("appetite", care.DefaultLevel, "appetite level (0-10)")
	cmd.Flags().Int("energy", care.DefaultLevel, "energy level (0-10)")
	cmd.Flags().StringP("file", "f", "", "read the pet from a YAML file ('-' for stdin)")
}

func (c *CLI) petPatch(cmd *cobra.Command) (models.PetPatch, error) {
	var patch models.PetPatch
	file, _ := cmd.Flags().GetString("file")
	if err := c.loadPatch(file, &patch); err != nil {
		return patch, err
	}
	overlay(&patch.Name, changedString(cmd, "name"))
	overlay(&patch.Type, changedString(cmd, "type"))
	overlay(&patch.Breed, changedString(cmd, "breed"))
	overlay(&patch.BirthDate, changedString(cmd, "birth-date"))
	overlay(&patch.PhotoURL, changedString(cmd, "photo-url"))
	overlay(&patch.Notes, changedString(cmd, "notes"))
	overlay(&patch.Appetite, changedInt(cmd, "appetite"))
	overlay(&patch.Energy, changedInt(cmd, "energy"))
	return patch, nil
}

func (c *CLI) newPetAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a pet",
		Example: `  petcare pet add --name Buddy --type dog --breed "Golden Retriever" --birth-date 2020-05-15
  petcare pet add -f buddy.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := c.petPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			pet, err := c.newGatewayClient().CreatePet(ctx, patch)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(pet)
			}
			c.printf("✓ Added pet #%d %s\n", pet.ID, pet.Name)
			return nil
		},
	}
	addPetFlags(cmd)
	return cmd
}

func (c *CLI) newPetEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change a pet's details",
		Long:  `Only the fields given on the command line or in the file are changed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindPet, args[0])
			if err != nil {
				return err
			}
			patch, err := c.petPatch(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			pet, err := c.newGatewayClient().UpdatePet(ctx, id, patch)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(pet)
			}
			c.printf("✓ Updated pet #%d %s\n", pet.ID, pet.Name)
			return nil
		},
	}
	addPetFlags(cmd)
	return cmd
}

func (c *CLI) newPetTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track ID",
		Short: "Record today's appetite and energy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindPet, args[0])
			if err != nil {
				return err
			}
			req := models.TrackingRequest{
				Appetite: changedInt(cmd, "appetite"),
				Energy:   changedInt(cmd, "energy"),
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			pet, err := c.newGatewayClient().UpdateTracking(ctx, id, req)
			if err != nil {
				return err
			}
			if c.jsonOutput {
				return c.outputJSON(pet)
			}
			c.printf("%s\n", pet.Name)
			c.printf("  Appetite: %s\n", levelBar(pet.Appetite))
			c.printf("  Energy:   %s\n", levelBar(pet.Energy))
			return nil
		},
	}
	cmd.Flags().Int("appetite", care.DefaultLevel, "appetite level (0-10)")
	cmd.Flags().Int("energy", care.DefaultLevel, "energy level (0-10)")
	return cmd
}

func (c *CLI) newPetDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a pet and all of its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(care.KindPet, args[0])
			if err != nil {
				return err
			}
			if !yes && !c.confirm(fmt.Sprintf("Delete pet #%d with its feedings, appointments, vaccinations and reminders?", id)) {
				c.println("Aborted.")
				return nil
			}
			ctx, cancel := c.withTimeout(cmd)
			defer cancel()

			if err := c.newGatewayClient().DeletePet(ctx, id); err != nil {
				return err
			}
			c.printf("✓ Deleted pet #%d\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func joinTypes[T ~string](types []T) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
