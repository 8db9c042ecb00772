package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/papapumpkin/cartographer/internal/ui"
	"github.com/papapumpkin/cartographer/internal/value"
)

var valueCmd = &cobra.Command{
	Use:   "value",
	Short: "Compute the exploration value of one body",
	Long: `Computes what the cartographic data of a single body sells for.

--class takes a journal StarType ("K", "DA", "N", ...) or PlanetClass
("Earthlike body", "High metal content body", ...). With --kind auto the
class decides whether the body is a star or a planet.`,
	Example: `  cartographer value --class "High metal content body" --terraform Terraformable --mass 0.132 --mapped --first-mapped
  cartographer value --class K --mass 0.63 --first-discovery`,
	RunE: runValue,
}

func init() {
	addValueFlags(valueCmd)
	rootCmd.AddCommand(valueCmd)
}

func addValueFlags(c *cobra.Command) {
	c.Flags().String("class", "", "journal StarType or PlanetClass")
	c.Flags().String("kind", "auto", "body kind: auto, star or planet")
	c.Flags().String("terraform", "", "journal TerraformState (planets only)")
	c.Flags().Float64("mass", 0, "mass in solar masses (stars) or Earth masses (planets)")
	c.Flags().Bool("first-discovery", false, "first to discover the body")
	c.Flags().Bool("mapped", false, "surface mapped")
	c.Flags().Bool("first-mapped", false, "first to map the body")
	c.Flags().Bool("efficient", false, "mapped within the probe target")
	c.Flags().Bool("odyssey", true, "apply the Odyssey mapping bonus")
	c.Flags().Bool("carrier", false, "sold through a fleet carrier")
	_ = c.MarkFlagRequired("class")
	_ = c.MarkFlagRequired("mass")
}

func runValue(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	class, _ := f.GetString("class")
	kind, _ := f.GetString("kind")
	terraform, _ := f.GetString("terraform")
	mass, _ := f.GetFloat64("mass")

	c, err := resolveClass(class, kind)
	if err != nil {
		return err
	}
	ts, err := value.ParseTerraformState(terraform)
	if err != nil {
		return err
	}
	if _, ok := c.(value.StarClass); ok && ts != value.NotTerraformable {
		return fmt.Errorf("--terraform applies to planets only")
	}

	var opts value.Options
	opts.FirstDiscoverer, _ = f.GetBool("first-discovery")
	opts.Mapped, _ = f.GetBool("mapped")
	opts.FirstMapped, _ = f.GetBool("first-mapped")
	opts.EfficiencyBonus, _ = f.GetBool("efficient")
	opts.Odyssey, _ = f.GetBool("odyssey")
	opts.FleetCarrierSale, _ = f.GetBool("carrier")
	if _, ok := c.(value.StarClass); ok && opts.Mapped {
		return fmt.Errorf("stars cannot be mapped")
	}

	base := value.BaseValue(c, ts)
	v := value.Value(base, mass, opts)
	fmt.Fprintf(cmd.OutOrStdout(), "%s (base %d): %s\n", c, base, ui.Credits(v))
	return nil
}

// resolveClass parses class as a star or planet class. With kind "auto" a
// name that is neither is an error; with an explicit kind unknown names fall
// into that kind's catch-all bucket.
func resolveClass(class, kind string) (value.Class, error) {
	switch kind {
	case "star":
		return value.ParseStarClass(class), nil
	case "planet":
		return value.ParsePlanetClass(class), nil
	case "auto", "":
		if c := value.ParsePlanetClass(class); c != value.PlanetOther {
			return c, nil
		}
		if c := value.ParseStarClass(class); c != value.StarOther {
			return c, nil
		}
		return nil, fmt.Errorf("unknown class %q: pass --kind star or --kind planet to value it as Other", class)
	}
	return nil, fmt.Errorf("unknown kind %q: want auto, star or planet", kind)
}
