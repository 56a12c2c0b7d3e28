package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func graphCmd() *cobra.Command {
	var platformName, output string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Print the resolved capability plan of a platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			platforms, err := parsePlatforms(platformName)
			if err != nil {
				return err
			}
			if len(platforms) != 1 {
				return fmt.Errorf("graph needs a single --platform")
			}
			c, err := buildFor(cmd.Context(), platforms[0])
			if err != nil {
				return err
			}
			plan := c.Plan()

			out := cmd.OutOrStdout()
			switch output {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(plan); err != nil {
					return err
				}
				return enc.Close()
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(plan)
			default:
				return fmt.Errorf("unknown output %q, want yaml or json", output)
			}
		},
	}
	cmd.Flags().StringVar(&platformName, "platform", "", "android, ios, desktop or web")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "yaml or json")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}
