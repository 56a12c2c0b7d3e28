package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
)

func checkCmd() *cobra.Command {
	var platformName string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the capability graph of one or every platform",
		RunE: func(cmd *cobra.Command, args []string) error {
			platforms, err := parsePlatforms(platformName)
			if err != nil {
				return err
			}
			var errs []error
			for _, p := range platforms {
				c, err := buildFor(cmd.Context(), p)
				if err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s FAIL\n", p)
					errs = append(errs, fmt.Errorf("%s: %w", p, err))
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s ok   %d capabilities\n", p, len(c.Plan().Order))
			}
			return utilerrors.NewAggregate(errs)
		},
	}
	cmd.Flags().StringVar(&platformName, "platform", "all", "android, ios, desktop, web or all")
	return cmd
}
