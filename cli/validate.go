package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newValidateCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the configured model artifact and print its metadata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scorer, _, _, err := root.loadModel(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer scorer.Close()

			info := scorer.Info()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "type:     %s\n", info.Type)
			fmt.Fprintf(w, "name:     %s\n", info.Name)
			fmt.Fprintf(w, "version:  %s\n", info.Version)
			fmt.Fprintf(w, "source:   %s\n", info.Source)
			fmt.Fprintf(w, "features: %s\n", strings.Join(info.Features, ", "))
			fmt.Fprintln(w, "artifact OK")
			return nil
		},
	}
}
