package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

func newProcessesCommand(r *runner) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "processes",
		Short: "List checklist processes and their required documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, err := r.load(cmd.Context())
			if err != nil {
				return err
			}
			if services.Analyzer == nil {
				return errNotConfigured
			}

			processes := services.Analyzer.Processes()
			if asJSON {
				return printJSON(cmd, processes)
			}
			for _, p := range processes {
				cmd.Printf("%s  %s\n", p.Key, p.Name)
				cmd.Printf("    required: %s\n", strings.Join(p.RequiredDocuments, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output processes as JSON")
	return cmd
}
