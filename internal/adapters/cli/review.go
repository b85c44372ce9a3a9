package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newReviewCommand(r *runner) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "review FILE",
		Short: "Write a reviewed copy of a document with its issues appended",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readUploads(args)
			if err != nil {
				return err
			}
			services, err := r.load(cmd.Context())
			if err != nil {
				return err
			}
			if services.Reviewer == nil {
				return errNotConfigured
			}

			reviewed, err := services.Reviewer.Review(cmd.Context(), files[0].Filename, files[0].Data)
			if err != nil {
				return err
			}
			path := out
			if path == "" {
				path = filepath.Join(filepath.Dir(args[0]), reviewed.Filename)
			}
			if err := os.WriteFile(path, reviewed.Data, 0o644); err != nil {
				return fmt.Errorf("write reviewed document: %w", err)
			}
			for _, flag := range reviewed.Issues {
				cmd.Printf("[%s] %s: %s\n", flag.Severity, flag.Type, flag.Message)
			}
			cmd.Printf("%d issue(s), reviewed copy written to %s\n", len(reviewed.Issues), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (defaults to <name>_reviewed.docx next to the input)")
	return cmd
}
