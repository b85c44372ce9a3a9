// Package cli implements the adgmctl command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
	"github.com/kirillkom/adgm-corporate-agent/internal/core/ports"
)

// Services are the use cases the commands drive. Nil members make the matching commands fail.
type Services struct {
	Analyzer ports.DocumentAnalyzer
	Indexer  ports.ReferenceIndexer
	Searcher ports.ReferenceSearcher
	Reviewer ports.DocumentReviewer
	Exporter ports.ReportExporter
}

// ServicesFactory builds the services on first use so that --help never touches the index
// directory or the catalogs. The returned func releases them.
type ServicesFactory func(ctx context.Context) (*Services, func(), error)

type runner struct {
	factory  ServicesFactory
	services *Services
	release  func()
}

func (r *runner) load(ctx context.Context) (*Services, error) {
	if r.services != nil {
		return r.services, nil
	}
	services, release, err := r.factory(ctx)
	if err != nil {
		return nil, err
	}
	r.services = services
	r.release = release
	return services, nil
}

func (r *runner) close() {
	if r.release != nil {
		r.release()
		r.release = nil
	}
}

// Execute runs the command tree with os.Args, printing results to stdout, and releases the
// services afterwards.
func Execute(ctx context.Context, factory ServicesFactory) error {
	r := &runner{factory: factory}
	defer r.close()
	root := newRootCommand(r)
	root.SetOut(os.Stdout)
	return root.ExecuteContext(ctx)
}

func NewRootCommand(factory ServicesFactory) *cobra.Command {
	return newRootCommand(&runner{factory: factory})
}

func newRootCommand(r *runner) *cobra.Command {
	root := &cobra.Command{
		Use:   "adgmctl",
		Short: "Review ADGM corporate documents and manage the reference index",
		Long: `adgmctl checks uploaded corporate documents against the ADGM process checklists,
flags common drafting issues and searches the indexed ADGM reference material.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newProcessesCommand(r),
		newAnalyzeCommand(r),
		newIdentifyCommand(r),
		newReviewCommand(r),
		newBuildIndexCommand(r),
		newSearchCommand(r),
	)
	return root
}

var errNotConfigured = errors.New("service not configured")

func readUploads(paths []string) ([]domain.UploadedFile, error) {
	files := make([]domain.UploadedFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		files = append(files, domain.UploadedFile{Filename: filepath.Base(path), Data: data})
	}
	return files, nil
}

func printJSON(cmd *cobra.Command, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
