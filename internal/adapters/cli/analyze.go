package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

func newAnalyzeCommand(r *runner) *cobra.Command {
	var (
		process string
		format  string
		out     string
	)

	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze documents and print the review report",
		Long: `Parses each .docx or .pdf file, detects red flags and checks the batch against a
process checklist. The process is identified from the documents when --process is empty.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(strings.TrimSpace(format))
			if format != "json" && format != "xlsx" {
				return fmt.Errorf("unsupported format %q", format)
			}
			if format == "xlsx" && out == "" {
				return fmt.Errorf("--out is required for xlsx reports")
			}

			files, err := readUploads(args)
			if err != nil {
				return err
			}
			services, err := r.load(cmd.Context())
			if err != nil {
				return err
			}
			if services.Analyzer == nil {
				return errNotConfigured
			}

			batch, err := services.Analyzer.AnalyzeBatch(cmd.Context(), strings.TrimSpace(process), files)
			if err != nil {
				return err
			}
			report := services.Analyzer.GenerateReport(batch)

			if format == "xlsx" {
				if services.Exporter == nil {
					return errNotConfigured
				}
				data, err := services.Exporter.Export(report)
				if err != nil {
					return err
				}
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				printSummary(cmd, report)
				cmd.Printf("report written to %s\n", out)
				return nil
			}

			if out != "" {
				return writeJSONFile(out, report)
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().StringVarP(&process, "process", "p", "", "process key (identified automatically when empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "json", "report format: json or xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the report to this file")
	return cmd
}

func newIdentifyCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "identify FILE...",
		Short: "Identify the checklist process a set of documents belongs to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := readUploads(args)
			if err != nil {
				return err
			}
			services, err := r.load(cmd.Context())
			if err != nil {
				return err
			}
			if services.Analyzer == nil {
				return errNotConfigured
			}

			docs := make([]domain.ExtractedDocument, 0, len(files))
			for _, file := range files {
				doc := services.Analyzer.ParseDocument(cmd.Context(), file.Filename, file.Data)
				docs = append(docs, doc)
				cmd.Printf("%s: %s\n", doc.Filename, doc.DocumentType)
			}
			key := services.Analyzer.IdentifyProcess(docs)
			result := services.Analyzer.CheckCompleteness(docs, key)
			cmd.Printf("process: %s (%.1f%% complete)\n", key, result.CompletionRate)
			if len(result.MissingDocuments) > 0 {
				cmd.Printf("missing: %s\n", strings.Join(result.MissingDocuments, ", "))
			}
			return nil
		},
	}
}

func printSummary(cmd *cobra.Command, report domain.Report) {
	summary := report.AnalysisSummary
	cmd.Printf("process: %s\n", summary.Process)
	cmd.Printf("documents: %d of %d required (%.1f%%)\n", summary.DocumentsUploaded, summary.RequiredDocuments, summary.CompletionRate)
	cmd.Printf("issues: %d (high %d, medium %d, low %d)\n",
		report.IssuesSummary.TotalIssues,
		report.IssuesSummary.HighSeverity,
		report.IssuesSummary.MediumSeverity,
		report.IssuesSummary.LowSeverity,
	)
}

func writeJSONFile(path string, payload any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
