package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobtailor/internal/analyses"
	"jobtailor/internal/documents"
	"jobtailor/internal/llm"
	"jobtailor/internal/shared/config"
	"jobtailor/internal/tailoring"
)

const cliOwner = "cli"

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Extract the plain text of a résumé file",
	Long:  "Extract the plain text of a .txt, .md, .rtf, .pdf or .docx résumé the same way the upload step does.",
	RunE:  runImport,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score a résumé against a job description",
	RunE:  runAnalyze,
}

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Generate a tailored CV, cover letter and outreach email",
	RunE:  runTailor,
}

var (
	importIn  string
	importOut string

	analyzeCV  string
	analyzeJob string

	tailorCV     string
	tailorJob    string
	tailorOutDir string
)

func init() {
	importCmd.Flags().StringVarP(&importIn, "in", "i", "", "Path to the résumé file (required)")
	importCmd.Flags().StringVarP(&importOut, "out", "o", "", "Write the text here instead of stdout")
	_ = importCmd.MarkFlagRequired("in")

	analyzeCmd.Flags().StringVar(&analyzeCV, "cv", "", "Path to the résumé file (required)")
	analyzeCmd.Flags().StringVar(&analyzeJob, "job", "", "Path to a text file with the job description (required)")
	_ = analyzeCmd.MarkFlagRequired("cv")
	_ = analyzeCmd.MarkFlagRequired("job")

	tailorCmd.Flags().StringVar(&tailorCV, "cv", "", "Path to the master résumé file (required)")
	tailorCmd.Flags().StringVar(&tailorJob, "job", "", "Path to a text file with the job description (required)")
	tailorCmd.Flags().StringVar(&tailorOutDir, "out-dir", "", "Write cv.md, cover_letter.md and email.txt here instead of printing JSON")
	_ = tailorCmd.MarkFlagRequired("cv")
	_ = tailorCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(importCmd, analyzeCmd, tailorCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	doc, err := readResume(commandContext(cmd), importIn)
	if err != nil {
		return err
	}
	if importOut == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), doc.Content)
		return err
	}
	if err := os.WriteFile(importOut, []byte(doc.Content), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	resume, jobText, err := readInputs(ctx, analyzeCV, analyzeJob)
	if err != nil {
		return err
	}
	cfg := config.Load()
	client, err := newLLM(ctx, cfg)
	if err != nil {
		return err
	}
	svc := &analyses.Service{LLM: llm.WithRetry(client), Model: cfg.AnalysisModel}
	res, err := svc.Analyze(ctx, resume.Content, jobText)
	if err != nil {
		return fmt.Errorf("failed to analyze documents: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), res)
}

func runTailor(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	resume, jobText, err := readInputs(ctx, tailorCV, tailorJob)
	if err != nil {
		return err
	}
	cfg := config.Load()
	client, err := newLLM(ctx, cfg)
	if err != nil {
		return err
	}
	svc := &tailoring.Service{LLM: client, Model: cfg.TailoringModel}
	bundle, err := svc.Tailor(ctx, resume.Content, jobText)
	if err != nil {
		return fmt.Errorf("failed to generate tailored documents: %w", err)
	}
	if tailorOutDir == "" {
		return writeJSON(cmd.OutOrStdout(), bundle)
	}
	if err := os.MkdirAll(tailorOutDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	files := map[string]string{
		"cv.md":           bundle.CV,
		"cover_letter.md": bundle.CoverLetter,
		"email.txt":       bundle.EmailBody,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(tailorOutDir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote tailored documents to %s\n", tailorOutDir)
	return nil
}

func readResume(ctx context.Context, path string) (documents.ResumeDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return documents.ResumeDocument{}, fmt.Errorf("failed to open résumé: %w", err)
	}
	defer f.Close()
	doc, err := documents.NewImporter(nil).Import(ctx, cliOwner, filepath.Base(path), f)
	if err != nil {
		return documents.ResumeDocument{}, fmt.Errorf("failed to read file: %w", err)
	}
	return doc, nil
}

func readInputs(ctx context.Context, cvPath, jobPath string) (documents.ResumeDocument, string, error) {
	resume, err := readResume(ctx, cvPath)
	if err != nil {
		return documents.ResumeDocument{}, "", err
	}
	raw, err := os.ReadFile(jobPath)
	if err != nil {
		return documents.ResumeDocument{}, "", fmt.Errorf("failed to read job description: %w", err)
	}
	job := documents.JobPosting{Text: string(raw)}
	if job.Blank() {
		return documents.ResumeDocument{}, "", fmt.Errorf("job description is empty")
	}
	if err := job.Validate(); err != nil {
		return documents.ResumeDocument{}, "", err
	}
	return resume, job.Text, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
