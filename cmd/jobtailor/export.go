package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jobtailor/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a Markdown document as PDF or Word",
	Long:  "Render a tailored CV or cover letter the way the download buttons do: PDF with Markdown markers removed, or a Word-compatible .doc.",
	RunE:  runExport,
}

var (
	exportIn       string
	exportFormat   string
	exportStem     string
	exportOutDir   string
	exportRenderer string
)

func init() {
	exportCmd.Flags().StringVarP(&exportIn, "in", "i", "", "Path to the Markdown text (required)")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "pdf or doc")
	exportCmd.Flags().StringVar(&exportStem, "stem", export.StemCV, "File name without extension")
	exportCmd.Flags().StringVar(&exportOutDir, "out-dir", ".", "Directory to write the file to")
	exportCmd.Flags().StringVar(&exportRenderer, "renderer", "fpdf", "PDF renderer: fpdf or chromedp")
	_ = exportCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	raw, err := os.ReadFile(exportIn)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
	}

	var pdf export.DocumentRenderer
	switch exportRenderer {
	case "fpdf", "":
	case "chromedp", "chrome":
		pdf = export.NewChromeRenderer()
	default:
		return fmt.Errorf("unknown renderer %q", exportRenderer)
	}

	file, err := export.NewEngine(pdf).Export(commandContext(cmd), string(raw), exportStem, format)
	if err != nil {
		return err
	}
	path := filepath.Join(exportOutDir, file.Name)
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", path, len(file.Data))
	return nil
}
