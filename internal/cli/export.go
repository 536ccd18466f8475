package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jamesruggles/secuscan/internal/capture"
	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
	"github.com/jamesruggles/secuscan/internal/scanner"
)

var (
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export <scan-id>",
	Short: "Export a stored scan to PDF, CSV or Markdown",
	Long: `Export a stored scan.

Available formats:
  - pdf:      Full audit report with charts
  - csv:      Open ports table
  - markdown: Summary report
  - all:      Every format

With export.capture set to "browser" the charts are screenshotted from the
report page of a running "secuscan serve". When no server answers at the
base URL, or with any other capture mode, they are rendered in-process.

Examples:
  secuscan export 1714564800000
  secuscan export 1714564800000 --format csv -o ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "pdf", "Export format: pdf, csv, markdown, all")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output directory (default: export.directory)")
}

func runExport(cmd *cobra.Command, args []string) error {
	formats := []string{exportFormat}
	switch exportFormat {
	case "pdf", "csv", "markdown":
	case "all":
		formats = []string{"pdf", "csv", "markdown"}
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
	dir := exportOutput
	if dir == "" {
		dir = cfg.Export.Directory
	}

	a, err := openApp(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	scan, ok := a.orch.Get(args[0])
	if !ok {
		return fmt.Errorf("%s: %w", args[0], scanner.ErrNotFound)
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	cyan.Printf("\n[*] Exporting scan %s (%s)\n", scan.ID, scan.TargetURL)

	now := time.Now()
	for _, format := range formats {
		var (
			path string
			err  error
		)
		switch format {
		case "markdown":
			path, err = report.SaveMarkdown(dir, scan, now)
		case "csv":
			path, err = writeExport(dir, report.PortsCSVFilename(scan.TargetURL, now), []byte(report.PortsCSV(scan.OpenPorts)))
		case "pdf":
			path, err = exportPDF(cmd, dir, scan, exportSource(cmd.Context(), cfg, a))
		}
		if err != nil {
			return fmt.Errorf("exporting %s: %w", format, err)
		}
		green.Printf("    [+] %s: %s\n", format, path)
	}
	fmt.Println()
	return nil
}

func exportPDF(cmd *cobra.Command, dir string, scan model.ScanResult, src capture.Source) (string, error) {
	snaps := capture.All(cmd.Context(), src, scan)
	data, err := report.ExportPDF(scan, snaps)
	if err != nil {
		return "", err
	}
	return writeExport(dir, report.PDFFilename(scan), data)
}

func writeExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
