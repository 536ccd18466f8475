package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jamesruggles/secuscan/internal/model"
	"github.com/jamesruggles/secuscan/internal/report"
	"github.com/jamesruggles/secuscan/internal/tools"
)

var (
	scanTarget    string
	scanTools     string
	scanIntensity string
	scanLang      string
	scanProject   string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Generate a report for a target and store it in the history",
	Long: `Submit a scan and wait for the generated report.

Tool names are matched case-insensitively against the catalogue (see
"secuscan tools").

Examples:
  secuscan scan -t example.com --tools Nmap,"Security Headers"
  secuscan scan -t shop.example.com --tools all --intensity deep --lang en`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&scanTarget, "target", "t", "", "Target domain, URL or IP")
	scanCmd.Flags().StringVar(&scanTools, "tools", "Nmap", `Comma-separated tool list, or "all"`)
	scanCmd.Flags().StringVarP(&scanIntensity, "intensity", "i", string(model.IntensityNormal), "Scan intensity: quick, normal, deep")
	scanCmd.Flags().StringVarP(&scanLang, "lang", "l", string(model.LangFrench), "Report language: fr, en, ar")
	scanCmd.Flags().StringVarP(&scanProject, "project", "P", "", "Project name")
}

func parseTools(list string) ([]model.ToolType, error) {
	if strings.EqualFold(strings.TrimSpace(list), "all") {
		all := make([]model.ToolType, 0, len(tools.Catalog()))
		for _, t := range tools.Catalog() {
			all = append(all, t.Name)
		}
		return all, nil
	}
	selected, unknown := tools.ParseList(list)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown tools: %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

func parseIntensity(s string) (model.Intensity, error) {
	switch in := model.Intensity(strings.ToLower(s)); in {
	case model.IntensityQuick, model.IntensityNormal, model.IntensityDeep:
		return in, nil
	}
	return "", fmt.Errorf("unknown intensity %q", s)
}

func runScan(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(scanTarget) == "" {
		return fmt.Errorf("--target is required")
	}
	selected, err := parseTools(scanTools)
	if err != nil {
		return err
	}
	intensity, err := parseIntensity(scanIntensity)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n[*] Scanning %s with %d tools\n", scanTarget, len(selected))

	id, err := a.orch.Submit(ctx, model.ScanRequest{
		ProjectName: scanProject,
		Target:      scanTarget,
		Tools:       selected,
		Intensity:   intensity,
		Language:    model.Language(scanLang),
	})
	if err != nil {
		return err
	}
	fmt.Printf("    Scan id: %s\n", id)

	a.orch.Wait()
	scan, ok := a.orch.Get(id)
	if !ok {
		return fmt.Errorf("scan %s disappeared from the history", id)
	}
	printScan(scan)
	if scan.Status == model.StatusFailed {
		return fmt.Errorf("scan %s failed", id)
	}
	return nil
}

func bandColor(b report.ScoreBand) *color.Color {
	switch b {
	case report.BandGood:
		return color.New(color.FgGreen, color.Bold)
	case report.BandWarning:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgRed, color.Bold)
	}
}

func severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityCritical:
		return color.New(color.FgHiRed, color.Bold)
	case model.SeverityHigh:
		return color.New(color.FgRed)
	case model.SeverityMedium:
		return color.New(color.FgYellow)
	case model.SeverityLow:
		return color.New(color.FgBlue)
	default:
		return color.New(color.FgHiBlack)
	}
}

func printScan(r model.ScanResult) {
	white := color.New(color.FgWhite, color.Bold)
	gray := color.New(color.FgHiBlack)

	fmt.Println()
	white.Printf("  %s", r.TargetURL)
	gray.Printf("  (%s, %s)\n", r.TargetIP, r.Status)
	fmt.Print("  Score: ")
	bandColor(report.BandFor(r.OverallScore)).Printf("%g/100\n\n", r.OverallScore)
	if r.AIAnalysis != "" {
		fmt.Printf("  %s\n\n", r.AIAnalysis)
	}

	if len(r.OpenPorts) > 0 {
		white.Println("  Open ports")
		for _, p := range r.OpenPorts {
			fmt.Printf("    %-6d %-12s %-20s %s\n", p.Port, p.Service, p.Version, p.State)
		}
		fmt.Println()
	}

	if len(r.Vulnerabilities) > 0 {
		white.Println("  Vulnerabilities")
		for _, v := range report.TopVulnerabilities(r.Vulnerabilities, -1) {
			severityColor(v.Severity).Printf("    [%s] ", v.Severity)
			fmt.Printf("%s", v.Name)
			gray.Printf(" (%s)\n", v.ToolDetected)
		}
		fmt.Println()
	}
}
