// Package cli implements the secuscan command line: the dashboard server
// plus history, scan and export commands that work on the same store.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jamesruggles/secuscan/internal/config"
)

var (
	configPath string
	cfg        *config.Config

	rootCmd = &cobra.Command{
		Use:   "secuscan",
		Short: "Simulated security audit dashboard",
		Long: `SecuScan Pro - simulated security audit dashboard.

Scan reports are generated by a language model from the selected tool
list; no tool is ever run against the target. Results are kept in a
persistent history and can be exported to PDF, CSV or Markdown.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = loaded
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel()})))
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(toolsCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

func printBanner() {
	green := color.New(color.FgGreen, color.Bold)
	gray := color.New(color.FgHiBlack)

	green.Println("\n  SecuScan Pro")
	gray.Println("  Rapport d'audit de sécurité simulé")
	fmt.Println()
}
