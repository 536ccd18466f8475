package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jamesruggles/secuscan/internal/server"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web dashboard server",
	Long: `Start the dashboard: scan submission, history, results pages, chart
images, exports and a WebSocket feed of scan status changes.

Examples:
  secuscan serve
  secuscan serve --port 9000
  secuscan serve --config /etc/secuscan.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveHost, "host", "H", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	printBanner()
	if serveHost != "" {
		cfg.Server.Host = serveHost
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer a.Close()

	srv, err := server.New(cfg, a.orch, chartSource(cfg, a))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  [+] Dashboard: %s\n", cfg.BaseURL())
	fmt.Printf("      History backend: %s, charts: %s\n\n", cfg.Storage.Backend, cfg.Export.Capture)

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	// Let running acquisitions land in the history before exiting.
	a.orch.Wait()
	return nil
}
