package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jamesruggles/secuscan/internal/report"
	"github.com/jamesruggles/secuscan/internal/scanner"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and prune the scan history",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored scans",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <scan-id>",
	Short: "Print one scan as a Markdown summary or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyRmCmd = &cobra.Command{
	Use:     "rm <scan-id>",
	Aliases: []string{"delete"},
	Short:   "Delete a scan from the history",
	Args:    cobra.ExactArgs(1),
	RunE:    runHistoryRm,
}

func init() {
	historyShowCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the stored record as JSON")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyRmCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	scans := a.orch.List()
	if len(scans) == 0 {
		color.New(color.FgHiBlack).Println("No scans recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTARGET\tSTATUS\tSCORE\tVULNS")
	for _, s := range scans {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%g\t%d\n",
			s.ID, s.Timestamp.Format("2006-01-02 15:04"), s.TargetURL, s.Status, s.OverallScore, len(s.Vulnerabilities))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if a.db != nil {
		e, err := a.db.GetEntry(cmd.Context(), cfg.Storage.Key)
		if err != nil {
			return err
		}
		if e != nil {
			color.New(color.FgHiBlack).Printf("\n%d scans, last written %s\n", len(scans), e.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		}
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	scan, ok := a.orch.Get(args[0])
	if !ok {
		return fmt.Errorf("%s: %w", args[0], scanner.ErrNotFound)
	}
	if historyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scan)
	}
	fmt.Print(report.Markdown(scan))
	return nil
}

func runHistoryRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), cfg, false)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.Remove(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	color.New(color.FgGreen).Printf("[+] Deleted scan %s\n", args[0])
	return nil
}
