package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/internal/brain"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "전 시장 수급 랭킹",
	Long: `Rank the whole market on today's institutional flow alone.

Excludes ETFs (00) and financial-sector codes (28, 58, 60); keeps names with foreign >= 500 lots
or trust >= 100 lots; prints the top entries.

Example:
  go run ./cmd/quant scan
  go run ./cmd/quant scan --json`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	view := a.orchestrator.Ranking(ctx, true)

	if jsonOutput {
		return PrintJSON(view)
	}

	printRanking(view)
	return nil
}

func printRanking(v *brain.RankingView) {
	PrintHeader("Chip leaderboard", fmt.Sprintf("Trade date: %s   Scanned: %d", v.TradeDate, v.Scanned))

	if q := v.Quality; q != nil && !q.Passed {
		for _, issue := range q.Issues {
			PrintWarning("Data quality: " + issue)
		}
	}

	if len(v.Entries) == 0 {
		PrintWarning(v.Message)
		return
	}

	widths := []int{4, 6, 18, 5, 10, 10, 10}
	PrintTableHeader([]string{"#", "Code", "Name", "Score", "Foreign", "Trust", "Hedge"}, widths)
	for _, e := range v.Entries {
		PrintTableRow([]string{
			strconv.Itoa(e.Rank),
			e.Code,
			e.Name,
			strconv.Itoa(e.Score),
			FormatLots(e.ForeignNet),
			FormatLots(e.TrustNet),
			FormatLots(e.DealerHedgeNet),
		}, widths)
	}
	fmt.Println()
}
