package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/internal/brain"
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <code|name>",
	Short: "단일 종목 전략 점수",
	Long: `Score one security from today's institutional flow and its price history.

Example:
  go run ./cmd/quant score 2330
  go run ./cmd/quant score 台積電
  go run ./cmd/quant score 6488 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}

func runScore(cmd *cobra.Command, args []string) error {
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

	view, err := a.orchestrator.Stock(ctx, strings.Join(args, " "))
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if jsonOutput {
		return PrintJSON(view)
	}

	printStockView(view)
	return nil
}

func printStockView(v *brain.StockView) {
	PrintHeader(fmt.Sprintf("%s %s (%s)", v.Code, v.Name, v.MarketLabel), "Trade date: "+v.TradeDate)

	fmt.Printf("\n   Strategy score : %d / 100   %s\n", v.Score.Score, v.Diagnosis.Label)
	fmt.Printf("   %s\n", v.Diagnosis.Summary)

	if v.Technical != nil {
		fmt.Println()
		PrintKeyValue("Price", fmt.Sprintf("%.2f (%+.2f%%)", v.Technical.Price, v.Technical.ChangePct), 14)
		PrintKeyValue("MA5/20/60", FormatAverage(v.Technical.MA5)+" / "+FormatAverage(v.Technical.MA20)+" / "+FormatAverage(v.Technical.MA60), 14)
		PrintKeyValue("MA240", FormatAverage(v.Technical.MA240), 14)
		PrintKeyValue("Volume ratio", fmt.Sprintf("%.2fx", v.Technical.VolumeRatio), 14)
	}

	if v.Flow != nil {
		fmt.Println()
		PrintKeyValue("外資 foreign", FormatLots(v.Flow.ForeignNet)+" lots", 14)
		PrintKeyValue("投信 trust", FormatLots(v.Flow.TrustNet)+" lots", 14)
		PrintKeyValue("自營 hedge", FormatLots(v.Flow.DealerHedgeNet)+" lots", 14)
	}

	if len(v.Score.Badges) > 0 {
		fmt.Println("\n   Badges:")
		PrintList(v.Score.Badges)
	}
	if len(v.Score.Reasons) > 0 {
		fmt.Println("\n   Reasons:")
		PrintList(v.Score.Reasons)
	}

	for _, msg := range v.Messages {
		PrintWarning(msg)
	}
	fmt.Println()
}
