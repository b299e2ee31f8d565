package commands

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/internal/contracts"
)

// flowCmd represents the flow command
var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "법인 수급 조회",
	Long: `Collect one trading day of institutional flow (TWSE T86 + TPEx).

Without --date the reference trading date is used: the latest weekday,
or the previous one before 15:00 Taipei time.

Example:
  go run ./cmd/quant flow
  go run ./cmd/quant flow --date 2024-05-10
  go run ./cmd/quant flow --code 2330`,
	RunE: runFlow,
}

var (
	flowDate string
	flowCode string
	flowTop  int
)

func init() {
	rootCmd.AddCommand(flowCmd)

	flowCmd.Flags().StringVar(&flowDate, "date", "", "trading date (YYYY-MM-DD)")
	flowCmd.Flags().StringVar(&flowCode, "code", "", "show a single security")
	flowCmd.Flags().IntVar(&flowTop, "top", 20, "rows ordered by foreign net")
}

func runFlow(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	date := a.collector.ReferenceDate()
	if flowDate != "" {
		date, err = time.ParseInLocation("2006-01-02", flowDate, a.location)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", flowDate, err)
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	set := a.collector.Fetch(ctx, date)

	if flowCode != "" {
		flow, ok := set.Get(flowCode)
		if !ok {
			PrintWarning(fmt.Sprintf("%s: no institutional data on %s", flowCode, date.Format("2006-01-02")))
			return nil
		}
		if jsonOutput {
			return PrintJSON(flow)
		}
		PrintHeader("Institutional flow "+flow.Code, "Trade date: "+date.Format("2006-01-02"))
		PrintKeyValue("Market", flow.Market.Label(), 14)
		PrintKeyValue("外資 foreign", FormatLots(flow.ForeignNet), 14)
		PrintKeyValue("投信 trust", FormatLots(flow.TrustNet), 14)
		PrintKeyValue("自營 hedge", FormatLots(flow.DealerHedgeNet), 14)
		return nil
	}

	all := set.All()
	if jsonOutput {
		return PrintJSON(all)
	}

	counts := set.CountByMarket()
	PrintHeader("Institutional flow", "Trade date: "+date.Format("2006-01-02"))
	PrintKeyValue("上市 listed", strconv.Itoa(counts[contracts.MarketListed]), 12)
	PrintKeyValue("上櫃 OTC", strconv.Itoa(counts[contracts.MarketOTC]), 12)

	if len(all) == 0 {
		PrintWarning("no institutional data for this date (not published yet or a holiday)")
		return nil
	}

	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ForeignNet > all[j].ForeignNet
	})
	if flowTop > 0 && len(all) > flowTop {
		all = all[:flowTop]
	}

	fmt.Println()
	widths := []int{6, 6, 10, 10, 10}
	PrintTableHeader([]string{"Code", "Market", "Foreign", "Trust", "Hedge"}, widths)
	for _, f := range all {
		PrintTableRow([]string{
			f.Code,
			f.Market.Label(),
			FormatLots(f.ForeignNet),
			FormatLots(f.TrustNet),
			FormatLots(f.DealerHedgeNet),
		}, widths)
	}
	fmt.Println()
	return nil
}
