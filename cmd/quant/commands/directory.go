package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/twstrategy/internal/contracts"
)

// directoryCmd represents the directory command
var directoryCmd = &cobra.Command{
	Use:   "directory",
	Short: "종목 디렉토리 조회",
	Long: `Build the security directory from the ISIN listing pages.

Example:
  go run ./cmd/quant directory
  go run ./cmd/quant directory --search 台積`,
	RunE: runDirectory,
}

var (
	directorySearch string
	directoryLimit  int
)

func init() {
	rootCmd.AddCommand(directoryCmd)

	directoryCmd.Flags().StringVar(&directorySearch, "search", "", "code prefix or name fragment")
	directoryCmd.Flags().IntVar(&directoryLimit, "limit", 20, "max search results")
}

func runDirectory(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	start := time.Now()
	dir := a.directory.Build(ctx)

	var results []contracts.SecurityRecord
	if directorySearch != "" {
		results = dir.Search(directorySearch, directoryLimit)
	}

	if jsonOutput {
		if directorySearch != "" {
			return PrintJSON(results)
		}
		return PrintJSON(dir.SearchList())
	}

	counts := dir.CountByMarket()

	PrintHeader("Security directory", "")
	PrintKeyValue("上市 listed", strconv.Itoa(counts[contracts.MarketListed]), 12)
	PrintKeyValue("上櫃 OTC", strconv.Itoa(counts[contracts.MarketOTC]), 12)
	PrintKeyValue("Total", strconv.Itoa(dir.Len()), 12)

	if dir.Len() == 0 {
		PrintWarning("directory is empty: both listing pages failed")
	}

	if directorySearch != "" {
		fmt.Println()
		widths := []int{6, 20, 6}
		PrintTableHeader([]string{"Code", "Name", "Market"}, widths)
		for _, rec := range results {
			PrintTableRow([]string{rec.Code, rec.Name, rec.Market.Label()}, widths)
		}
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("Built in %.2fs", time.Since(start).Seconds()))
	return nil
}
