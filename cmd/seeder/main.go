package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/tickerdex"
	"github.com/poiesic/tickerdex/core"
	"github.com/poiesic/tickerdex/ingestion"
)

// listing is symbol, name, exchange, currency, country, type.
type listing [6]string

var listings = []listing{
	{"AAPL", "Apple Inc.", "NASDAQ", "USD", "US", "Common Stock"},
	{"MSFT", "Microsoft Corporation", "NASDAQ", "USD", "US", "Common Stock"},
	{"GOOGL", "Alphabet Inc. Class A", "NASDAQ", "USD", "US", "Common Stock"},
	{"GOOG", "Alphabet Inc. Class C", "NASDAQ", "USD", "US", "Common Stock"},
	{"AMZN", "Amazon.com, Inc.", "NASDAQ", "USD", "US", "Common Stock"},
	{"META", "Meta Platforms, Inc.", "NASDAQ", "USD", "US", "Common Stock"},
	{"NVDA", "NVIDIA Corporation", "NASDAQ", "USD", "US", "Common Stock"},
	{"TSLA", "Tesla, Inc.", "NASDAQ", "USD", "US", "Common Stock"},
	{"AMD", "Advanced Micro Devices, Inc.", "NASDAQ", "USD", "US", "Common Stock"},
	{"INTC", "Intel Corporation", "NASDAQ", "USD", "US", "Common Stock"},
	{"QQQ", "Invesco QQQ Trust", "NASDAQ", "USD", "US", "ETF"},
	{"IBM", "International Business Machines Corporation", "NYSE", "USD", "US", "Common Stock"},
	{"JPM", "JPMorgan Chase & Co.", "NYSE", "USD", "US", "Common Stock"},
	{"BAC", "Bank of America Corporation", "NYSE", "USD", "US", "Common Stock"},
	{"KO", "The Coca-Cola Company", "NYSE", "USD", "US", "Common Stock"},
	{"DIS", "The Walt Disney Company", "NYSE", "USD", "US", "Common Stock"},
	{"BRK.A", "Berkshire Hathaway Inc. Class A", "NYSE", "USD", "US", "Common Stock"},
	{"BRK.B", "Berkshire Hathaway Inc. Class B", "NYSE", "USD", "US", "Common Stock"},
	{"SPY", "SPDR S&P 500 ETF Trust", "NYSE ARCA", "USD", "US", "ETF"},
	{"VOD", "Vodafone Group Plc", "LSE", "GBP", "GB", "Common Stock"},
	{"BP.", "BP p.l.c.", "LSE", "GBP", "GB", "Common Stock"},
	{"HSBA", "HSBC Holdings plc", "LSE", "GBP", "GB", "Common Stock"},
	{"AZN", "AstraZeneca PLC", "LSE", "GBP", "GB", "Common Stock"},
	{"ULVR", "Unilever PLC", "LSE", "GBP", "GB", "Common Stock"},
	{"SAP", "SAP SE", "XETRA", "EUR", "DE", "Common Stock"},
	{"SIE", "Siemens Aktiengesellschaft", "XETRA", "EUR", "DE", "Common Stock"},
	{"VOW3", "Volkswagen AG Preference Shares", "XETRA", "EUR", "DE", "Preferred Stock"},
	{"MC", "LVMH Moet Hennessy Louis Vuitton SE", "EURONEXT PARIS", "EUR", "FR", "Common Stock"},
	{"OR", "L'Oreal S.A.", "EURONEXT PARIS", "EUR", "FR", "Common Stock"},
	{"ASML", "ASML Holding N.V.", "EURONEXT AMSTERDAM", "EUR", "NL", "Common Stock"},
	{"NESN", "Nestle S.A.", "SIX", "CHF", "CH", "Common Stock"},
	{"7203", "Toyota Motor Corporation", "TSE", "JPY", "JP", "Common Stock"},
	{"6758", "Sony Group Corporation", "TSE", "JPY", "JP", "Common Stock"},
	{"0700", "Tencent Holdings Limited", "HKEX", "HKD", "HK", "Common Stock"},
	{"9988", "Alibaba Group Holding Limited", "HKEX", "HKD", "HK", "Common Stock"},
	{"SHOP", "Shopify Inc.", "TSX", "CAD", "CA", "Common Stock"},
	{"RY", "Royal Bank of Canada", "TSX", "CAD", "CA", "Common Stock"},
	{"BHP", "BHP Group Limited", "ASX", "AUD", "AU", "Common Stock"},
	{"CBA", "Commonwealth Bank of Australia", "ASX", "AUD", "AU", "Common Stock"},
	{"RELIANCE", "Reliance Industries Limited", "NSE", "INR", "IN", "Common Stock"},
}

var (
	seedFileName = flag.String("src", "", "CSV file of seed data (defaults to a built-in demo catalog)")
	dbPath       = flag.String("db", "./catalog_db", "path to BadgerDB database directory")
	resume       = flag.Bool("resume", false, "skip rows committed by a previous run of -src")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// demoSecurities expands the built-in listings.
func demoSecurities() []*core.Security {
	securities := make([]*core.Security, 0, len(listings))
	for _, l := range listings {
		securities = append(securities, &core.Security{
			Symbol:   l[0],
			Name:     l[1],
			Exchange: l[2],
			Currency: l[3],
			Country:  l[4],
			Type:     l[5],
		})
	}
	return securities
}

// openSource returns the CSV source named by -src, or the demo catalog.
// The returned close function is never nil.
func openSource() (ingestion.Source, func() error, error) {
	if *seedFileName == "" {
		return ingestion.NewSliceSource("demo", demoSecurities()...), func() error { return nil }, nil
	}

	path, err := filepath.Abs(*seedFileName)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	source, err := ingestion.NewCSVSource(path, f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return source, f.Close, nil
}

func main() {
	db, err := tickerdex.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ingester, err := db.NewIngestionPipeline(ingestion.WithBatchSize(8))
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	source, closeSource, err := openSource()
	if err != nil {
		panic(err)
	}
	defer closeSource()

	report, err := ingester.Run(context.Background(), source, &ingestion.RunOptions{Resume: *resume})
	if err != nil {
		panic(err)
	}

	slog.Info("seeded catalog",
		"db", *dbPath,
		"source", report.Source,
		"accepted", report.Accepted,
		"rejected", report.Rejected,
		"references", report.References,
		"elapsed", report.Elapsed)
}
