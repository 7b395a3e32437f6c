package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/finbrief/finbrief/finbrief/app"
	"github.com/finbrief/finbrief/finbrief/config"
)

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] TICKER\n\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	ticker := strings.ToUpper(flag.Arg(0))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()

	runner, err := app.NewRunner(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build pipeline")
	}

	logger.Info().Str("ticker", ticker).Msg("starting financial research run")

	result, err := runner.Run(context.Background(), ticker)
	if err != nil {
		logger.Fatal().Err(err).Msg("research run failed")
	}

	fmt.Println(result.FinalText)
	fmt.Fprintf(os.Stderr, "\nResearch complete.\n  Report log:   %s\n  Raw data:     %s\n", result.NarrativePath, result.StructuredPath)
}
