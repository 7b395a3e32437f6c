// Package app wires configuration into a runnable research pipeline.
package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/finbrief/finbrief/finbrief/agent"
	"github.com/finbrief/finbrief/finbrief/agent/adapters"
	ports "github.com/finbrief/finbrief/finbrief/agent/ports"
	"github.com/finbrief/finbrief/finbrief/archive"
	"github.com/finbrief/finbrief/finbrief/capabilities"
	"github.com/finbrief/finbrief/finbrief/config"
	"github.com/finbrief/finbrief/finbrief/fmp"
	"github.com/finbrief/finbrief/finbrief/websearch"
)

// NewRunner creates a fully wired runner from configuration.
func NewRunner(cfg *config.Config, logger zerolog.Logger) (*agent.Runner, error) {
	fmpClient := fmp.NewClient(fmp.Config{
		APIKey:  cfg.FMP.APIKey,
		BaseURL: cfg.FMP.BaseURL,
		Timeout: cfg.FMP.Timeout,
	}, logger)

	searchClient := websearch.NewClient(websearch.Config{
		APIKey:     cfg.Search.APIKey,
		BaseURL:    cfg.Search.BaseURL,
		MaxResults: cfg.Search.MaxResults,
		Timeout:    cfg.Search.Timeout,
	}, logger)

	registry, err := capabilities.NewRegistry(
		capabilities.NewProfileCapability(fmpClient),
		capabilities.NewRatiosCapability(fmpClient),
		capabilities.NewStatementsCapability(fmpClient),
		capabilities.NewSegmentationCapability(fmpClient),
		capabilities.NewEstimatesCapability(fmpClient),
		capabilities.NewNewsCapability(fmpClient),
		capabilities.NewEarningsSummaryCapability(searchClient),
		capabilities.NewOwnershipCapability(searchClient),
	)
	if err != nil {
		return nil, fmt.Errorf("build capability registry: %w", err)
	}

	generator := adapters.NewOpenAIGenerator(adapters.OpenAIConfig{
		APIKey:  cfg.Generation.APIKey,
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: cfg.Generation.Timeout,
	}, logger)

	limiter := ports.RateLimiter(adapters.NopLimiter{})
	if cfg.Generation.RateLimitCapacity > 0 {
		limiter = adapters.NewTokenBucket(cfg.Generation.RateLimitCapacity, cfg.Generation.RateLimitRefillRate)
	}

	tracer := ports.Tracer(adapters.NopTracer{})
	if cfg.Research.EnableTracing {
		tracer = adapters.NewZerologTracer(logger)
	}

	stages := agent.NewStages(generator, registry, limiter)
	dispatcher := agent.NewDispatcher(registry, cfg.Research.InvocationTimeout)
	graph := agent.NewGraph(stages, dispatcher, tracer)

	openArchive := func(ticker string) (agent.RunArchive, error) {
		return archive.Open(ticker, archive.Config{
			Dir:           cfg.Archive.Dir,
			FlushInterval: cfg.Archive.FlushInterval,
		}, logger)
	}

	return agent.NewRunner(graph, openArchive, logger), nil
}
