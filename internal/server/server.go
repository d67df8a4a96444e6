package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillscout/skillscout/config"
	"github.com/skillscout/skillscout/internal/agent"
	"github.com/skillscout/skillscout/profiles"
	"github.com/skillscout/skillscout/provider"
	"github.com/skillscout/skillscout/session"
	"github.com/skillscout/skillscout/tools/web_fetch"
	"github.com/skillscout/skillscout/tools/web_search"
)

// Run wires the service and starts the HTTP listener.
func Run(cfg *config.Config) error {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	// Unified HTTP error handler with structured JSON and logging
	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx := context.Background()
	sessionLogger := log.New(log.Writer(), "[SESSION] ", log.LstdFlags)
	st, err := session.NewStore(ctx, session.StoreType(cfg.Storage.Backend), cfg.Storage.Postgres.DSN(), sessionLogger)
	if err != nil {
		return err
	}

	llm, err := provider.NewProvider(cfg.LLM)
	if err != nil {
		return err
	}

	searcher, err := web_search.NewSearcher(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey, cfg.Search.BaseURL, cfg.Search.Timeout)
	if err != nil {
		return err
	}
	var extractor web_search.Extractor
	switch cfg.Search.Extractor {
	case "webfetch":
		extractor, err = web_fetch.NewFetcher(web_fetch.ChromedpFetcherType, cfg.Search.Timeout, 0)
	default:
		extractor, err = web_search.NewExtractor(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey, cfg.Search.BaseURL, cfg.Search.Timeout)
	}
	if err != nil {
		return err
	}

	orchLogger := log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	orch := agent.NewOrchestrator(
		st,
		agent.NewGuardrail(llm),
		agent.NewGatherer(llm),
		agent.NewPlanner(llm),
		agent.NewResearch(searcher, extractor, cfg.Search.MaxResults, nil),
		agent.NewSynthesizer(llm),
		agent.NewWriter(llm),
		agent.NewReviewer(llm),
		orchLogger,
		cfg.General.MaxTurns,
	)

	ch := &ChatHandler{
		Registry: profiles.NewRegistry(cfg.Profiles),
		Pipeline: orch,
		Logger:   baseLogger,
	}
	ch.Register(e)

	addr := cfg.Server.Address
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}
