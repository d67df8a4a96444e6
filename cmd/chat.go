package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skillscout/skillscout/cache"
	"github.com/skillscout/skillscout/config"
	"github.com/skillscout/skillscout/internal/agent"
	"github.com/skillscout/skillscout/profiles"
	"github.com/skillscout/skillscout/provider"
	"github.com/skillscout/skillscout/session"
	"github.com/skillscout/skillscout/tools/web_search"
)

// chatCMD runs the research pipeline as an interactive terminal loop. It uses
// the in-memory session store so each invocation starts a fresh conversation,
// and a response cache keyed on (uid, query) so repeated questions answer
// instantly.
func chatCMD() *cobra.Command {
	var cfgPath string
	var uid string
	var chat = &cobra.Command{
		Use:   "chat",
		Short: "Interactive research chat in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			return runChatLoop(cmd.Context(), cfg, uid)
		},
	}
	chat.Flags().StringVar(&uid, "uid", "u1", "profile uid to chat as")
	chat.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return chat
}

func runChatLoop(ctx context.Context, cfg *config.Config, uid string) error {
	registry := profiles.NewRegistry(cfg.Profiles)
	profile, err := registry.Lookup(uid)
	if err != nil {
		return fmt.Errorf("uid %q: %w", uid, err)
	}

	sessionLogger := log.New(os.Stderr, "[SESSION] ", log.LstdFlags)
	st, err := session.NewStore(ctx, session.InMemoryStore, "", sessionLogger)
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
	extractor, err := web_search.NewExtractor(web_search.Provider(cfg.Search.Provider), cfg.Search.APIKey, cfg.Search.BaseURL, cfg.Search.Timeout)
	if err != nil {
		return err
	}

	responses, err := cache.New(cache.CacheType(cfg.Cache.Backend), cfg.Cache.TTL, cfg.Cache.Redis.Addr(), cfg.Cache.Redis.Pass, cfg.Cache.Redis.DB)
	if err != nil {
		return err
	}

	orchLogger := log.New(os.Stderr, "[ORCH] ", log.LstdFlags)
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

	fmt.Printf("Chatting as %s (%s). Type 'exit' or 'goodbye' to quit.\n", profile.Name, profile.UID)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			fmt.Println("Please type a question.")
			continue
		}
		lower := strings.ToLower(query)
		if lower == "exit" || lower == "goodbye" {
			fmt.Println("Goodbye!")
			return nil
		}

		key := cache.Key(profile.UID, query)
		if cached, ok, err := responses.Get(ctx, key); err != nil {
			orchLogger.Printf("cache get: %v", err)
		} else if ok {
			fmt.Println(cached)
			continue
		}

		var full strings.Builder
		for fragment := range orch.Run(ctx, query, profile) {
			fmt.Print(fragment)
			full.WriteString(fragment)
		}
		fmt.Println()

		if full.Len() > 0 {
			if err := responses.Set(ctx, key, full.String()); err != nil {
				orchLogger.Printf("cache set: %v", err)
			}
		}
	}
}
