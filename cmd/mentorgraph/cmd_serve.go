package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mentorgraph/mentorgraph/internal/config"
	"github.com/mentorgraph/mentorgraph/internal/embed"
	"github.com/mentorgraph/mentorgraph/internal/extract"
	"github.com/mentorgraph/mentorgraph/internal/graph"
	"github.com/mentorgraph/mentorgraph/internal/logging"
	"github.com/mentorgraph/mentorgraph/internal/matching"
	"github.com/mentorgraph/mentorgraph/internal/privacy"
	"github.com/mentorgraph/mentorgraph/internal/server"
	"github.com/mentorgraph/mentorgraph/internal/service"
	"github.com/mentorgraph/mentorgraph/internal/vecstore"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the matching API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			addr, _ := cmd.Flags().GetString("addr")

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("addr", "", "Listen address (overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	log := logging.New(cfg.Logging.Level, os.Stderr)

	embedder, err := buildEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}

	graphs := graph.NewStore()
	vectors := vecstore.New(embedder.Dimensions())

	matchCfg := matching.DefaultConfig()
	matchCfg.Epsilon = cfg.Matching.Epsilon
	if cfg.Matching.SearchK > 0 {
		matchCfg.SearchK = cfg.Matching.SearchK
	}
	engine := matching.NewEngine(vectors, embedder, matchCfg)

	svc := service.New(graphs, vectors, embedder, extract.NewKeywordExtractor(),
		engine, privacy.NewEngine(cfg.Privacy.Epsilon), log,
		service.Options{SessionSnapshots: cfg.Vectors.SessionSnapshots})

	srv := server.New(svc, log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening",
			"addr", cfg.Server.Addr,
			"provider", cfg.Embedding.Provider,
			"dimensions", embedder.Dimensions(),
			"epsilon", cfg.Matching.Epsilon)
		if err := srv.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// buildEmbedder selects the encoder backend and applies the per-call timeout.
func buildEmbedder(cfg config.EmbeddingConfig) (embed.Embedder, error) {
	var (
		embedder embed.Embedder
		err      error
	)
	switch cfg.Provider {
	case "mock", "":
		embedder = embed.NewDeterministic(cfg.Dimensions)
	case "openai":
		embedder, err = embed.NewOpenAI(embed.OpenAIConfig{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	return embed.WithTimeout(embedder, cfg.Timeout), nil
}
