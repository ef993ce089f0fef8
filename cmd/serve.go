package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/U-Jay-git/ResumeRise/internal/logger"
	"github.com/U-Jay-git/ResumeRise/internal/metrics"
	"github.com/U-Jay-git/ResumeRise/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matching API over HTTP",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("address", "", "listen address (default :8000)")

	viper.BindPFlag("server.address", serveCmd.Flags().Lookup("address"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting resumerise", zap.String("version", version))

	m := metrics.New()

	analyzer, cleanup, err := newAnalyzer(ctx, config, m, logger)
	if err != nil {
		logger.Fatal("loading taxonomy", zap.Error(err))
	}
	defer cleanup()

	srv, err := server.New(config.Server, analyzer, m, logger)
	if err != nil {
		logger.Fatal("creating server", zap.Error(err))
	}

	if err := srv.Run(ctx); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
	}
}
