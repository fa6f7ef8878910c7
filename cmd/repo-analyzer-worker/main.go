package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rohankatakam/repoanalyzer/internal/analyzer"
	"github.com/rohankatakam/repoanalyzer/internal/config"
	"github.com/rohankatakam/repoanalyzer/internal/jobstore"
	"github.com/rohankatakam/repoanalyzer/internal/logging"
	"github.com/rohankatakam/repoanalyzer/internal/objectstore"
	"github.com/rohankatakam/repoanalyzer/internal/queue"
	"github.com/rohankatakam/repoanalyzer/internal/worker"
	"github.com/rohankatakam/repoanalyzer/internal/workspace"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	cfgFile string
	once    bool
	banner  *logrus.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "repo-analyzer-worker",
	Short:   "Background worker that analyzes repositories into dependency graphs",
	Version: Version,
	RunE:    runWorker,
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.Flags().BoolVar(&once, "once", false, "process a single job and exit instead of looping")

	rootCmd.SetVersionTemplate(`repo-analyzer-worker {{.Version}}
Build time: ` + BuildTime + `
Git commit: ` + GitCommit + `
`)

	banner = logrus.New()
	banner.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

func runWorker(cmd *cobra.Command, args []string) error {
	banner.Info("repo-analyzer-worker starting")

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logging.Initialize(logging.DefaultConfig(false)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	logger := slog.Default().With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	manifestPath := cfg.Worker.WorkspaceBaseDir + "/manifest.db"
	manifest, err := workspace.OpenManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to open workspace manifest: %w", err)
	}
	defer manifest.Close()

	if err := manifest.Sweep(logger); err != nil {
		logger.Warn("workspace sweep failed", "error", err)
	}

	jobs, err := jobstore.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to job store: %w", err)
	}
	defer jobs.Close()

	q, err := queue.New(ctx, cfg.Queue.BrokerURL, cfg.Queue.Name, cfg.Queue.PopTimeout)
	if err != nil {
		return fmt.Errorf("failed to connect to queue: %w", err)
	}
	defer q.Close()

	objects, err := objectstore.New(ctx, objectstore.Config{
		Region:      cfg.ObjectStore.Region,
		AccessKeyID: cfg.ObjectStore.AccessKeyID,
		SecretKey:   cfg.ObjectStore.SecretKey,
		Bucket:      cfg.ObjectStore.Bucket,
		Endpoint:    cfg.ObjectStore.Endpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to configure object store: %w", err)
	}

	w := worker.New(q, jobs, objects, analyzer.New(), manifest, cfg.Worker.WorkspaceBaseDir)

	banner.Info("repo-analyzer-worker ready")

	if once {
		ok, err := w.RunOnce(ctx)
		if err != nil {
			return fmt.Errorf("job processing failed: %w", err)
		}
		if !ok {
			banner.Info("no job available")
		}
		return nil
	}

	return w.Run(ctx)
}
