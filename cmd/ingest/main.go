package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yash-quizizz/image-search/internal/config"
	"github.com/yash-quizizz/image-search/internal/dataset"
	"github.com/yash-quizizz/image-search/internal/usecase/ingest"
	"github.com/yash-quizizz/image-search/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type rootFlags struct {
	env        string
	configPath string
	dotenv     string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	cmd := &cobra.Command{
		Use:           "ingest",
		Short:         "Load image and question datasets into the vector search index",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetVersionTemplate("ingest {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&flags.env, "env", "", "config environment (default: $ENV or local)")
	cmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "explicit config file, overrides --env")
	cmd.PersistentFlags().StringVar(&flags.dotenv, "dotenv", ".env", "dotenv file loaded before the config")

	cmd.AddCommand(newRunCmd(&flags), newCreateIndexCmd(&flags))
	return cmd
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	var (
		key       string
		batchSize int
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Ingest one dataset end to end",
		Example: "  ingest run --dataset UnsplashDataset\n" +
			"  ingest run --dataset QuizizzText --chunk-size 500",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("batch-size") {
				cfg.Ingest.BatchSize = batchSize
			}
			if cmd.Flags().Changed("chunk-size") {
				cfg.Ingest.ChunkSize = chunkSize
			}

			a, err := newApp(cmd.Context(), cfg, flags.envName(), key)
			if err != nil {
				return err
			}
			defer a.close()

			_, err = a.svc.Run(cmd.Context(), key, ingest.Options{
				BatchSize: cfg.Ingest.BatchSize,
				ChunkSize: cfg.Ingest.ChunkSize,
			})
			return err
		},
	}

	cmd.Flags().StringVar(&key, "dataset", dataset.KeyUnsplash,
		fmt.Sprintf("dataset to ingest: %s or %s", dataset.KeyUnsplash, dataset.KeyQuizizz))
	cmd.Flags().IntVar(&batchSize, "batch-size", ingest.DefaultBatchSize, "items per extraction batch")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", ingest.DefaultChunkSize, "documents per bulk write")

	return cmd
}

func newCreateIndexCmd(flags *rootFlags) *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "create-index",
		Short: "Create the search index for a dataset if it does not exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, flags.envName(), "")
			if err != nil {
				return err
			}
			defer a.close()

			return a.svc.CreateIndex(cmd.Context(), key)
		},
	}

	cmd.Flags().StringVar(&key, "dataset", dataset.KeyUnsplash,
		fmt.Sprintf("dataset whose index to create: %s or %s", dataset.KeyUnsplash, dataset.KeyQuizizz))

	return cmd
}

func (f *rootFlags) envName() string {
	if f.env != "" {
		return f.env
	}
	return config.GetEnv()
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	if err := config.LoadDotEnv(flags.dotenv); err != nil {
		return config.Config{}, err
	}
	if flags.configPath != "" {
		return config.LoadFile(flags.configPath)
	}
	return config.Load(flags.envName())
}
