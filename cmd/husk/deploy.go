package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/husk-build/husk/internal/config"
	"github.com/husk-build/husk/internal/deploy"
	"github.com/husk-build/husk/internal/errors"
)

func deployCmd() *cobra.Command {
	var (
		bucket  string
		prefix  string
		region  string
		prune   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Upload a build to S3",
		Long: `Upload the production build output to an S3 bucket.

Credentials come from the default AWS chain (environment, shared
config, instance role). The target bucket is read from husk.json's
deploy section; flags override it for one-off deployments. With
--prune, objects that no longer correspond to a local file are
deleted after the upload succeeds.

Examples:
  husk deploy
  husk deploy --bucket=my-site --prefix=app
  husk deploy --prune`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(bucket, prefix, region, cmd.Flags().Changed("prune"), prune, verbose)
		},
	}

	cmd.Flags().StringVarP(&bucket, "bucket", "b", "", "S3 bucket (default from husk.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Object key prefix (default from husk.json)")
	cmd.Flags().StringVar(&region, "region", "", "AWS region (default from husk.json or environment)")
	cmd.Flags().BoolVar(&prune, "prune", false, "Delete stale objects after upload")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	return cmd
}

func runDeploy(bucket, prefix, region string, pruneSet, prune, verbose bool) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	target := cfg.Deploy
	if bucket != "" {
		target.Bucket = bucket
	}
	if prefix != "" {
		target.Prefix = prefix
	}
	if region != "" {
		target.Region = region
	}
	if pruneSet {
		target.Prune = prune
	}

	outDir := cfg.OutputPath()
	if _, err := os.Stat(outDir); err != nil {
		return errors.New("E404").
			WithDetail("directory: " + outDir).
			WithSuggestion("Run `husk build` first")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	deployer, err := deploy.NewFromEnv(ctx, target, newLogger(verbose))
	if err != nil {
		return err
	}

	fmt.Printf("  Deploying %s to s3://%s/%s\n", cfg.Build.Output, target.Bucket, target.Prefix)
	fmt.Println()

	result, err := deployer.Deploy(ctx, outDir)
	if err != nil {
		return err
	}

	success("Uploaded %d objects (%s) in %s", len(result.Uploaded),
		formatBytes(result.Bytes), result.Duration.Round(time.Millisecond))
	if len(result.Deleted) > 0 {
		info("Pruned %d stale objects", len(result.Deleted))
	}

	return nil
}
