// Command appenderdemo wires a Sender end to end against an S3-compatible
// object-storage bucket and demonstrates the full pipeline: config
// loading, credential resolution, the slog adapter, and graceful shutdown.
//
// # Usage
//
//	appenderdemo --endpoint https://oss-cn-hangzhou.aliyuncs.com --bucket my-logs
//
// # Configuration
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (LOGBACK_OSS_*)
//   - Config file (--config)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	appender "github.com/kzy77/logback-oss-appender"
	"github.com/kzy77/logback-oss-appender/adapter"
	"github.com/kzy77/logback-oss-appender/internal/config"
	"github.com/kzy77/logback-oss-appender/internal/credentials"
	"github.com/kzy77/logback-oss-appender/internal/ossuploader"
)

const appVersion = "0.1.0"

func main() {
	var (
		configFile  = flag.String("config", "", "Path to config file")
		endpoint    = flag.String("endpoint", "", "Object-storage endpoint URL")
		bucket      = flag.String("bucket", "", "Target bucket")
		appName     = flag.String("app-name", "", "Application name embedded in object keys")
		accessKeyID = flag.String("access-key-id", "", "Static access key ID")
		accessKey   = flag.String("access-key-secret", "", "Static access key secret")
		debug       = flag.Bool("debug", false, "Enable debug logging")
		version     = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *version {
		fmt.Println("appenderdemo", appVersion)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	fileCfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.LoadFromFile(*configFile)
		if err != nil {
			bootLogger.Error("failed to load config file", "error", err)
			os.Exit(1)
		}
		fileCfg = loaded
	}
	fileCfg.ApplyEnvOverrides()

	if *endpoint != "" {
		fileCfg.Storage.Endpoint = *endpoint
	}
	if *bucket != "" {
		fileCfg.Storage.Bucket = *bucket
	}
	if *appName != "" {
		fileCfg.App.Name = *appName
	}
	if *accessKeyID != "" {
		fileCfg.Storage.AccessKeyID = *accessKeyID
	}
	if *accessKey != "" {
		fileCfg.Storage.AccessKeySecret = *accessKey
	}

	if err := fileCfg.Validate(); err != nil {
		bootLogger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	credProvider, err := credentials.NewProvider(credentials.Config{
		AccessKeyID:     fileCfg.Storage.AccessKeyID,
		AccessKeySecret: fileCfg.Storage.AccessKeySecret,
		OnePassword: credentials.OnePasswordConfig{
			Host:     fileCfg.OnePassword.Host,
			Token:    fileCfg.OnePassword.Token,
			VaultID:  fileCfg.OnePassword.VaultID,
			ItemName: fileCfg.OnePassword.ItemName,
		},
	})
	if err != nil {
		bootLogger.Error("failed to build credentials provider", "error", err)
		os.Exit(1)
	}
	accessKeyIDResolved, accessKeySecretResolved, err := credProvider.Credentials(ctx)
	if err != nil {
		bootLogger.Error("failed to resolve credentials", "error", err)
		os.Exit(1)
	}

	uploader, err := ossuploader.New(ctx, ossuploader.Config{
		Endpoint:        fileCfg.Storage.Endpoint,
		Region:          fileCfg.Storage.Region,
		Bucket:          fileCfg.Storage.Bucket,
		AccessKeyID:     accessKeyIDResolved,
		AccessKeySecret: accessKeySecretResolved,
		UsePathStyle:    fileCfg.Storage.UsePathStyle,
	})
	if err != nil {
		bootLogger.Error("failed to build object-storage uploader", "error", err)
		os.Exit(1)
	}

	senderCfg := appender.DefaultConfig()
	senderCfg.Endpoint = fileCfg.Storage.Endpoint
	senderCfg.Bucket = fileCfg.Storage.Bucket
	senderCfg.AppName = fileCfg.App.Name
	senderCfg.ObjectKeyPrefix = fileCfg.App.ObjectKeyPrefix
	senderCfg.MaxQueueSize = fileCfg.Queue.MaxQueueSize
	senderCfg.OfferTimeout = fileCfg.Queue.OfferTimeout
	senderCfg.DropWhenQueueFull = fileCfg.Queue.DropWhenQueueFull
	senderCfg.MaxBatchCount = fileCfg.Batch.MaxBatchCount
	senderCfg.MaxBatchBytes = fileCfg.Batch.MaxBatchBytes
	senderCfg.FlushInterval = fileCfg.Batch.FlushInterval
	senderCfg.PollInterval = fileCfg.Batch.PollInterval
	senderCfg.Gzip = fileCfg.Batch.Gzip
	senderCfg.ContentType = fileCfg.Batch.ContentType
	senderCfg.MaxRetries = fileCfg.Retry.MaxRetries
	senderCfg.InitialBackoff = fileCfg.Retry.InitialBackoff
	senderCfg.BackoffMultiplier = fileCfg.Retry.BackoffMultiplier
	senderCfg.ShutdownTimeout = fileCfg.Lifecycle.ShutdownTimeout
	senderCfg.RegisterShutdownHook = fileCfg.Lifecycle.RegisterShutdownHook
	senderCfg.UploadRateLimit = fileCfg.RateLimit.UploadRateLimit

	sender, err := appender.New(senderCfg, uploader, bootLogger)
	if err != nil {
		bootLogger.Error("failed to create sender", "error", err)
		os.Exit(1)
	}
	sender.Start()

	handler := adapter.New(sender, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	slog.Info("appenderdemo started", "bucket", fileCfg.Storage.Bucket, "app", fileCfg.App.Name)
	for i := 0; i < 5; i++ {
		slog.Info("sample log line", "sequence", i)
		time.Sleep(50 * time.Millisecond)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		bootLogger.Info("received shutdown signal", "signal", sig)
	case <-time.After(time.Second):
		bootLogger.Info("demo run complete, shutting down")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), fileCfg.Lifecycle.ShutdownTimeout+time.Second)
	defer cancel()
	if err := sender.Stop(stopCtx); err != nil {
		bootLogger.Error("sender stop failed", "error", err)
		os.Exit(1)
	}

	bootLogger.Info("appenderdemo shutdown complete")
}
