package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/gridnfs/gridnfs/internal/logger"
	"github.com/gridnfs/gridnfs/pkg/grid"
	gridMemory "github.com/gridnfs/gridnfs/pkg/grid/memory"
	gridS3 "github.com/gridnfs/gridnfs/pkg/grid/s3"
	"github.com/gridnfs/gridnfs/pkg/identity"
	"github.com/gridnfs/gridnfs/pkg/identity/badgerdir"
)

// CreateGridClient creates a grid client based on configuration.
//
// The Type field selects the implementation; the matching type-specific
// map is decoded into the store's own configuration struct and passed to
// its constructor.
func CreateGridClient(ctx context.Context, cfg *GridConfig) (grid.Client, error) {
	switch cfg.Type {
	case "memory":
		return createMemoryGrid(cfg.Root, cfg.Memory)
	case "s3":
		return createS3Grid(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown grid store type: %q", cfg.Type)
	}
}

// createMemoryGrid creates an in-memory grid store.
func createMemoryGrid(root string, options map[string]any) (grid.Client, error) {
	type MemoryGridConfig struct {
		OwnerName     string `mapstructure:"owner_name"`
		OwnerZone     string `mapstructure:"owner_zone"`
		CapacityBytes uint64 `mapstructure:"capacity_bytes"`
	}

	var storeCfg MemoryGridConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode memory grid config: %w", err)
	}

	var opts []gridMemory.Option
	if storeCfg.OwnerName != "" {
		opts = append(opts, gridMemory.WithOwner(storeCfg.OwnerName, storeCfg.OwnerZone))
	}
	if storeCfg.CapacityBytes != 0 {
		opts = append(opts, gridMemory.WithCapacity(storeCfg.CapacityBytes))
	}

	store, err := gridMemory.NewStore(root, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory grid store: %w", err)
	}

	logger.Info("memory grid store initialized: root=%s", root)
	return store, nil
}

// createS3Grid creates an S3-backed grid store.
func createS3Grid(ctx context.Context, options map[string]any) (grid.Client, error) {
	type S3GridConfig struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		OwnerName       string `mapstructure:"owner_name"`
		OwnerZone       string `mapstructure:"owner_zone"`
		ReadOnly        bool   `mapstructure:"read_only"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	var storeCfg S3GridConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 grid config: %w", err)
	}

	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 grid store: bucket is required")
	}
	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 grid store: region is required")
	}

	var configOptions []func(*awsConfig.LoadOptions) error
	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Custom endpoint for S3-compatible storage (MinIO, Localstack, etc.)
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries
		})
	}))

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		// Path-style addressing for MinIO/Localstack compatibility
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	store, err := gridS3.NewStore(ctx, gridS3.Config{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
		OwnerName: storeCfg.OwnerName,
		OwnerZone: storeCfg.OwnerZone,
		ReadOnly:  storeCfg.ReadOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 grid store: %w", err)
	}

	logger.Info("S3 grid store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// CreateIdentityDirectory creates an identity directory based on
// configuration.
//
// The returned closer releases any persistent resources the directory
// holds; callers must invoke it on shutdown. For the static directory it
// is a no-op.
func CreateIdentityDirectory(cfg *IdentityConfig) (identity.Directory, func() error, error) {
	switch cfg.Type {
	case "static":
		logger.Info("static identity directory initialized: %d principals", len(cfg.Static))
		return identity.NewStatic(cfg.Static), func() error { return nil }, nil

	case "badger":
		type BadgerIdentityConfig struct {
			Path string `mapstructure:"path"`
		}

		var dirCfg BadgerIdentityConfig
		if err := mapstructure.Decode(cfg.Badger, &dirCfg); err != nil {
			return nil, nil, fmt.Errorf("failed to decode badger identity config: %w", err)
		}
		if dirCfg.Path == "" {
			return nil, nil, fmt.Errorf("badger identity directory: path is required")
		}

		registry, err := badgerdir.Open(dirCfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open identity registry: %w", err)
		}

		logger.Info("badger identity registry initialized: path=%s", dirCfg.Path)
		return registry, registry.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown identity directory type: %q", cfg.Type)
	}
}
