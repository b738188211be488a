package dynapatch

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// Environment variables read by PlatformContext.
const (
	EnvConfig     = "DYNAPATCH_CONFIG"      // Inline JSON deployment configuration
	EnvConfigFile = "DYNAPATCH_CONFIG_FILE" // Path to a YAML or JSON deployment configuration
	EnvTableName  = "DYNAPATCH_TABLE_NAME"
	EnvPrimaryKey = "DYNAPATCH_PRIMARY_KEY"
	EnvRegion     = "DYNAPATCH_REGION"
	EnvEndpoint   = "DYNAPATCH_ENDPOINT" // Overrides the DynamoDB endpoint, e.g. DynamoDB Local
)

// HandlerContext supplies the deployment configuration and the store access
// configuration of an invocation.
type HandlerContext interface {
	// RecordLocation returns the deployment configuration.
	RecordLocation(ctx context.Context) (RecordLocation, error)
	// SDKConfig returns the AWS configuration used to reach the store.
	// Implementations return [ErrMissingBackendConfig] when none is available.
	SDKConfig(ctx context.Context) (aws.Config, error)
}

// StaticContext is a HandlerContext backed by values supplied directly.
type StaticContext struct {
	Location RecordLocation
	Config   *aws.Config // Nil when the host supplies no store access
}

// RecordLocation implements HandlerContext.
func (s StaticContext) RecordLocation(context.Context) (RecordLocation, error) {
	return s.Location, s.Location.Validate()
}

// SDKConfig implements HandlerContext.
func (s StaticContext) SDKConfig(context.Context) (aws.Config, error) {
	if s.Config == nil {
		return aws.Config{}, ErrMissingBackendConfig
	}
	return *s.Config, nil
}

// PlatformContext is a HandlerContext resolved from the process environment
// and the AWS default credential chain.
type PlatformContext struct {
	Getenv      func(string) string               // Defaults to os.Getenv
	LoadOptions []func(*config.LoadOptions) error // Extra options for config.LoadDefaultConfig
}

func (p PlatformContext) getenv(key string) string {
	if p.Getenv == nil {
		return os.Getenv(key)
	}
	return p.Getenv(key)
}

// RecordLocation implements HandlerContext. The configuration is taken from the
// first of DYNAPATCH_CONFIG, DYNAPATCH_CONFIG_FILE, or the pair
// DYNAPATCH_TABLE_NAME and DYNAPATCH_PRIMARY_KEY.
func (p PlatformContext) RecordLocation(context.Context) (RecordLocation, error) {
	if raw := p.getenv(EnvConfig); raw != "" {
		return ParseRecordLocation([]byte(raw))
	}
	if path := p.getenv(EnvConfigFile); path != "" {
		return LoadRecordLocationFile(path)
	}
	loc := NewRecordLocation(p.getenv(EnvTableName), p.getenv(EnvPrimaryKey))
	return loc, loc.Validate()
}

// SDKConfig implements HandlerContext by loading the default AWS configuration.
// A configuration without a region cannot reach the store and yields
// [ErrMissingBackendConfig].
func (p PlatformContext) SDKConfig(ctx context.Context) (aws.Config, error) {
	opts := append([]func(*config.LoadOptions) error{}, p.LoadOptions...)
	if region := p.getenv(EnvRegion); region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, newError(CodeNoSDKConfig, "failed to load aws sdk config", err)
	}

	if cfg.Region == "" {
		return aws.Config{}, ErrMissingBackendConfig
	}

	if endpoint := p.getenv(EnvEndpoint); endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}

	return cfg, nil
}

var (
	_ HandlerContext = StaticContext{}
	_ HandlerContext = PlatformContext{}
)
