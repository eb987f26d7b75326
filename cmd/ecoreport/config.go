package main

import (
	"context"
	"fmt"
	"time"

	"ecoreport/internal/auth"
	"ecoreport/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

// loadConfig reads the environment. Unprefixed names are accepted as a
// fallback, so DATABASE_URL works as well as ECOREPORT_DATABASE_URL.
func loadConfig(prefix string, inMemory bool) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" && !inMemory {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.JWTSecret == "" {
		return nil, fmt.Errorf("set JWT_SECRET")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	if c.UploadURLTTLMin == 0 {
		c.UploadURLTTLMin = 15
	}

	return c, nil
}

func newIssuer(c *types.Config) (*auth.Issuer, error) {
	issuer, err := auth.NewIssuer([]byte(c.JWTSecret), c.JWTKeyID, c.JWTIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	return issuer, nil
}

func uploadURLTTL(c *types.Config) time.Duration {
	return time.Duration(c.UploadURLTTLMin) * time.Minute
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
