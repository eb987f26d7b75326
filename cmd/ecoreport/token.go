package main

import (
	"fmt"

	"github.com/k0kubun/pp/v3"
	"github.com/urfave/cli/v2"
)

var tokenCommand = &cli.Command{
	Name:      "token",
	Usage:     "Verify a session token and print its claims",
	ArgsUsage: "<token>",
	Action: func(c *cli.Context) error {
		raw := c.Args().First()
		if raw == "" {
			return fmt.Errorf("token argument is required")
		}

		cfg, err := loadConfig(c.String("env-prefix"), true)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		tokens, err := newIssuer(cfg)
		if err != nil {
			return err
		}

		claims, err := tokens.VerifyToken(raw)
		if err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}

		pp.Println(claims)

		return nil
	},
}
