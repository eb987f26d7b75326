package main

import (
	"context"
	"fmt"

	"ecoreport/internal/db"
	"ecoreport/internal/seed"
	"ecoreport/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo expert accounts",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "password",
			Usage:    "Password assigned to every demo expert",
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig(c.String("env-prefix"), false)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		// Connect to database
		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		accountRepo := store.NewAccountRepository(pool)
		expertRepo := store.NewExpertRepository(pool)

		logrus.Info("Seeding experts...")
		count, err := seed.SeedExperts(ctx, logrus.StandardLogger(), accountRepo, expertRepo, c.String("password"))
		if err != nil {
			return fmt.Errorf("failed to seed experts: %w", err)
		}

		logrus.WithField("count", count).Info("Experts seeded successfully")

		return nil
	},
}
