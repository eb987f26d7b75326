package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ecoreport/internal/db"
	"ecoreport/internal/mutation"
	"ecoreport/internal/seed"
	"ecoreport/internal/server"
	"ecoreport/internal/storage"
	"ecoreport/internal/store"
	"ecoreport/internal/store/memstore"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "Start the HTTP server",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "in-memory",
			Usage: "Keep all data in process memory instead of PostgreSQL",
		},
		&cli.StringFlag{
			Name:  "seed-password",
			Usage: "With --in-memory, create the demo experts using this password",
		},
	},
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	inMemory := cCtx.Bool("in-memory")

	config, err := loadConfig(cCtx.String("env-prefix"), inMemory)
	if err != nil {
		return err
	}

	tokens, err := newIssuer(config)
	if err != nil {
		return err
	}

	var (
		accounts mutation.AccountStore
		experts  mutation.ExpertStore
		reports  mutation.ReportStore
		uploads  mutation.UploadSigner
		health   server.Pinger
	)

	if inMemory {
		mem := memstore.New()
		accounts, experts, reports, health = mem, mem, mem, mem
		uploads = &storage.LocalUploads{BaseURL: fmt.Sprintf("http://localhost:%d/uploads", config.ServerPort)}

		logger.Warn("running with the in-memory store; data is lost on shutdown")

		if password := cCtx.String("seed-password"); password != "" {
			count, err := seed.SeedExperts(ctx, logger, mem, mem, password)
			if err != nil {
				return err
			}
			logger.WithField("count", count).Info("demo experts seeded")
		}
	} else {
		awsConfig, err := loadAWSConfig(ctx)
		if err != nil {
			return err
		}

		s3Client := s3.NewFromConfig(awsConfig)

		pool, err := db.Connect(ctx, config)
		if err != nil {
			return err
		}
		defer pool.Close()

		accounts = store.NewAccountRepository(pool)
		experts = store.NewExpertRepository(pool)
		reports = store.NewReportRepository(pool)
		health = store.NewHealth(pool)
		uploads = storage.NewS3Uploads(s3Client, config.S3BucketName, uploadURLTTL(config))
	}

	exec := mutation.New(logger, accounts, experts, reports, uploads, tokens, config.ReportImpactPoints)

	srv, err := server.New(config, logger, exec, tokens, health)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Stop(shutdownCtx)
	})

	return g.Wait()
}
