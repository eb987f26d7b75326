package seed

import (
	"context"
	"errors"
	"fmt"

	"ecoreport/internal/auth"
	"ecoreport/internal/utils"
	"ecoreport/pkg/types"

	"github.com/sirupsen/logrus"
)

type AccountStore interface {
	AccountByEmail(ctx context.Context, email string) (*types.Account, error)
	CreateAccount(ctx context.Context, account *types.Account) error
}

type ExpertStore interface {
	CreateExpert(ctx context.Context, expert *types.ExpertProfile) error
}

type expertSeed struct {
	Email       string
	Name        string
	Location    string
	Title       string
	Specialties []string
	Credentials []string
	Bio         string
	Fee         *float64
}

var demoExperts = []expertSeed{
	{
		Email:       "ava.williams+seed1@example.com",
		Name:        "Ava Williams",
		Location:    "Portland, OR",
		Title:       "Water Quality Scientist",
		Specialties: []string{"water-pollution", "wetlands"},
		Credentials: []string{"PhD Environmental Engineering"},
		Bio:         "Fifteen years monitoring river and estuary contamination.",
		Fee:         utils.Float64Ptr(80),
	},
	{
		Email:       "liam.johnson+seed2@example.com",
		Name:        "Liam Johnson",
		Location:    "Denver, CO",
		Title:       "Air Quality Analyst",
		Specialties: []string{"air-pollution", "industrial-emissions"},
		Credentials: []string{"MSc Atmospheric Science"},
		Bio:         "Works with municipalities on particulate monitoring networks.",
	},
	{
		Email:       "mia.davis+seed3@example.com",
		Name:        "Mia Davis",
		Location:    "Austin, TX",
		Title:       "Urban Forester",
		Specialties: []string{"deforestation", "wildlife"},
		Credentials: []string{"ISA Certified Arborist"},
		Bio:         "Leads canopy restoration projects in growing cities.",
		Fee:         utils.Float64Ptr(45.5),
	},
	{
		Email:       "noah.brown+seed4@example.com",
		Name:        "Noah Brown",
		Location:    "Chicago, IL",
		Title:       "Waste Management Consultant",
		Specialties: []string{"illegal-dumping", "water-pollution"},
		Credentials: []string{"Certified Hazardous Materials Manager"},
		Bio:         "Advises on cleanup and enforcement for illegal dump sites.",
	},
}

// SeedExperts creates the demo expert accounts with the given password.
// Accounts or profiles that already exist are left alone, so the command can
// be run repeatedly.
func SeedExperts(ctx context.Context, logger logrus.FieldLogger, accounts AccountStore, experts ExpertStore, password string) (int, error) {
	digest, err := auth.Hash(ctx, password)
	if err != nil {
		return 0, fmt.Errorf("failed to hash seed password: %w", err)
	}

	seeded := 0
	for _, demo := range demoExperts {
		account, err := accounts.AccountByEmail(ctx, demo.Email)
		if err != nil {
			if !errors.Is(err, types.ErrAccountNotFound) {
				return seeded, fmt.Errorf("failed to fetch seed expert %s: %w", demo.Email, err)
			}

			account = &types.Account{
				Email:        demo.Email,
				Name:         demo.Name,
				PasswordHash: digest,
				Role:         types.RoleUser,
				Location:     utils.StringPtr(demo.Location),
				Expertise:    utils.StringPtr(demo.Title),
				IsVerified:   true,
			}
			if err := accounts.CreateAccount(ctx, account); err != nil {
				return seeded, fmt.Errorf("failed to create seed expert %s: %w", demo.Email, err)
			}
		}

		err = experts.CreateExpert(ctx, &types.ExpertProfile{
			AccountID:       account.ID,
			Title:           demo.Title,
			Specialties:     demo.Specialties,
			Credentials:     demo.Credentials,
			Bio:             demo.Bio,
			ConsultationFee: demo.Fee,
		})
		if errors.Is(err, types.ErrExpertExists) {
			logger.WithField("email", demo.Email).Debug("seed expert already registered")
			continue
		}
		if err != nil {
			return seeded, fmt.Errorf("failed to register seed expert %s: %w", demo.Email, err)
		}

		logger.WithFields(logrus.Fields{
			"email":       demo.Email,
			"account_id":  account.ID,
			"specialties": demo.Specialties,
		}).Info("seeded expert")
		seeded++
	}

	return seeded, nil
}
