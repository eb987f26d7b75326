// Package mutation runs validated commands against the store and reports the
// result as an Outcome.
package mutation

import (
	"context"
	"time"

	"ecoreport/internal/auth"
	"ecoreport/pkg/types"

	"github.com/sirupsen/logrus"
)

type AccountStore interface {
	Account(ctx context.Context, accountID string) (*types.Account, error)
	AccountByEmail(ctx context.Context, email string) (*types.Account, error)
	CreateAccount(ctx context.Context, account *types.Account) error
	UpdateProfile(ctx context.Context, accountID string, update *types.ProfileUpdate) (*types.Account, error)
}

type ExpertStore interface {
	CreateExpert(ctx context.Context, expert *types.ExpertProfile) error
}

type ReportStore interface {
	CreateReport(ctx context.Context, report *types.Report, points int) (*types.ReportCreation, error)
	Reports(ctx context.Context, filter types.ReportFilter) ([]*types.Report, int, error)
}

type UploadSigner interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
}

type Executor struct {
	logger       logrus.FieldLogger
	accounts     AccountStore
	experts      ExpertStore
	reports      ReportStore
	uploads      UploadSigner
	tokens       *auth.Issuer
	reportPoints int
}

func New(
	logger logrus.FieldLogger,
	accounts AccountStore,
	experts ExpertStore,
	reports ReportStore,
	uploads UploadSigner,
	tokens *auth.Issuer,
	reportPoints int,
) *Executor {
	return &Executor{
		logger:       logger,
		accounts:     accounts,
		experts:      experts,
		reports:      reports,
		uploads:      uploads,
		tokens:       tokens,
		reportPoints: reportPoints,
	}
}

type MessageBody struct {
	Message string `json:"message"`
}

type UserBody struct {
	User *types.Account `json:"user"`
}

type ProfileBody struct {
	Message string         `json:"message"`
	User    *types.Account `json:"user"`
}

// LoginResult is the login response body. MaxAge sizes the session cookie.
type LoginResult struct {
	User   *types.Account `json:"user"`
	Token  string         `json:"token"`
	MaxAge time.Duration  `json:"-"`
}
