package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ecoreport/internal/utils"
	"ecoreport/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	accountTableName       = "ecoreport.accounts"
	accountEmailConstraint = "accounts_email_key"
)

var accountColumns = utils.StructTagValues(types.Account{})

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

func (r *AccountRepository) Account(ctx context.Context, accountID string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"id": accountID})
}

func (r *AccountRepository) AccountByEmail(ctx context.Context, email string) (*types.Account, error) {
	return r.accountWhere(ctx, sq.Eq{"email": normalizeEmail(email)})
}

func (r *AccountRepository) accountWhere(ctx context.Context, pred sq.Eq) (*types.Account, error) {
	query, args, err := psql().
		Select(accountColumns...).
		From(accountTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account query: %w", err)
	}

	var account types.Account
	err = pgxscan.Get(ctx, r.pool, &account, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to fetch account: %w", err)
	}

	return &account, nil
}

// CreateAccount inserts account. The unique index on email is the only guard
// against concurrent duplicate signups; a violation returns ErrEmailTaken.
func (r *AccountRepository) CreateAccount(ctx context.Context, account *types.Account) error {
	now := time.Now()
	account.ID = utils.NanoID()
	account.Email = normalizeEmail(account.Email)
	account.CreatedAt = now
	account.UpdatedAt = now
	if account.Skills == nil {
		account.Skills = []string{}
	}
	if account.Interests == nil {
		account.Interests = []string{}
	}

	query, args, err := psql().
		Insert(accountTableName).
		SetMap(utils.StructToMap(account)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create account query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err, accountEmailConstraint) {
			return types.ErrEmailTaken
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, accountID string, update *types.ProfileUpdate) (*types.Account, error) {
	if update.Empty() {
		return r.Account(ctx, accountID)
	}

	query, args, err := psql().
		Update(accountTableName).
		SetMap(profileUpdateMap(update, time.Now())).
		Where(sq.Eq{"id": accountID}).
		Suffix("RETURNING " + strings.Join(accountColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update profile query: %w", err)
	}

	var account types.Account
	err = pgxscan.Get(ctx, r.pool, &account, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return &account, nil
}

func profileUpdateMap(update *types.ProfileUpdate, now time.Time) map[string]any {
	set := map[string]any{"updated_at": now}

	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Bio != nil {
		set["bio"] = update.Bio
	}
	if update.Location != nil {
		set["location"] = update.Location
	}
	if update.Skills != nil {
		set["skills"] = update.Skills
	}
	if update.Interests != nil {
		set["interests"] = update.Interests
	}
	if update.Expertise != nil {
		set["expertise"] = update.Expertise
	}
	if update.Image != nil {
		set["image"] = update.Image
	}
	if update.SocialLinks != nil {
		set["social_links"] = update.SocialLinks
	}

	return set
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
