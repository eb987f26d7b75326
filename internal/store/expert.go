package store

import (
	"context"
	"fmt"
	"time"

	"ecoreport/internal/utils"
	"ecoreport/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	expertTableName      = "ecoreport.expert_profiles"
	expertPkeyConstraint = "expert_profiles_pkey"
)

var expertColumns = utils.StructTagValues(types.ExpertProfile{})

type ExpertRepository struct {
	pool *pgxpool.Pool
}

func NewExpertRepository(pool *pgxpool.Pool) *ExpertRepository {
	return &ExpertRepository{pool: pool}
}

// CreateExpert stores the profile and promotes the owning account to EXPERT
// in a single transaction.
func (r *ExpertRepository) CreateExpert(ctx context.Context, expert *types.ExpertProfile) error {
	expert.CreatedAt = time.Now()
	if expert.Credentials == nil {
		expert.Credentials = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin tx for expert create: %w", err)
	}
	defer rollback(ctx, tx)

	insertQuery, insertArgs, err := psql().
		Insert(expertTableName).
		Columns(expertColumns...).
		Values(
			expert.AccountID,
			expert.Title,
			expert.Specialties,
			expert.Credentials,
			expert.Bio,
			expert.ConsultationFee,
			expert.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate expert insert: %w", err)
	}

	_, err = tx.Exec(ctx, insertQuery, insertArgs...)
	if err != nil {
		switch {
		case isUniqueViolation(err, expertPkeyConstraint):
			return types.ErrExpertExists
		case isForeignKeyViolation(err):
			return types.ErrAccountNotFound
		}
		return fmt.Errorf("failed to insert expert profile: %w", err)
	}

	promoteQuery, promoteArgs, err := psql().
		Update(accountTableName).
		Set("role", types.RoleExpert).
		Set("updated_at", expert.CreatedAt).
		Where(sq.Eq{"id": expert.AccountID}).
		Where(sq.NotEq{"role": types.RoleAdmin}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate promote query: %w", err)
	}

	_, err = tx.Exec(ctx, promoteQuery, promoteArgs...)
	if err != nil {
		return fmt.Errorf("failed to promote account to expert: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit expert create tx: %w", err)
	}

	return nil
}
