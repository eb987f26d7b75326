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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportTableName = "ecoreport.reports"

var reportColumns = utils.StructTagValues(types.Report{})

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

type ReportRepository struct {
	pool *pgxpool.Pool
}

func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// CreateReport inserts a PENDING report, credits the owner with points and
// notifies every expert whose specialties include the report category, all in
// one transaction. The notification batch runs under a savepoint: if it fails
// the batch is rolled back as a whole, the report still commits and the
// failure is returned in ReportCreation.FanOutErr.
func (r *ReportRepository) CreateReport(ctx context.Context, report *types.Report, points int) (*types.ReportCreation, error) {
	now := time.Now()
	report.ID = utils.NanoID()
	report.Status = types.ReportStatusPending
	report.CreatedAt = now
	report.UpdatedAt = now
	if report.Images == nil {
		report.Images = []string{}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx for report create: %w", err)
	}
	defer rollback(ctx, tx)

	insertQuery, insertArgs, err := psql().
		Insert(reportTableName).
		SetMap(utils.StructToMap(report)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report insert: %w", err)
	}

	_, err = tx.Exec(ctx, insertQuery, insertArgs...)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, types.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to insert report: %w", err)
	}

	pointsQuery, pointsArgs, err := psql().
		Update(accountTableName).
		Set("impact_points", sq.Expr("impact_points + ?", points)).
		Set("updated_at", now).
		Where(sq.Eq{"id": report.AccountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate impact points query: %w", err)
	}

	_, err = tx.Exec(ctx, pointsQuery, pointsArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to credit impact points: %w", err)
	}

	creation := &types.ReportCreation{Report: report}
	creation.Notifications, creation.FanOutErr = r.fanOut(ctx, tx, report)

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit report create tx: %w", err)
	}

	return creation, nil
}

func (r *ReportRepository) fanOut(ctx context.Context, tx pgx.Tx, report *types.Report) ([]*types.Notification, error) {
	savepoint, err := tx.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open notification savepoint: %w", err)
	}
	defer rollback(ctx, savepoint)

	expertQuery, expertArgs, err := matchingExpertsQuery(report).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate matching experts query: %w", err)
	}

	var expertIDs []string
	err = pgxscan.Select(ctx, savepoint, &expertIDs, expertQuery, expertArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch matching experts: %w", err)
	}

	if len(expertIDs) == 0 {
		return nil, nil
	}

	notifications := BuildNotifications(report, expertIDs, time.Now())

	builder := psql().Insert(notificationTableName).Columns(notificationColumns...)
	for _, n := range notifications {
		builder = builder.Values(n.ID, n.AccountID, n.ReportID, n.Message, n.Type, n.Link, n.IsRead, n.CreatedAt)
	}

	insertQuery, insertArgs, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate notification insert: %w", err)
	}

	_, err = savepoint.Exec(ctx, insertQuery, insertArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to insert notifications: %w", err)
	}

	if err := savepoint.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to release notification savepoint: %w", err)
	}

	return notifications, nil
}

func matchingExpertsQuery(report *types.Report) sq.SelectBuilder {
	return psql().
		Select("a.id").
		From(accountTableName + " a").
		Join(expertTableName + " e ON e.account_id = a.id").
		Where(sq.Eq{"a.role": types.RoleExpert}).
		Where(sq.Expr("? = ANY(e.specialties)", report.Category)).
		Where(sq.NotEq{"a.id": report.AccountID}).
		OrderBy("a.created_at ASC")
}

// Reports returns one page of reports matching filter plus the total number
// of matches. Both queries read the same snapshot, so the total always agrees
// with the page.
func (r *ReportRepository) Reports(ctx context.Context, filter types.ReportFilter) ([]*types.Report, int, error) {
	countQuery, countArgs, err := reportCountQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate report count query: %w", err)
	}

	pageQuery, pageArgs, err := reportPageQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to generate report page query: %w", err)
	}

	var (
		total   int
		reports = make([]*types.Report, 0)
	)

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin tx for report listing: %w", err)
	}
	defer rollback(ctx, tx)

	if err := pgxscan.Get(ctx, tx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, utils.ErrorWrapOrNil(err, "failed to count reports")
	}

	if err := pgxscan.Select(ctx, tx, &reports, pageQuery, pageArgs...); err != nil {
		return nil, 0, utils.ErrorWrapOrNil(err, "failed to fetch reports")
	}

	return reports, total, utils.ErrorWrapOrNil(tx.Commit(ctx), "failed to commit report listing tx")
}

func reportConditions(filter types.ReportFilter) sq.And {
	conds := sq.And{}
	if filter.Category != "" {
		conds = append(conds, sq.Eq{"category": filter.Category})
	}
	if filter.Urgency != "" {
		conds = append(conds, sq.Eq{"urgency": filter.Urgency})
	}
	if filter.Status != "" {
		conds = append(conds, sq.Eq{"status": filter.Status})
	}
	if loc := strings.TrimSpace(filter.Location); loc != "" {
		conds = append(conds, sq.ILike{"location": "%" + likeEscaper.Replace(loc) + "%"})
	}
	return conds
}

func reportCountQuery(filter types.ReportFilter) sq.SelectBuilder {
	builder := psql().Select("COUNT(*)").From(reportTableName)
	if conds := reportConditions(filter); len(conds) > 0 {
		builder = builder.Where(conds)
	}
	return builder
}

func reportPageQuery(filter types.ReportFilter) sq.SelectBuilder {
	builder := psql().
		Select(reportColumns...).
		From(reportTableName).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset()))
	if conds := reportConditions(filter); len(conds) > 0 {
		builder = builder.Where(conds)
	}
	return builder
}
