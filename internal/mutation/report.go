package mutation

import (
	"context"
	"errors"

	"ecoreport/internal/auth"
	"ecoreport/pkg/types"

	"github.com/sirupsen/logrus"
)

// CreateReport files a report for the caller, credits impact points and fans
// out notifications to matching experts. A failed fan-out does not undo the
// report; it surfaces as PartialFailure.
func (e *Executor) CreateReport(ctx context.Context, claims *auth.Claims, cmd *CreateReportCommand) Outcome {
	_, err := e.accounts.Account(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return NotFound{Resource: "User"}
		}
		return InternalError{Err: err}
	}

	creation, err := e.reports.CreateReport(ctx, cmd.report(claims.AccountID), e.reportPoints)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return NotFound{Resource: "User"}
		}
		return InternalError{Err: err}
	}

	entry := e.logger.WithFields(logrus.Fields{
		"report_id":  creation.Report.ID,
		"account_id": claims.AccountID,
		"category":   creation.Report.Category,
	})

	if creation.FanOutErr != nil {
		entry.WithError(creation.FanOutErr).Warn("report created but expert notification fan-out failed")
		return PartialFailure{Value: creation.Report, Err: creation.FanOutErr}
	}

	entry.WithField("notified", len(creation.Notifications)).Info("report created")

	return Created{Value: creation.Report}
}

func (e *Executor) ListReports(ctx context.Context, query *ListReportsQuery) Outcome {
	filter := query.filter()

	reports, total, err := e.reports.Reports(ctx, filter)
	if err != nil {
		return InternalError{Err: err}
	}

	return Succeeded{Value: &types.ReportPage{
		Reports: reports,
		Meta:    types.NewPageMeta(total, filter.Page, filter.Limit),
	}}
}
