package mutation

import (
	"context"
	"errors"

	"ecoreport/internal/auth"
	"ecoreport/pkg/types"
)

// RegisterExpert attaches an expert profile to the caller's account. A token
// whose account no longer exists is treated as unauthenticated.
func (e *Executor) RegisterExpert(ctx context.Context, claims *auth.Claims, cmd *RegisterExpertCommand) Outcome {
	expert := &types.ExpertProfile{
		AccountID:       claims.AccountID,
		Title:           cmd.Title,
		Specialties:     cmd.Specialties,
		Credentials:     cmd.Credentials,
		Bio:             cmd.Bio,
		ConsultationFee: cmd.ConsultationFee,
	}

	err := e.experts.CreateExpert(ctx, expert)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrExpertExists):
			return Conflict{Reason: "Expert profile already registered"}
		case errors.Is(err, types.ErrAccountNotFound):
			return Unauthorized{Message: MsgUnauthenticated, Cause: err}
		}
		return InternalError{Err: err}
	}

	e.logger.WithField("account_id", claims.AccountID).WithField("specialties", expert.Specialties).Info("expert registered")

	return Created{Value: expert}
}
