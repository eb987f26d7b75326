package mutation

import (
	"context"
	"errors"

	"ecoreport/internal/auth"
	"ecoreport/pkg/types"
)

func (e *Executor) Signup(ctx context.Context, cmd SignupCommand) Outcome {
	base := cmd.base()

	digest, err := auth.Hash(ctx, base.Password)
	if err != nil {
		return InternalError{Err: err}
	}

	account := cmd.account()
	account.PasswordHash = digest

	err = e.accounts.CreateAccount(ctx, account)
	if err != nil {
		if errors.Is(err, types.ErrEmailTaken) {
			return Conflict{Reason: "An account with this email already exists"}
		}
		return InternalError{Err: err}
	}

	e.logger.WithField("account_id", account.ID).WithField("role", account.Role).Info("account created")

	return Created{Value: MessageBody{Message: "User created successfully"}}
}

// Login answers a missing account and a wrong password identically.
func (e *Executor) Login(ctx context.Context, cmd *LoginCommand) Outcome {
	account, err := e.accounts.AccountByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			auth.DummyVerify(cmd.Password)
			return Unauthorized{Message: MsgInvalidCredentials, Cause: err}
		}
		return InternalError{Err: err}
	}

	if !auth.Verify(cmd.Password, account.PasswordHash) {
		return Unauthorized{Message: MsgInvalidCredentials, Cause: errors.New("password mismatch")}
	}

	ttl := auth.TTLFor(cmd.RememberMe)
	token, _, err := e.tokens.IssueToken(account.ID, account.Email, account.Role, ttl)
	if err != nil {
		return InternalError{Err: err}
	}

	return Succeeded{Value: &LoginResult{User: account, Token: token, MaxAge: ttl}}
}

func (e *Executor) CurrentUser(ctx context.Context, claims *auth.Claims) Outcome {
	account, err := e.accounts.Account(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return NotFound{Resource: "User"}
		}
		return InternalError{Err: err}
	}

	return Succeeded{Value: UserBody{User: account}}
}

func (e *Executor) UpdateProfile(ctx context.Context, claims *auth.Claims, cmd *UpdateProfileCommand) Outcome {
	account, err := e.accounts.UpdateProfile(ctx, claims.AccountID, cmd.update())
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return NotFound{Resource: "User"}
		}
		return InternalError{Err: err}
	}

	return Succeeded{Value: ProfileBody{Message: "Profile updated successfully", User: account}}
}
