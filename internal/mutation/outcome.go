package mutation

import (
	"ecoreport/internal/validate"
)

// Outcome is the closed set of results a command can produce. Only types in
// this file implement it.
type Outcome interface {
	outcome()
}

// AuthMessage is the only text an Unauthorized outcome may carry outward.
type AuthMessage string

const (
	MsgInvalidCredentials AuthMessage = "Invalid credentials"
	MsgUnauthenticated    AuthMessage = "Unauthorized"
)

// Created reports a new durable entity.
type Created struct {
	Value any
}

// Succeeded reports a completed command. A nil Value means there is nothing
// to return beyond success.
type Succeeded struct {
	Value any
}

type ValidationFailed struct {
	Violations validate.Violations
}

// Unauthorized never exposes Cause; it exists for logs and tests.
type Unauthorized struct {
	Message AuthMessage
	Cause   error
}

type Conflict struct {
	Reason string
}

type NotFound struct {
	Resource string
}

// InternalError never exposes Err outward.
type InternalError struct {
	Err error
}

// PartialFailure reports a durable primary write whose dependent fan-out did
// not apply. Callers see it as success.
type PartialFailure struct {
	Value any
	Err   error
}

func (Created) outcome()          {}
func (Succeeded) outcome()        {}
func (ValidationFailed) outcome() {}
func (Unauthorized) outcome()     {}
func (Conflict) outcome()         {}
func (NotFound) outcome()         {}
func (InternalError) outcome()    {}
func (PartialFailure) outcome()   {}
