package repository

import (
	"errors"
	"fmt"

	rperrors "github.com/matzehuels/repoman/pkg/errors"
)

// ErrUnregisteredType matches any [*UnregisteredTypeError] under errors.Is.
var ErrUnregisteredType = errors.New("unregistered repository type")

// UnregisteredTypeError is returned by [Manager.CreateRepository] when no
// class is bound to the requested type.
type UnregisteredTypeError struct {
	Type string
}

func (e *UnregisteredTypeError) Error() string {
	return fmt.Sprintf("repository type %q is not registered", e.Type)
}

// Is reports whether target is [ErrUnregisteredType].
func (e *UnregisteredTypeError) Is(target error) bool {
	return target == ErrUnregisteredType
}

// Code returns [rperrors.ErrCodeUnregisteredType].
func (e *UnregisteredTypeError) Code() rperrors.Code {
	return rperrors.ErrCodeUnregisteredType
}

// QueryError wraps the failure of one repository during a query.
type QueryError struct {
	Repo string
	Err  error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("repository %s: %v", e.Repo, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// Code returns the code of the underlying error, or
// [rperrors.ErrCodeRepository] when it carries none.
func (e *QueryError) Code() rperrors.Code {
	if code := rperrors.GetCode(e.Err); code != "" {
		return code
	}
	return rperrors.ErrCodeRepository
}
