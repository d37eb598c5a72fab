package classify

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes the classifier treats as structured constraint signals.
const (
	CodeUniqueViolation     = "23505"
	CodeForeignKeyViolation = "23503"
	CodeCheckViolation      = "23514"
)

// Failure is the normalized shape of a raw failure. Callers may also return a
// *Failure directly from an operation to raise a structured failure.
type Failure struct {
	Code          string `json:"code,omitempty"`
	Status        int    `json:"status,omitempty"`
	Name          string `json:"name,omitempty"`
	Message       string `json:"message"`
	OperationHint string `json:"operationHint,omitempty"`
}

// Error returns the failure message.
func (f *Failure) Error() string {
	if f.Message == "" {
		return "unknown failure"
	}
	return f.Message
}

type statusCoder interface {
	StatusCode() int
}

// Normalize adapts err into a Failure. It never fails; an unrecognised error
// yields a Failure carrying only its message.
func Normalize(err error) Failure {
	if err == nil {
		return Failure{}
	}

	var f *Failure
	if stderrors.As(err, &f) {
		return *f
	}

	out := Failure{Message: err.Error()}

	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case stderrors.As(err, &pgErr):
		out.Code = pgErr.Code
		out.Name = "PostgresError"
		out.Message = withConstraint(pgErr.Message, pgErr.ConstraintName)
	case stderrors.As(err, &pqErr):
		out.Code = string(pqErr.Code)
		out.Name = "PostgresError"
		out.Message = withConstraint(pqErr.Message, pqErr.Constraint)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		out.Code = CodeUniqueViolation
	case stderrors.Is(err, gorm.ErrForeignKeyViolated):
		out.Code = CodeForeignKeyViolation
	case stderrors.Is(err, gorm.ErrCheckConstraintViolated):
		out.Code = CodeCheckViolation
	case stderrors.Is(err, jwt.ErrTokenExpired):
		out.Name = "TokenExpiredError"
		out.Status = http.StatusUnauthorized
	case stderrors.Is(err, context.DeadlineExceeded):
		out.Name = "TimeoutError"
	}

	var netErr net.Error
	if out.Name == "" && stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			out.Name = "TimeoutError"
		} else {
			out.Name = "NetworkError"
		}
	}

	var sc statusCoder
	if out.Status == 0 && stderrors.As(err, &sc) {
		out.Status = sc.StatusCode()
	}

	return out
}

func withConstraint(message, constraint string) string {
	if constraint == "" || strings.Contains(message, constraint) {
		return message
	}
	return message + " (constraint " + constraint + ")"
}
