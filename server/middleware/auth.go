package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/recoverykit/classify"
	"github.com/kbukum/recoverykit/errors"
)

// ContextUserID is the Gin context key holding the token subject.
const ContextUserID = "user_id"

// AuthConfig configures the JWT authentication middleware.
type AuthConfig struct {
	// Secret is the HMAC key tokens are signed with.
	Secret []byte
	// SkipPaths are URL path prefixes that bypass authentication.
	SkipPaths []string
}

// Auth validates HS256 Bearer tokens. An expired token is answered as
// SESSION_EXPIRED, every other failure as UNAUTHORIZED. The subject claim
// is stored under ContextUserID.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	keyFunc := func(*jwt.Token) (any, error) { return cfg.Secret, nil }

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if strings.HasPrefix(path, skip) {
				c.Next()
				return
			}
		}

		raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || raw == "" {
			abort(c, errors.New(errors.KindUnauthorized, "missing bearer token"))
			return
		}

		claims := jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil {
			abort(c, authError(err))
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Next()
	}
}

func authError(err error) *errors.TypedError {
	if stderrors.Is(err, jwt.ErrTokenExpired) {
		return classify.Classify(err, map[string]any{errors.DetailOperation: "authenticate"})
	}
	return errors.Wrap(errors.KindUnauthorized, err, "invalid token")
}
