package chi

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	propertyuc "github.com/kailas-cloud/propdex/internal/usecase/property"
)

// Authentication failure messages.
const (
	msgNoToken         = "No authorization token provided"
	msgInvalidAudience = "Invalid token audience"
	msgInvalidToken    = "Invalid token: "
)

var (
	errNoToken         = errors.New(msgNoToken)
	errInvalidAudience = errors.New("invalid audience")
	errMissingSubject  = errors.New("token has no subject")
)

type callerKey struct{}

// CallerFromContext returns the authenticated caller stored by Authenticator.Middleware.
// The zero Caller is returned for anonymous requests.
func CallerFromContext(ctx context.Context) propertyuc.Caller {
	c, _ := ctx.Value(callerKey{}).(propertyuc.Caller)
	return c
}

// ContextWithCaller stores the caller in the context.
func ContextWithCaller(ctx context.Context, c propertyuc.Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// Authenticator verifies HMAC-signed JWT bearer tokens.
type Authenticator struct {
	key      []byte
	audience string
	parser   *jwt.Parser
}

// NewAuthenticator creates an authenticator. An empty audience disables the aud check.
func NewAuthenticator(signingKey, audience string) *Authenticator {
	return &Authenticator{
		key:      []byte(signingKey),
		audience: audience,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{
				jwt.SigningMethodHS256.Alg(),
				jwt.SigningMethodHS384.Alg(),
				jwt.SigningMethodHS512.Alg(),
			}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Authenticate extracts the caller from the Authorization header.
func (a *Authenticator) Authenticate(r *http.Request) (propertyuc.Caller, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return propertyuc.Caller{}, errNoToken
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

	claims := jwt.MapClaims{}
	if _, err := a.parser.ParseWithClaims(raw, claims, a.keyFunc); err != nil {
		return propertyuc.Caller{}, err //nolint:wrapcheck // surfaced verbatim to the client
	}

	if a.audience != "" {
		aud, err := claims.GetAudience()
		if err != nil || !slices.Contains(aud, a.audience) {
			return propertyuc.Caller{}, errInvalidAudience
		}
	}

	sub, _ := claims.GetSubject()
	if sub == "" {
		sub, _ = claims["uid"].(string)
	}
	if sub == "" {
		return propertyuc.Caller{}, errMissingSubject
	}
	email, _ := claims["email"].(string)

	return propertyuc.Caller{UserID: sub, Email: email}, nil
}

func (a *Authenticator) keyFunc(*jwt.Token) (any, error) {
	return a.key, nil
}

// Middleware rejects requests without a valid token with 401 and stores the caller in the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller, err := a.Authenticate(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, authMessage(err))
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithCaller(r.Context(), caller)))
	})
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, errNoToken):
		return msgNoToken
	case errors.Is(err, errInvalidAudience):
		return msgInvalidAudience
	default:
		return msgInvalidToken + err.Error()
	}
}
