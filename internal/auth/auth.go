// Package auth provides middleware and helpers for JWT-based authentication
// and user identification in HTTP requests. It supports cookie-based or
// Authorization header-based token parsing.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/shoplist/internal/logger"
	"github.com/patric-chuzhbe/shoplist/internal/models"
	"github.com/patric-chuzhbe/shoplist/internal/user"
)

const unauthenticatedMessage = "authentication required"

var ErrInvalidToken = errors.New("invalid or expired token")

type userKeeper interface {
	GetUser(ctx context.Context, id int64) (*user.User, bool, error)
}

// Auth issues session tokens and resolves requests to user ids.
type Auth struct {
	// db is used to make sure the token's user still exists.
	db userKeeper

	// authCookieName is the name of the cookie used to store the JWT.
	authCookieName string

	// authCookieSigningSecretKey is the key used to sign JWTs.
	authCookieSigningSecretKey []byte

	tokenTTL time.Duration
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds a user-specific identifier.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates a new Auth handler with the given user data access layer,
// cookie name, JWT signing secret and token lifetime.
func New(
	db userKeeper,
	authCookieName string,
	authCookieSigningSecretKey []byte,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		db:                         db,
		authCookieName:             authCookieName,
		authCookieSigningSecretKey: authCookieSigningSecretKey,
		tokenTTL:                   tokenTTL,
	}
}

// UserIDFromContext returns the id stored by AuthenticateUser.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok && userID != 0
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// LogIn starts a session for userID: the signed token is sent back both
// as a cookie and in the Authorization header.
func (a *Auth) LogIn(response http.ResponseWriter, userID int64) error {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(now),
		},
		UserID: userID,
	}
	if a.tokenTTL > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(a.tokenTTL))
	}

	JWTString, err := a.buildJWTString(claims)
	if err != nil {
		return fmt.Errorf("in internal/auth/auth.go/LogIn(): error while `a.buildJWTString()` calling: %w", err)
	}

	response.Header().Set("Authorization", JWTString)

	cookie := &http.Cookie{
		Name:     a.authCookieName,
		Value:    JWTString,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if a.tokenTTL > 0 {
		cookie.Expires = now.Add(a.tokenTTL)
	}
	http.SetCookie(response, cookie)

	return nil
}

// LogOut expires the session cookie.
func (a *Auth) LogOut(response http.ResponseWriter) {
	http.SetCookie(
		response,
		&http.Cookie{
			Name:     a.authCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		},
	)
}

// AuthenticateUser is an HTTP middleware that authenticates incoming requests
// using JWTs found in the Authorization header or cookies.
// Requests without a valid token for an existing user are rejected with 401
// before any handler runs.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID, err := a.getUserIDFromAuthorizationHeaderOrCookie(request)
		if err != nil {
			logger.FromContext(request.Context()).Debugw(
				"Error calling the `a.getUserIDFromAuthorizationHeaderOrCookie()`",
				zap.Error(err),
			)
			writeUnauthorized(response)
			return
		}

		usr, found, err := a.db.GetUser(request.Context(), userID)
		if err != nil {
			logger.FromContext(request.Context()).Errorw("Error calling the `a.db.GetUser()`", zap.Error(err))
			response.Header().Set("Content-Type", "application/json")
			response.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(response).Encode(models.ErrorResponse{Message: "internal server error"})
			return
		}
		if !found {
			writeUnauthorized(response)
			return
		}

		h.ServeHTTP(response, request.WithContext(WithUserID(request.Context(), usr.ID)))
	}

	return http.HandlerFunc(middleware)
}

func writeUnauthorized(response http.ResponseWriter) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(response).Encode(models.ErrorResponse{Message: unauthenticatedMessage})
}

func (a *Auth) getTokenStringFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := strings.TrimSpace(strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer "))
	if tokenString != "" {
		return tokenString
	}
	cookie, err := request.Cookie(a.authCookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

func (a *Auth) getUserIDFromAuthorizationHeaderOrCookie(request *http.Request) (int64, error) {
	tokenString := a.getTokenStringFromAuthorizationHeaderOrCookie(request)
	if tokenString == "" {
		return 0, ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.authCookieSigningSecretKey, nil
		},
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == 0 {
		return 0, ErrInvalidToken
	}

	return claims.UserID, nil
}

func (a *Auth) buildJWTString(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *claims)

	tokenString, err := token.SignedString(a.authCookieSigningSecretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
