package jwt

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/granjalink/farm-backend-go/internal/domain/profile"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	AccessTokenCookie  = "sb-auth-token"
	RefreshTokenCookie = "sb-refresh-token"

	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrWrongTokenType = errors.New("unexpected token type")

// Claims are the identity claims carried by an access token.
type Claims struct {
	UserID    string
	Email     string
	Role      profile.Role
	ExpiresAt time.Time
}

type Service interface {
	GenerateAccessToken(userID string, email string, role profile.Role) (token string, expiresAt int64, err error)
	GenerateRefreshToken(userID string) (token string, expiresAt int64, err error)
	ParseAccessToken(token string) (Claims, error)
	ParseRefreshToken(token string) (userID string, err error)
	JWTAuth() *jwtauth.JWTAuth
	SessionCookies(accessToken string, refreshToken string) []*http.Cookie
	ClearSessionCookies() []*http.Cookie
	RevokeToken(token string, expiresAt time.Time)
	IsTokenRevoked(token string) bool
}

type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

type JWTService struct {
	accessTokenExpirationTime  time.Duration
	refreshTokenExpirationTime time.Duration
	cookies                    CookieConfig
	tokenAuth                  *jwtauth.JWTAuth
	revokedTokens              map[string]time.Time
	mu                         sync.RWMutex
	now                        func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService builds an HS256 token service. Expiration strings use time.ParseDuration syntax.
func NewJWTService(secretKey string, accessTokenExpirationTime string, refreshTokenExpirationTime string, cookies CookieConfig) (Service, error) {
	accessExp, err := time.ParseDuration(accessTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	refreshExp, err := time.ParseDuration(refreshTokenExpirationTime)
	if err != nil {
		return nil, err
	}
	return &JWTService{
		accessTokenExpirationTime:  accessExp,
		refreshTokenExpirationTime: refreshExp,
		cookies:                    cookies,
		tokenAuth:                  jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revokedTokens:              make(map[string]time.Time),
		now:                        time.Now,
	}, nil
}

func (j *JWTService) GenerateAccessToken(userID string, email string, role profile.Role) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.accessTokenExpirationTime).Unix()

	claims := map[string]interface{}{
		"user_id": userID,
		"email":   email,
		"role":    string(role),
		"type":    TokenTypeAccess,
		"exp":     expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) GenerateRefreshToken(userID string) (token string, expiresAt int64, err error) {
	expiresAt = j.now().Add(j.refreshTokenExpirationTime).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id": userID,
		"jti":     uuid.NewString(),
		"exp":     expiresAt,
		"type":    TokenTypeRefresh,
	})
	return tokenString, expiresAt, err
}

func (j *JWTService) ParseAccessToken(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}
	if tokenType, _ := token.PrivateClaims()["type"].(string); tokenType != TokenTypeAccess {
		return Claims{}, ErrWrongTokenType
	}
	if j.IsTokenRevoked(tokenString) {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	private := token.PrivateClaims()
	userID, _ := private["user_id"].(string)
	email, _ := private["email"].(string)
	role, _ := private["role"].(string)
	if userID == "" {
		return Claims{}, jwt.ErrInvalidJWT()
	}
	return Claims{
		UserID:    userID,
		Email:     email,
		Role:      profile.Role(role),
		ExpiresAt: token.Expiration(),
	}, nil
}

func (j *JWTService) ParseRefreshToken(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return "", err
	}
	private := token.PrivateClaims()
	if tokenType, _ := private["type"].(string); tokenType != TokenTypeRefresh {
		return "", ErrWrongTokenType
	}
	userID, _ := private["user_id"].(string)
	if userID == "" {
		return "", jwt.ErrInvalidJWT()
	}
	return userID, nil
}

// SessionCookies returns the httpOnly cookie pair carrying both tokens.
func (j *JWTService) SessionCookies(accessToken string, refreshToken string) []*http.Cookie {
	return []*http.Cookie{
		j.sessionCookie(AccessTokenCookie, accessToken, int(j.cookies.MaxAge.Seconds())),
		j.sessionCookie(RefreshTokenCookie, refreshToken, int(j.cookies.MaxAge.Seconds())),
	}
}

func (j *JWTService) ClearSessionCookies() []*http.Cookie {
	return []*http.Cookie{
		j.sessionCookie(AccessTokenCookie, "", -1),
		j.sessionCookie(RefreshTokenCookie, "", -1),
	}
}

func (j *JWTService) sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   j.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// RevokeToken blacklists an access token until it would have expired anyway.
func (j *JWTService) RevokeToken(token string, expiresAt time.Time) {
	j.mu.Lock()
	defer j.mu.Unlock()
	now := j.now()
	for t, exp := range j.revokedTokens {
		if !exp.After(now) {
			delete(j.revokedTokens, t)
		}
	}
	j.revokedTokens[token] = expiresAt
}

func (j *JWTService) IsTokenRevoked(token string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	_, revoked := j.revokedTokens[token]
	return revoked
}

// TokenFromCookie is a jwtauth finder reading the access token cookie.
func TokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
