package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "snooze-web"

var ErrInvalidToken = errors.New("invalid token")

type Service struct {
	jwtSecret     string
	jwtExpiration time.Duration
	now           func() time.Time
}

// Claims travel in the session cookie. Username is informational; the
// session store stays the source of truth for who is signed in.
type Claims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username,omitempty"`
	jwt.RegisteredClaims
}

type SessionToken struct {
	Token     string
	ExpiresAt time.Time
}

func NewService(jwtSecret string, jwtExpiration time.Duration) *Service {
	return &Service{
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
		now:           time.Now,
	}
}

func (s *Service) Expiration() time.Duration {
	return s.jwtExpiration
}

// NeedsRenewal reports whether claims have used up more than half of their
// lifetime. The session behind them slides on every request, so the cookie
// is reissued to keep up with it.
func (s *Service) NeedsRenewal(claims *Claims) bool {
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.Time.Sub(s.now()) < s.jwtExpiration/2
}

func (s *Service) GenerateToken(sessionID, username string) (*SessionToken, error) {
	now := s.now()
	expirationTime := now.Add(s.jwtExpiration)

	claims := &Claims{
		SessionID: sessionID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   sessionID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, err
	}

	return &SessionToken{
		Token:     tokenString,
		ExpiresAt: expirationTime,
	}, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(s.jwtSecret), nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(s.now))

	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}

	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
