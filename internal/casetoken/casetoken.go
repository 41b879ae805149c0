// Package casetoken issues and validates the bearer tokens that scope wizard
// API access to a single case. Creating a case returns a token; every
// subsequent case route requires it.
package casetoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	id "caseflow/pkg/domain"
	dErrors "caseflow/pkg/domain-errors"
)

// Claims carries the case scope inside the signed token.
type Claims struct {
	CaseID string `json:"case_id"`
	jwt.RegisteredClaims
}

// Service handles token creation and validation.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

func NewService(signingKey string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     "caseflow",
		ttl:        ttl,
	}
}

// Issue signs a token scoped to the given case.
func (s *Service) Issue(caseID id.CaseID, now time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		CaseID: caseID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign case token")
	}
	return signed, nil
}

// Validate parses and verifies a token, returning the case ID it is scoped to.
func (s *Service) Validate(tokenString string) (id.CaseID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return id.CaseID{}, dErrors.New(dErrors.CodeUnauthorized, "case token has expired")
		}
		return id.CaseID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid case token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return id.CaseID{}, dErrors.New(dErrors.CodeUnauthorized, "invalid case token")
	}

	caseID, err := id.ParseCaseID(claims.CaseID)
	if err != nil {
		return id.CaseID{}, dErrors.New(dErrors.CodeUnauthorized, "case token missing case scope")
	}
	return caseID, nil
}
