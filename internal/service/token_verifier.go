package service

import (
	"errors"
	"fmt"

	"subbridge-be/internal/dto"

	"github.com/golang-jwt/jwt/v5"
)

var ErrTokenMismatch = errors.New("token does not belong to the asserted user")

// TokenVerifier checks that the access token a client presents at the session
// bridge was really issued by the identity provider for the asserted user.
type TokenVerifier interface {
	Verify(accessToken string, user *dto.BridgeUser) error
}

type jwtTokenVerifier struct {
	secret   []byte
	audience string
}

// NewJWTTokenVerifier validates HS256 tokens signed with the identity
// provider's shared secret. The token subject must match the asserted user id.
func NewJWTTokenVerifier(secret, audience string) TokenVerifier {
	return &jwtTokenVerifier{secret: []byte(secret), audience: audience}
}

func (v *jwtTokenVerifier) Verify(accessToken string, user *dto.BridgeUser) error {
	claims := jwt.MapClaims{}

	token, err := jwt.ParseWithClaims(accessToken, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return fmt.Errorf("parse access token: %w", err)
	}
	if !token.Valid {
		return errors.New("invalid access token")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub != user.Id {
		return ErrTokenMismatch
	}

	if v.audience != "" {
		audiences, err := claims.GetAudience()
		if err != nil {
			return fmt.Errorf("read token audience: %w", err)
		}
		for _, aud := range audiences {
			if aud == v.audience {
				return nil
			}
		}
		return errors.New("token audience not accepted")
	}

	return nil
}

type noopTokenVerifier struct{}

// NewNoopTokenVerifier trusts the client's assertion as-is. Only wired up
// when no identity secret is configured (local development).
func NewNoopTokenVerifier() TokenVerifier {
	return &noopTokenVerifier{}
}

func (v *noopTokenVerifier) Verify(accessToken string, user *dto.BridgeUser) error {
	return nil
}
