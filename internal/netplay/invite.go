package netplay

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrBadInvite rejects a guest whose invite is missing, expired or forged.
var ErrBadInvite = errors.New("netplay: invalid invite")

const inviteIssuer = "gemduel-host"

type inviteClaims struct {
	MatchID string `json:"mid"`
	jwt.RegisteredClaims
}

// IssueInvite signs a token that admits one guest to matchID until ttl elapses.
func IssueInvite(secret []byte, matchID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := inviteClaims{
		MatchID: matchID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    inviteIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign invite: %w", err)
	}
	return token, nil
}

// VerifyInvite checks token and returns the match it admits to.
func VerifyInvite(secret []byte, token string) (string, error) {
	var claims inviteClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(inviteIssuer))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadInvite, err)
	}
	return claims.MatchID, nil
}
