package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/cargolink/internal/models"
)

type jwtCustomClaims struct {
	UserID   string `json:"user_id"`
	Role     string `json:"role"`
	TeamCode string `json:"team_code"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT embedding the staff actor identity.
func GenerateToken(secret string, actor models.Actor, ttl time.Duration) (string, error) {
	claims := &jwtCustomClaims{
		UserID:   actor.ID.String(),
		Role:     actor.Role,
		TeamCode: actor.TeamCode,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   actor.ID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns the embedded actor.
func ParseToken(secret, tokenString string) (models.Actor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return models.Actor{}, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return models.Actor{}, jwt.ErrTokenInvalidClaims
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.Actor{}, err
	}

	return models.Actor{ID: id, Role: claims.Role, TeamCode: claims.TeamCode}, nil
}
