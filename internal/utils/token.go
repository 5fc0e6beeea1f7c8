package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// PlayerClaims is the JWT payload handed out when a player joins or hosts
// a session. It ties a browser to exactly one player in one session.
type PlayerClaims struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	SessionID  string `json:"session_id"`
	IsHost     bool   `json:"is_host"`
	jwt.RegisteredClaims
}

// JWTManager issues and verifies player tokens.
type JWTManager struct {
	secretKey []byte
	expiry    time.Duration
}

func NewJWTManager(secretKey string, expiry time.Duration) *JWTManager {
	return &JWTManager{
		secretKey: []byte(secretKey),
		expiry:    expiry,
	}
}

// GenerateToken signs a token for the given player.
func (m *JWTManager) GenerateToken(playerID, playerName, sessionID string, isHost bool) (string, error) {
	now := time.Now()
	claims := &PlayerClaims{
		PlayerID:   playerID,
		PlayerName: playerName,
		SessionID:  sessionID,
		IsHost:     isHost,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tasting",
			Subject:   playerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// ParseToken verifies a token and returns its claims.
func (m *JWTManager) ParseToken(tokenString string) (*PlayerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &PlayerClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*PlayerClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return claims, nil
}
