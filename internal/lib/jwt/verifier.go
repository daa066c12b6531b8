// Package jwt реализует проверку access-токенов identity-провайдера.
//
// Токены выпускает внешний провайдер (HS256, общий секрет); приложение их
// только валидирует и извлекает идентификатор пользователя и email.
package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims описывает данные сессии, хранящиеся в access-токене провайдера.
type SessionClaims struct {
	Email                string `json:"email"` // Email пользователя
	jwt.RegisteredClaims        // Встроенные стандартные claims JWT (Subject, ExpiresAt и пр.)
}

// UserID возвращает идентификатор пользователя (claim sub).
func (c *SessionClaims) UserID() string {
	return c.Subject
}

// Verifier проверяет подпись и срок действия токенов провайдера.
type Verifier struct {
	secretKey string // Секретный ключ подписи токенов провайдера.
}

// NewVerifier создаёт Verifier с общим секретом подписи.
func NewVerifier(secretKey string) *Verifier {
	return &Verifier{secretKey: secretKey}
}

// ParseToken парсит access-токен, проверяет его подпись и валидность,
// возвращает SessionClaims, если токен корректен.
func (v *Verifier) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(v.secretKey), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: invalid token", op)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%s: token has no subject", op)
	}
	return claims, nil
}
