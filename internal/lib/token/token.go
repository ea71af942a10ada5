// Package token генерирует непрозрачные токены сессий.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Size количество случайных байт в токене.
const Size = 32

// New возвращает криптографически случайный токен в base64url без паддинга.
func New() (string, error) {
	const op = "token.New"
	b := make([]byte, Size)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Fingerprint возвращает sha256 токена, чтобы не хранить сам токен в ключах кеша и логах.
func Fingerprint(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return hex.EncodeToString(sum[:])
}
