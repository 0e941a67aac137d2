package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex : криптографически случайная строка из byteLength байт в hex
func RandomHex(byteLength int) (string, error) {
	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", LogError("[util] ошибка генерации токена", err)
	}

	return hex.EncodeToString(bytes), nil
}
