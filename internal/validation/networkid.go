package validation

import (
	"fmt"
	"regexp"
)

// NetworkIDPattern определяет допустимый формат network id
// Латинские буквы, цифры и символы _ . : / -
// Длина: 1-128 символов
var NetworkIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.:/-]{1,128}$`)

// prefixPattern допускает пустой префикс
var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_.:/-]*$`)

const (
	// MaxNetworkIDLen максимальная длина network id
	MaxNetworkIDLen = 128
)

// ValidateNetworkID проверяет, что id можно использовать как ключ записи
func ValidateNetworkID(id string) error {
	if id == "" {
		return fmt.Errorf("network id cannot be empty")
	}

	if len(id) > MaxNetworkIDLen {
		return fmt.Errorf("network id must not exceed %d characters", MaxNetworkIDLen)
	}

	if !NetworkIDPattern.MatchString(id) {
		return fmt.Errorf("network id can only contain letters, numbers and the characters _ . : / -")
	}

	return nil
}

// ValidatePrefix проверяет префикс, добавляемый к network id
func ValidatePrefix(prefix string) error {
	if len(prefix) >= MaxNetworkIDLen {
		return fmt.Errorf("network id prefix must be shorter than %d characters", MaxNetworkIDLen)
	}

	if !prefixPattern.MatchString(prefix) {
		return fmt.Errorf("network id prefix can only contain letters, numbers and the characters _ . : / -")
	}

	return nil
}
