package models

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// MaxContentLength — верхняя граница длины текста комментария (в символах).
const MaxContentLength = 5000

var (
	// ErrEmptyContent — текст пуст после TrimSpace.
	ErrEmptyContent = errors.New("comment cannot be empty")
	// ErrContentTooLong — текст длиннее MaxContentLength.
	ErrContentTooLong = errors.New("comment is too long (max 5000 characters)")
)

// ValidateContent — клиентская проверка перед create/reply/edit.
// Длина считается по исходному тексту в символах (rune), не в байтах.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	if utf8.RuneCountInString(content) > MaxContentLength {
		return ErrContentTooLong
	}

	return nil
}
