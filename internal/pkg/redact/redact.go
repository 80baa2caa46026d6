package redact

// Token — замена токена сессии в логах. Пустой токен остаётся пустым,
// чтобы по логу было видно, что сессии не было.
func Token(s string) string {
	if s == "" {
		return ""
	}

	return "[REDACTED_TOKEN]"
}

// Username оставляет первый символ имени: "bob" -> "b***".
func Username(s string) string {
	r := []rune(s)
	if len(r) < 2 {
		return "***"
	}

	return string(r[:1]) + "***"
}
