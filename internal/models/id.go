package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID — непрозрачный идентификатор сущности бэкенда.
// Бэкенд может отдавать его как число или как строку. Наружу (в тела запросов)
// числом уходит только каноническая запись int64 ("42", "-3"); всё прочее,
// включая "007", "+5" и "1e3", уходит строкой без изменений.
// Тип сравним и пригоден как ключ map.
type ID string

// String возвращает id как есть.
func (id ID) String() string { return string(id) }

// IsZero — id не задан.
func (id ID) IsZero() bool { return id == "" }

// numeric — id совпадает с десятичной записью своего int64,
// то есть валиден как JSON-число и переживает обратный разбор без потерь.
func (id ID) numeric() bool {
	if id == "" {
		return false
	}

	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON кодирует канонический целый id числом, прочие — строкой.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}

	return json.Marshal(string(id))
}

// UnmarshalJSON принимает строку, число или null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("models: id: %w", err)
		}

		*id = ID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("models: id: %w", err)
		}

		*id = ID(n.String())
		return nil
	}
}
