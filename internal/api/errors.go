package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pribylovaa/go-blog-comments/internal/models"
)

var (
	// ErrTransport — запрос не дошёл до сервера или ответ не был получен.
	ErrTransport = errors.New("transport failure")
	// ErrDecode — сервер ответил 2xx, но тело не соответствует контракту.
	ErrDecode = errors.New("malformed response")
)

// maxErrorBody — сколько байт тела ошибки читаем для разбора сообщения.
const maxErrorBody = 64 << 10

// Error — ошибка, о которой сообщил сервер (не-2xx ответ).
// Message — человекочитаемый текст из тела ответа, если он был.
type Error struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}

	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, msg)
	}

	return fmt.Sprintf("api: %d: %s", e.Status, msg)
}

// errorBody понимает три формы тела ошибки:
//   - {"message": "..."};
//   - {"error": "..."};
//   - {"error": {"code": "...", "message": "...", "request_id": "..."}}.
type errorBody struct {
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
}

type errorEnvelope struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// parseError строит *Error из не-2xx ответа. Тело закрывает вызывающий.
func parseError(resp *http.Response) *Error {
	out := &Error{
		Status:    resp.StatusCode,
		Code:      codeFromStatus(resp.StatusCode),
		RequestID: resp.Header.Get("X-Request-Id"),
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return out
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return out
	}

	out.Message = strings.TrimSpace(body.Message)

	if len(body.Error) > 0 {
		var s string
		if err := json.Unmarshal(body.Error, &s); err == nil {
			if out.Message == "" {
				out.Message = strings.TrimSpace(s)
			}
			return out
		}

		var env errorEnvelope
		if err := json.Unmarshal(body.Error, &env); err == nil {
			if env.Code != "" {
				out.Code = env.Code
			}

			if out.Message == "" {
				out.Message = strings.TrimSpace(env.Message)
			}

			if env.RequestID != "" {
				out.RequestID = env.RequestID
			}
		}
	}

	return out
}

// codeFromStatus — короткий стабильный код по HTTP-статусу
// (та же таблица, что у шлюза при маппинге статусов).
func codeFromStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusPreconditionFailed:
		return "failed_precondition"
	case http.StatusTooManyRequests:
		return "resource_exhausted"
	case http.StatusGatewayTimeout:
		return "deadline_exceeded"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		if status >= 500 {
			return "internal"
		}
		return "unknown"
	}
}

// Генерические тексты для пользователя, когда сервер не прислал сообщения.
const (
	msgGeneric      = "Something went wrong. Please try again."
	msgNetwork      = "Network error. Check your connection and try again."
	msgSignIn       = "Please sign in to continue."
	msgForbidden    = "You are not allowed to do that."
	msgNotFound     = "This comment no longer exists."
	msgConflict     = "This comment was changed elsewhere. Refresh and try again."
	msgRateLimited  = "Too many requests. Please slow down."
	msgUnavailable  = "The service is temporarily unavailable."
	msgTooLong      = "Comment is too long (max 5000 characters)."
	msgEmptyContent = "Comment cannot be empty."
)

// UserMessage превращает любую ошибку операции в одну строку для уведомления.
// Сообщение сервера имеет приоритет; детали транспорта наружу не утекают.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, models.ErrEmptyContent):
		return msgEmptyContent
	case errors.Is(err, models.ErrContentTooLong):
		return msgTooLong
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}

		switch apiErr.Status {
		case http.StatusUnauthorized:
			return msgSignIn
		case http.StatusForbidden:
			return msgForbidden
		case http.StatusNotFound:
			return msgNotFound
		case http.StatusConflict:
			return msgConflict
		case http.StatusTooManyRequests:
			return msgRateLimited
		case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return msgUnavailable
		}

		return msgGeneric
	}

	if errors.Is(err, ErrTransport) {
		return msgNetwork
	}

	return msgGeneric
}

// StatusOf возвращает HTTP-статус ошибки сервера или 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}

	return 0
}
