// errors стандартизирует ответы об ошибках HTTP-слоя стаба.
// На вход принимает ошибку хранилища или хендлера, на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Формат тела: {"error": {"code", "message", "request_id"}}.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/pribylovaa/go-blog-comments/internal/models"
	"github.com/pribylovaa/go-blog-comments/internal/stub/storage"
)

// Нестандартный код часто используемый для "клиент закрыл соединение".
const StatusClientClosedRequest = 499

var (
	// ErrUnauthenticated — запрос без действующей сессии.
	ErrUnauthenticated = stderrors.New("unauthenticated")
	// ErrInvalidArgument — битое тело или параметры запроса.
	ErrInvalidArgument = stderrors.New("invalid argument")
)

// APIError — единый формат для клиента.
// Code — короткий стабильный код для машиночитаемой обработки.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — программная ошибка вызова: 500/internal, чтобы не послать
//     "200 OK" с телом ошибки;
//   - ошибки валидации текста отдают их собственное сообщение (400);
//   - сентинелы хранилища маппятся через таблицу ниже;
//   - прочее — 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	status, code, msg := classify(err)
	return status, ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет статус и тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// classify — маппинг ошибка -> HTTP/код/сообщение:
//   - ErrEmptyContent, ErrContentTooLong -> 400 с текстом ошибки;
//   - ErrInvalidArgument (оба) -> 400;
//   - ErrUnauthenticated -> 401;
//   - storage.ErrForbidden -> 403;
//   - storage.ErrNotFound, storage.ErrParentNotFound -> 404;
//   - storage.ErrConflict -> 409;
//   - storage.ErrMaxDepthExceeded -> 412;
//   - context.Canceled -> 499, context.DeadlineExceeded -> 504;
//   - прочее -> 500/internal.
func classify(err error) (int, string, string) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", "internal error"
	case stderrors.Is(err, models.ErrEmptyContent):
		return http.StatusBadRequest, "invalid_argument", "Comment cannot be empty."
	case stderrors.Is(err, models.ErrContentTooLong):
		return http.StatusBadRequest, "invalid_argument", "Comment is too long (max 5000 characters)."
	case stderrors.Is(err, models.ErrUnknownReason):
		return http.StatusBadRequest, "invalid_argument", "Unknown report reason."
	case stderrors.Is(err, ErrInvalidArgument), stderrors.Is(err, storage.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument", "invalid argument"
	case stderrors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated", "Please sign in to continue."
	case stderrors.Is(err, storage.ErrForbidden):
		return http.StatusForbidden, "permission_denied", "You are not allowed to do that."
	case stderrors.Is(err, storage.ErrParentNotFound):
		return http.StatusNotFound, "not_found", "The comment you are replying to no longer exists."
	case stderrors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "not_found", "This comment no longer exists."
	case stderrors.Is(err, storage.ErrConflict):
		return http.StatusConflict, "already_exists", "You have already reported this comment."
	case stderrors.Is(err, storage.ErrMaxDepthExceeded):
		return http.StatusPreconditionFailed, "failed_precondition", "Replies to replies are not allowed."
	case stderrors.Is(err, context.Canceled):
		return StatusClientClosedRequest, "canceled", "canceled"
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "deadline_exceeded", "deadline exceeded"
	default:
		return http.StatusInternalServerError, "internal", "internal error"
	}
}
