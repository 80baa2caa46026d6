// Package report — диалог жалобы на комментарий.
//
// Состояние формы (причина и пояснение) очищается только успешной отправкой
// или явной отменой; неудачная отправка его сохраняет.
package report

import (
	"errors"
	"strings"

	"github.com/pribylovaa/go-blog-comments/internal/models"
)

var (
	// ErrNoReason — отправка без выбранной причины.
	ErrNoReason = errors.New("select a reason")
	// ErrClosed — действие над закрытым диалогом.
	ErrClosed = errors.New("report dialog is closed")
)

// MaxDetailsLength — ограничение на пояснение к жалобе (в символах).
const MaxDetailsLength = 1000

// Intent — готовая к отправке жалоба.
type Intent struct {
	ID      models.ID
	Reason  models.ReportReason
	Details string
}

// Target — id комментария, на который жалуются.
func (i Intent) Target() models.ID { return i.ID }

// Request — тело запроса для бэкенда.
func (i Intent) Request() models.ReportRequest {
	return models.ReportRequest{Reason: i.Reason, AdditionalInfo: i.Details}
}

// Dialog — модальный диалог жалобы.
type Dialog struct {
	open       bool
	target     models.ID
	reason     models.ReportReason
	details    string
	submitting bool
	err        error
}

func (d *Dialog) IsOpen() bool                { return d.open }
func (d *Dialog) Target() models.ID           { return d.target }
func (d *Dialog) Reason() models.ReportReason { return d.reason }
func (d *Dialog) Details() string             { return d.details }
func (d *Dialog) Submitting() bool            { return d.submitting }
func (d *Dialog) Err() error                  { return d.err }

// Open показывает диалог для комментария id. Повторное открытие для того же
// комментария сохраняет введённые данные, для другого — начинает с чистой формы.
func (d *Dialog) Open(id models.ID) {
	if d.target != id {
		d.reset()
	}

	d.open = true
	d.target = id
	d.err = nil
}

// Select выбирает причину.
func (d *Dialog) Select(r models.ReportReason) error {
	if !r.Valid() {
		return models.ErrUnknownReason
	}

	d.reason = r
	if errors.Is(d.err, ErrNoReason) {
		d.err = nil
	}

	return nil
}

// SetDetails задаёт необязательное пояснение (обрезается до MaxDetailsLength).
func (d *Dialog) SetDetails(s string) {
	if r := []rune(s); len(r) > MaxDetailsLength {
		s = string(r[:MaxDetailsLength])
	}

	d.details = s
}

// Submit проверяет форму и возвращает intent для оркестратора.
// Пока отправка не завершилась, повторный Submit ничего не делает.
func (d *Dialog) Submit() (Intent, bool, error) {
	if !d.open {
		return Intent{}, false, ErrClosed
	}

	if d.submitting {
		return Intent{}, false, nil
	}

	if d.reason == "" {
		d.err = ErrNoReason
		return Intent{}, false, ErrNoReason
	}

	d.submitting = true
	d.err = nil
	return Intent{
		ID:      d.target,
		Reason:  d.reason,
		Details: strings.TrimSpace(d.details),
	}, true, nil
}

// Succeeded закрывает диалог и очищает форму.
func (d *Dialog) Succeeded() {
	d.open = false
	d.reset()
}

// Failed оставляет диалог открытым с введёнными данными.
func (d *Dialog) Failed(err error) {
	d.submitting = false
	d.err = err
}

// Cancel закрывает диалог и очищает форму.
func (d *Dialog) Cancel() {
	d.open = false
	d.reset()
}

func (d *Dialog) reset() {
	d.target = ""
	d.reason = ""
	d.details = ""
	d.submitting = false
	d.err = nil
}
