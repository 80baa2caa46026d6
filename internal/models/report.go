package models

import (
	"errors"
	"strings"
)

// ErrUnknownReason — причина жалобы вне фиксированного набора.
var ErrUnknownReason = errors.New("unknown report reason")

// ReportReason — причина жалобы на комментарий.
type ReportReason string

const (
	ReasonSpam                 ReportReason = "spam"
	ReasonHarassment           ReportReason = "harassment"
	ReasonHateSpeech           ReportReason = "hate_speech"
	ReasonMisinformation       ReportReason = "misinformation"
	ReasonInappropriateContent ReportReason = "inappropriate_content"
	ReasonOther                ReportReason = "other"
)

var reasonLabels = map[ReportReason]string{
	ReasonSpam:                 "Spam",
	ReasonHarassment:           "Harassment",
	ReasonHateSpeech:           "Hate speech",
	ReasonMisinformation:       "Misinformation",
	ReasonInappropriateContent: "Inappropriate content",
	ReasonOther:                "Other",
}

// ReportReasons возвращает причины в порядке показа.
func ReportReasons() []ReportReason {
	return []ReportReason{
		ReasonSpam,
		ReasonHarassment,
		ReasonHateSpeech,
		ReasonMisinformation,
		ReasonInappropriateContent,
		ReasonOther,
	}
}

// Label — человекочитаемое название причины.
func (r ReportReason) Label() string {
	if l, ok := reasonLabels[r]; ok {
		return l
	}

	return string(r)
}

// Valid — причина из фиксированного набора.
func (r ReportReason) Valid() bool {
	_, ok := reasonLabels[r]
	return ok
}

// ParseReportReason нормализует строку и проверяет принадлежность набору.
func ParseReportReason(s string) (ReportReason, error) {
	r := ReportReason(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrUnknownReason
	}

	return r, nil
}
