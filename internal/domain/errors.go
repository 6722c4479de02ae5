package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRecordNotFound  = errors.New("record not found")
	ErrVersionConflict = errors.New("version conflict")
	ErrStore           = errors.New("store failure")
	ErrUnknown         = errors.New("unknown error")
)

// ValidationError - ошибка пользовательского ввода. Не доходит до хранилища
// и отдается вызывающей стороне как есть.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AggregateUpdateError сигнализирует о расхождении журнала и кэшированных
// агрегатов: событие записано, а обновить участника не удалось. Запись
// события не откатывается, вызывающая сторона должна знать id осиротевшего
// события.
type AggregateUpdateError struct {
	EventType string
	EventID   string
	MemberID  string
	Err       error
}

func (e *AggregateUpdateError) Error() string {
	return fmt.Sprintf(
		"%s %s recorded but member %s aggregate update failed: %s",
		e.EventType, e.EventID, e.MemberID, e.Err.Error(),
	)
}

func (e *AggregateUpdateError) Unwrap() error {
	return e.Err
}

// BatchFailure - ошибка обработки одного участника внутри пакетного прогона.
type BatchFailure struct {
	MemberID   string
	MemberName string
	Err        error
}

// BatchError накапливает ошибки пакетного начисления процентов. Прогон не
// прерывается на первой ошибке, поэтому ошибок может быть несколько.
type BatchError struct {
	Failures []BatchFailure
}

func (e *BatchError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.MemberID
	}
	return fmt.Sprintf("period-end batch failed for %d member(s): %s", len(e.Failures), strings.Join(names, ", "))
}
