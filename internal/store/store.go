// Package store реализует клиент обобщенного объектного хранилища: записи
// произвольного типа с JSON-содержимым, версией и четырьмя операциями
// create/update/get/list-by-type. Фильтрации на стороне хранилища нет,
// выборки - полные сканы с потолком размера страницы.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// Collection types known to the ledger engine.
const (
	TypeMember           = "member"
	TypeContribution     = "contribution"
	TypeBorrowing        = "borrowing"
	TypeRepayment        = "repayment"
	TypeInterestAccrual  = "interest_calculation"
	TypeTokenTransaction = "token_transaction"
)

// DefaultListLimit - фиксированный потолок размера страницы для полных сканов.
const DefaultListLimit = 1000

var (
	ErrNotFound = errors.New("[store] record not found")
	// ErrVersionConflict возвращается условным Update, когда версия записи
	// изменилась между чтением и записью.
	ErrVersionConflict = errors.New("[store] version conflict")
)

// Record - запись хранилища: непрозрачный JSON-payload плюс служебные поля.
type Record struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Version   int64           `json:"version"`
	Data      json.RawMessage `json:"data"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Client - контракт объектного хранилища. Update условен по версии: запись
// обновляется только если её текущая версия равна expectedVersion, иначе
// возвращается ErrVersionConflict. Это основа оптимистичной блокировки
// read-modify-write циклов над кэшированными агрегатами участника.
type Client interface {
	Create(ctx context.Context, typ string, data json.RawMessage) (*Record, error)
	Get(ctx context.Context, typ, id string) (*Record, error)
	Update(ctx context.Context, typ, id string, data json.RawMessage, expectedVersion int64) (*Record, error)
	ListByType(ctx context.Context, typ string, limit int) ([]Record, error)
	Close() error
}
