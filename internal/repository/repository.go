// Package repository - типизированные репозитории поверх клиента объектного
// хранилища. Репозиторий кодирует доменную сущность в JSON-payload записи и
// обратно. Выборок по участнику на стороне хранилища нет: ListByMember - это
// полный скан коллекции с фильтрацией на клиенте.
package repository

import (
	"encoding/json"

	pkgerrors "github.com/pkg/errors"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/store"
)

// Registry собирает все репозитории над одним клиентом хранилища.
type Registry struct {
	Members           *MemberRepo
	Contributions     *ContributionRepo
	Borrowings        *BorrowingRepo
	Repayments        *RepaymentRepo
	InterestAccruals  *InterestAccrualRepo
	TokenTransactions *TokenTransactionRepo
}

func NewRegistry(client store.Client) *Registry {
	return &Registry{
		Members:           &MemberRepo{client: client},
		Contributions:     NewContributionRepo(client),
		Borrowings:        NewBorrowingRepo(client),
		Repayments:        NewRepaymentRepo(client),
		InterestAccruals:  NewInterestAccrualRepo(client),
		TokenTransactions: NewTokenTransactionRepo(client),
	}
}

// convertErr приводит ошибки хранилища к доменным. Контекст добавляется
// в сообщение, тип ошибки сохраняется для errors.Is на верхних слоях.
func convertErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch {
	case pkgerrors.Is(err, store.ErrNotFound):
		return pkgerrors.Wrapf(domain.ErrRecordNotFound, "[repository] %s", msg)
	case pkgerrors.Is(err, store.ErrVersionConflict):
		return pkgerrors.Wrapf(domain.ErrVersionConflict, "[repository] %s", msg)
	default:
		return pkgerrors.Wrapf(domain.ErrStore, "[repository] %s: %s", msg, err.Error())
	}
}

func marshalPayload(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "[repository] marshal payload")
	}
	return data, nil
}
