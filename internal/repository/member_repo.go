package repository

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/fsdevblog/titans-ledger/internal/domain"
	"github.com/fsdevblog/titans-ledger/internal/store"
)

type memberPayload struct {
	Name               string          `json:"name"`
	Email              string          `json:"email"`
	Phone              string          `json:"phone"`
	Address            string          `json:"address"`
	NationalID         string          `json:"nationalId"`
	Shares             int64           `json:"shares"`
	Status             string          `json:"status"`
	DateJoined         time.Time       `json:"dateJoined"`
	TotalContributions decimal.Decimal `json:"totalContributions"`
	TotalBorrowings    decimal.Decimal `json:"totalBorrowings"`
	TotalRepayments    decimal.Decimal `json:"totalRepayments"`
	OutstandingBalance decimal.Decimal `json:"outstandingBalance"`
}

func memberToPayload(m domain.Member) memberPayload {
	return memberPayload{
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Address:            m.Address,
		NationalID:         m.NationalID,
		Shares:             m.Shares,
		Status:             string(m.Status),
		DateJoined:         m.DateJoined,
		TotalContributions: m.TotalContributions,
		TotalBorrowings:    m.TotalBorrowings,
		TotalRepayments:    m.TotalRepayments,
		OutstandingBalance: m.OutstandingBalance,
	}
}

func memberFromRecord(record store.Record) (*domain.Member, error) {
	var payload memberPayload
	if err := json.Unmarshal(record.Data, &payload); err != nil {
		return nil, pkgerrors.Wrapf(err, "[repository] decode member %s", record.ID)
	}
	return &domain.Member{
		ID:                 record.ID,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		Version:            record.Version,
		Name:               payload.Name,
		Email:              payload.Email,
		Phone:              payload.Phone,
		Address:            payload.Address,
		NationalID:         payload.NationalID,
		Shares:             payload.Shares,
		Status:             domain.MemberStatusType(payload.Status),
		DateJoined:         payload.DateJoined,
		TotalContributions: payload.TotalContributions,
		TotalBorrowings:    payload.TotalBorrowings,
		TotalRepayments:    payload.TotalRepayments,
		OutstandingBalance: payload.OutstandingBalance,
	}, nil
}

type MemberRepo struct {
	client store.Client
}

func (r *MemberRepo) Create(ctx context.Context, member domain.Member) (*domain.Member, error) {
	data, err := marshalPayload(memberToPayload(member))
	if err != nil {
		return nil, err
	}
	record, createErr := r.client.Create(ctx, store.TypeMember, data)
	if createErr != nil {
		return nil, convertErr(createErr, "create member")
	}
	return memberFromRecord(*record)
}

func (r *MemberRepo) Get(ctx context.Context, id string) (*domain.Member, error) {
	record, err := r.client.Get(ctx, store.TypeMember, id)
	if err != nil {
		return nil, convertErr(err, "get member "+id)
	}
	return memberFromRecord(*record)
}

// Update перезаписывает участника условно по member.Version. При гонке
// вернется domain.ErrVersionConflict - вызывающая сторона перечитывает и
// повторяет.
func (r *MemberRepo) Update(ctx context.Context, member domain.Member) (*domain.Member, error) {
	data, err := marshalPayload(memberToPayload(member))
	if err != nil {
		return nil, err
	}
	record, updateErr := r.client.Update(ctx, store.TypeMember, member.ID, data, member.Version)
	if updateErr != nil {
		return nil, convertErr(updateErr, "update member "+member.ID)
	}
	return memberFromRecord(*record)
}

func (r *MemberRepo) ListAll(ctx context.Context) ([]domain.Member, error) {
	records, err := r.client.ListByType(ctx, store.TypeMember, store.DefaultListLimit)
	if err != nil {
		return nil, convertErr(err, "list members")
	}
	members := make([]domain.Member, 0, len(records))
	for _, record := range records {
		member, decodeErr := memberFromRecord(record)
		if decodeErr != nil {
			return nil, decodeErr
		}
		members = append(members, *member)
	}
	return members, nil
}
