package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsdevblog/titans-ledger/internal/domain"
)

// memberUpdateRetries - предел повторов read-modify-write цикла при гонке
// версий записи участника.
const memberUpdateRetries = 3

// applyMemberUpdate выполняет read-modify-write участника с оптимистичной
// блокировкой: читает свежую запись, применяет apply и пишет условно по
// версии. При domain.ErrVersionConflict цикл повторяется, чтобы параллельная
// запись другого события не потерялась (классический lost update).
func applyMemberUpdate(
	ctx context.Context,
	members MemberRepository,
	memberID string,
	apply func(*domain.Member),
) (*domain.Member, error) {
	var lastErr error
	for attempt := 0; attempt < memberUpdateRetries; attempt++ {
		member, getErr := members.Get(ctx, memberID)
		if getErr != nil {
			return nil, getErr
		}

		apply(member)

		updated, updateErr := members.Update(ctx, *member)
		if updateErr == nil {
			return updated, nil
		}
		if !errors.Is(updateErr, domain.ErrVersionConflict) {
			return nil, updateErr
		}
		lastErr = updateErr
	}
	return nil, fmt.Errorf("member %s update retries exhausted: %w", memberID, lastErr)
}
