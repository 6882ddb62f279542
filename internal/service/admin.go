package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yizeng/gab/gin/gorm/lotto/internal/domain"
)

// Reset empties the draw: all tickets and non-admin users are removed and ticket ids restart at 1.
// Replica documents are left as they are.
func (s *LottoService) Reset(ctx context.Context) (domain.ResetSummary, error) {
	tickets, users, err := s.repo.Reset(ctx)
	if err != nil {
		return domain.ResetSummary{}, fmt.Errorf("s.repo.Reset -> %w", err)
	}

	zap.L().Info("system reset", zap.Int64("tickets_deleted", tickets), zap.Int64("users_deleted", users))

	return domain.ResetSummary{
		TicketsDeleted: tickets,
		UsersDeleted:   users,
	}, nil
}
