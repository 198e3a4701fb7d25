package services

import (
	"context"
	"time"

	"hostel-backend/internal/repositories"
	"hostel-backend/internal/utils"
)

// StatusRefresher flips the cached hostler status from Paid to Pending once
// the due-date cursor is reached. It never marks anyone Paid.
type StatusRefresher struct {
	Hostlers  repositories.HostlerStore
	RequestID string
}

func (s StatusRefresher) Refresh(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.Hostlers.MarkOverdue(ctx, utils.DateOf(now))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		utils.LogEventf(s.RequestID, "status", "refresh", "marked_pending=%d as_of=%s", n, utils.FormatDate(now))
	}
	return n, nil
}
