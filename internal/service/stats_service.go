package service

import (
	"context"

	"github.com/mkurosawa/marketplace-backend/internal/repository"
)

type StatsService interface {
	RecordVisit(ctx context.Context)
}

type statsService struct {
	repo repository.StatsRepository
}

func NewStatsService(repo repository.StatsRepository) StatsService {
	return &statsService{repo: repo}
}

// RecordVisit is best-effort; a failed counter bump never breaks the
// page view it was counting.
func (s *statsService) RecordVisit(ctx context.Context) {
	_ = s.repo.Increment(ctx)
}
