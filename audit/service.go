// audit/service.go
package audit

import (
	"context"
	"time"
)

type Service interface {
	LogTransition(ctx context.Context, log TransitionLog) error
	QueryTrail(ctx context.Context, from, to time.Time, grantID, subjectID string) ([]TransitionLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogTransition(ctx context.Context, log TransitionLog) error {
	return s.repo.LogTransition(ctx, log)
}

func (s *service) QueryTrail(ctx context.Context, from, to time.Time, grantID, subjectID string) ([]TransitionLog, error) {
	return s.repo.QueryTrail(ctx, from, to, grantID, subjectID)
}
