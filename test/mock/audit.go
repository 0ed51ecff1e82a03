// test/mock/audit.go
package mock

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/accesskit/grantd/audit"
)

// MockAuditService is a mock implementation of audit.Service
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) LogTransition(ctx context.Context, log audit.TransitionLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditService) QueryTrail(ctx context.Context, from, to time.Time, grantID, subjectID string) ([]audit.TransitionLog, error) {
	args := m.Called(ctx, from, to, grantID, subjectID)
	return args.Get(0).([]audit.TransitionLog), args.Error(1)
}
