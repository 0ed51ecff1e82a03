// service/grant_service.go
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/accesskit/grantd/audit"
	"github.com/accesskit/grantd/catalog"
	"github.com/accesskit/grantd/dao"
	grantd_errors "github.com/accesskit/grantd/errors"
	"github.com/accesskit/grantd/hooks"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
	"github.com/accesskit/grantd/scheduler"
	"github.com/accesskit/grantd/util"
)

// GrantService owns the authoritative state of every grant and its valid
// transitions. All mutation goes through it; per-grant operations are
// serialized with a keyed mutex so concurrent decide/expire/revoke calls
// on the same grant cannot interleave, while different grants proceed in
// parallel.
type GrantService struct {
	store           dao.GrantStore
	catalog         *catalog.Catalog
	dispatcher      *hooks.Dispatcher
	scheduler       *scheduler.ExpiryScheduler
	cacheService    GrantCache
	notificationSvc Notifier
	eventBus        *util.EventBus
	auditSvc        audit.Service

	locks sync.Map // grant ID -> *sync.Mutex
	now   func() time.Time
}

// NewGrantService creates the grant state machine and its expiry
// scheduler. The scheduler is owned by the service; callers drive it via
// Scheduler().
func NewGrantService(
	store dao.GrantStore,
	cat *catalog.Catalog,
	dispatcher *hooks.Dispatcher,
	cacheService GrantCache,
	notificationSvc Notifier,
	eventBus *util.EventBus,
	auditSvc audit.Service,
) *GrantService {
	s := &GrantService{
		store:           store,
		catalog:         cat,
		dispatcher:      dispatcher,
		cacheService:    cacheService,
		notificationSvc: notificationSvc,
		eventBus:        eventBus,
		auditSvc:        auditSvc,
		now:             time.Now,
	}
	s.scheduler = scheduler.NewExpiryScheduler(s)

	// Set up event subscriptions
	eventBus.Subscribe("grant.activated", s.handleGrantChanged)
	eventBus.Subscribe("grant.denied", s.handleGrantChanged)
	eventBus.Subscribe("grant.expired", s.handleGrantChanged)
	eventBus.Subscribe("grant.revoked", s.handleGrantChanged)

	return s
}

// Scheduler returns the expiry scheduler owned by this service
func (s *GrantService) Scheduler() *scheduler.ExpiryScheduler {
	return s.scheduler
}

// SetNowFunc overrides the service clock. Test hook.
func (s *GrantService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// AccessTimeOptions returns the active access-time catalog
func (s *GrantService) AccessTimeOptions() []model.AccessTimeOption {
	return s.catalog.Options()
}

func (s *GrantService) handleGrantChanged(ctx context.Context, event util.Event) error {
	grant, ok := event.Payload.(*model.Grant)
	if !ok {
		logger.Error("Invalid event payload type", zap.Any("payload", event.Payload))
		return fmt.Errorf("invalid event payload type: %T", event.Payload)
	}

	// Channel delivery belongs to the notification providers; the bus
	// handler keeps the cache honest and escalates revocations.
	if err := s.cacheService.DeleteGrant(ctx, grant.ID); err != nil {
		logger.Warn("Failed to invalidate grant cache from event",
			zap.Error(err),
			zap.String("grantID", grant.ID))
	}
	if grant.State == model.StateRevoked {
		message := fmt.Sprintf("grant %s for subject %s on resource %s was revoked: %s",
			grant.ID, grant.SubjectID, grant.ResourceID, grant.RevocationReason)
		if err := s.notificationSvc.NotifyAdmins(ctx, message); err != nil {
			logger.Warn("Failed to escalate revocation to admins",
				zap.Error(err),
				zap.String("grantID", grant.ID))
		}
	}
	return nil
}

// lockGrant acquires the per-grant mutex and returns its unlock func
func (s *GrantService) lockGrant(grantID string) func() {
	v, _ := s.locks.LoadOrStore(grantID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// RequestAccess validates the request, resolves its lifetime and creates
// a grant in the requested state. Validation failures reject the request
// before any state exists.
func (s *GrantService) RequestAccess(ctx context.Context, req model.AccessRequest) (*model.Grant, error) {
	lifetime, err := s.catalog.Resolve(req.OptionKey, req.CustomSeconds)
	if err != nil {
		logger.Warn("Rejected access request with invalid duration",
			zap.String("subjectID", req.SubjectID),
			zap.String("optionKey", req.OptionKey),
			zap.Error(err))
		return nil, err
	}

	grant := &model.Grant{
		ID:          uuid.New().String(),
		SubjectID:   req.SubjectID,
		ResourceID:  req.ResourceID,
		Reason:      req.Reason,
		Lifetime:    lifetime,
		State:       model.StateRequested,
		RequestedAt: s.now(),
	}

	if err := s.store.Save(ctx, grant); err != nil {
		return nil, err
	}

	s.auditTransition(ctx, grant, "request", "", model.StateRequested, req.Reason, req.SubjectID)
	s.dispatcher.Dispatch(ctx, model.EventGrantRequested, grant)

	logger.Info("Access requested",
		zap.String("grantID", grant.ID),
		zap.String("subjectID", grant.SubjectID),
		zap.String("resourceID", grant.ResourceID),
		zap.Bool("indefinite", lifetime.Indefinite),
		zap.Int64("lifetimeSeconds", lifetime.Seconds))
	return grant, nil
}

// Decide approves or denies a requested grant. On approval the
// pre-activation hooks run first: any veto sends the grant to denied
// with the vetoing provider's reason; otherwise it is approved and
// immediately activated, and finite lifetimes get a scheduled expiry.
func (s *GrantService) Decide(ctx context.Context, grantID string, approve bool, deciderID string) (*model.Grant, error) {
	unlock := s.lockGrant(grantID)
	defer unlock()

	grant, err := s.store.Load(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if grant.State != model.StateRequested {
		logger.Warn("Decision on grant not in requested state",
			zap.String("grantID", grantID),
			zap.String("state", string(grant.State)))
		return nil, grantd_errors.ErrInvalidTransition
	}

	grant.DecidedBy = deciderID

	if !approve {
		return s.deny(ctx, grant, "denied by "+deciderID, deciderID)
	}

	result := s.dispatcher.Dispatch(ctx, model.EventPreActivation, grant)
	if provider, reason, vetoed := result.Vetoed(); vetoed {
		logger.Info("Grant vetoed by provider",
			zap.String("grantID", grantID),
			zap.String("provider", provider),
			zap.String("reason", reason))
		return s.deny(ctx, grant, reason, provider)
	}

	// Approved; activation follows immediately
	grant.State = model.StateApproved
	now := s.now()
	grant.ActivatedAt = &now
	if grant.Lifetime.Finite() {
		expiresAt := now.Add(grant.Lifetime.Duration())
		grant.ExpiresAt = &expiresAt
	}
	grant.State = model.StateActive

	if err := s.store.Save(ctx, grant); err != nil {
		return nil, err
	}
	if grant.ExpiresAt != nil {
		s.scheduler.Enqueue(grant.ID, *grant.ExpiresAt)
	}

	s.invalidateCache(ctx, grant.ID)
	s.auditTransition(ctx, grant, "approve", model.StateRequested, model.StateActive, "", deciderID)
	s.eventBus.Publish(ctx, "grant.activated", grant)
	s.dispatcher.Dispatch(ctx, model.EventGrantActivated, grant)

	logger.Info("Grant activated",
		zap.String("grantID", grant.ID),
		zap.String("decidedBy", deciderID),
		zap.Timep("expiresAt", grant.ExpiresAt))
	return grant, nil
}

func (s *GrantService) deny(ctx context.Context, grant *model.Grant, reason, actor string) (*model.Grant, error) {
	grant.State = model.StateDenied
	grant.DenialReason = reason

	if err := s.store.Save(ctx, grant); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, grant.ID)
	s.auditTransition(ctx, grant, "deny", model.StateRequested, model.StateDenied, reason, actor)
	s.eventBus.Publish(ctx, "grant.denied", grant)
	s.dispatcher.Dispatch(ctx, model.EventGrantDenied, grant)

	logger.Info("Grant denied",
		zap.String("grantID", grant.ID),
		zap.String("reason", reason))
	return grant, nil
}

// Expire transitions an active grant whose lifetime has elapsed to
// expired. It is driven by the scheduler; calling it early or on a grant
// in any other state fails with ErrInvalidTransition and has no effect.
func (s *GrantService) Expire(ctx context.Context, grantID string) error {
	unlock := s.lockGrant(grantID)
	defer unlock()

	grant, err := s.store.Load(ctx, grantID)
	if err != nil {
		return err
	}
	if grant.State != model.StateActive || grant.ExpiresAt == nil {
		return grantd_errors.ErrInvalidTransition
	}
	if s.now().Before(*grant.ExpiresAt) {
		logger.Warn("Premature expire call",
			zap.String("grantID", grantID),
			zap.Time("expiresAt", *grant.ExpiresAt))
		return grantd_errors.ErrInvalidTransition
	}

	grant.State = model.StateExpired
	if err := s.store.Save(ctx, grant); err != nil {
		return err
	}

	s.invalidateCache(ctx, grant.ID)
	s.auditTransition(ctx, grant, "expire", model.StateActive, model.StateExpired, "lifetime elapsed", "scheduler")
	s.eventBus.Publish(ctx, "grant.expired", grant)
	s.dispatcher.Dispatch(ctx, model.EventGrantExpired, grant)

	logger.Info("Grant expired", zap.String("grantID", grant.ID))
	return nil
}

// Revoke ends an approved or active grant early. The pending schedule
// entry is canceled before this returns, so no late expire can fire for
// the grant afterwards.
func (s *GrantService) Revoke(ctx context.Context, grantID, reason string) (*model.Grant, error) {
	unlock := s.lockGrant(grantID)
	defer unlock()

	grant, err := s.store.Load(ctx, grantID)
	if err != nil {
		return nil, err
	}
	if grant.State != model.StateApproved && grant.State != model.StateActive {
		return nil, grantd_errors.ErrInvalidTransition
	}

	s.scheduler.Cancel(grant.ID)

	fromState := grant.State
	grant.State = model.StateRevoked
	grant.RevocationReason = reason
	now := s.now()
	grant.RevokedAt = &now

	if err := s.store.Save(ctx, grant); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, grant.ID)
	s.auditTransition(ctx, grant, "revoke", fromState, model.StateRevoked, reason, "")
	s.eventBus.Publish(ctx, "grant.revoked", grant)
	s.dispatcher.Dispatch(ctx, model.EventGrantRevoked, grant)

	logger.Info("Grant revoked",
		zap.String("grantID", grant.ID),
		zap.String("reason", reason))
	return grant, nil
}

// GetGrant reads a grant, preferring the cache
func (s *GrantService) GetGrant(ctx context.Context, grantID string) (*model.Grant, error) {
	if cached, err := s.cacheService.GetGrant(ctx, grantID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		logger.Warn("Grant cache read failed", zap.Error(err), zap.String("grantID", grantID))
	}

	grant, err := s.store.Load(ctx, grantID)
	if err != nil {
		return nil, err
	}

	if err := s.cacheService.SetGrant(ctx, grant); err != nil {
		logger.Warn("Failed to cache grant", zap.Error(err), zap.String("grantID", grantID))
	}
	return grant, nil
}

// ListActiveGrants returns every grant currently in the active state
func (s *GrantService) ListActiveGrants(ctx context.Context) ([]*model.Grant, error) {
	return s.store.ListActive(ctx)
}

// RehydrateScheduler rebuilds the expiry queue from persisted active
// grants, typically right after startup
func (s *GrantService) RehydrateScheduler(ctx context.Context) error {
	grants, err := s.store.ListActive(ctx)
	if err != nil {
		return err
	}
	s.scheduler.Rehydrate(ctx, grants)
	return nil
}

func (s *GrantService) invalidateCache(ctx context.Context, grantID string) {
	if err := s.cacheService.DeleteGrant(ctx, grantID); err != nil {
		logger.Warn("Failed to invalidate grant cache",
			zap.Error(err),
			zap.String("grantID", grantID))
	}
}

func (s *GrantService) auditTransition(ctx context.Context, grant *model.Grant, transition string, from, to model.GrantState, reason, actor string) {
	entry := audit.TransitionLog{
		Timestamp:  s.now(),
		GrantID:    grant.ID,
		SubjectID:  grant.SubjectID,
		ResourceID: grant.ResourceID,
		Transition: transition,
		FromState:  string(from),
		ToState:    string(to),
		Reason:     reason,
		Actor:      actor,
	}
	if err := s.auditSvc.LogTransition(ctx, entry); err != nil {
		logger.Error("Failed to write audit log",
			zap.Error(err),
			zap.String("grantID", grant.ID),
			zap.String("transition", transition))
	}
}
