// dao/grant_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
	helper_util "github.com/accesskit/grantd/util/helper"
)

// GrantStore is the persistence collaborator contract the core consumes.
// Each Save must persist the full grant record atomically; the core never
// deletes grants, only marks them terminal.
type GrantStore interface {
	Load(ctx context.Context, grantID string) (*model.Grant, error)
	Save(ctx context.Context, grant *model.Grant) error
	ListActive(ctx context.Context) ([]*model.Grant, error)
}

// GrantDAO persists grants as GRANT nodes in Neo4j
type GrantDAO struct {
	Driver neo4j.Driver
}

func NewGrantDAO(driver neo4j.Driver) *GrantDAO {
	dao := &GrantDAO{Driver: driver}
	// Ensure unique constraint on Grant ID
	ctx := context.Background()
	if err := dao.EnsureUniqueConstraint(ctx); err != nil {
		logger.Fatal("Failed to ensure unique constraint", zap.Error(err))
	}
	return dao
}

// EnsureUniqueConstraint ensures the unique constraint on the Grant ID
func (dao *GrantDAO) EnsureUniqueConstraint(ctx context.Context) error {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() {
		if err := session.Close(); err != nil {
			logger.Error("Failed to close Neo4j session", zap.Error(err))
		}
	}()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        CREATE CONSTRAINT unique_grant_id IF NOT EXISTS
        FOR (g:GRANT) REQUIRE g.id IS UNIQUE
        `
		_, err := transaction.Run(query, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create unique constraint: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		logger.Error("Failed to ensure unique constraint on Grant ID", zap.Error(err))
		return err
	}

	return nil
}

// Save upserts the full grant record
func (dao *GrantDAO) Save(ctx context.Context, grant *model.Grant) error {
	start := time.Now()
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close()

	_, err := session.WriteTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MERGE (g:GRANT {id: $id})
        ON CREATE SET g += $props
        ON MATCH SET g += $props
        RETURN g.id as id
        `
		parameters := map[string]interface{}{
			"id": grant.ID,
			"props": map[string]interface{}{
				"subjectId":          grant.SubjectID,
				"resourceId":         grant.ResourceID,
				"reason":             grant.Reason,
				"state":              string(grant.State),
				"lifetimeSeconds":    grant.Lifetime.Seconds,
				"lifetimeIndefinite": grant.Lifetime.Indefinite,
				"decidedBy":          grant.DecidedBy,
				"denialReason":       grant.DenialReason,
				"revocationReason":   grant.RevocationReason,
				"requestedAt":        grant.RequestedAt.Format(time.RFC3339),
				"activatedAt":        formatNullableTime(grant.ActivatedAt),
				"expiresAt":          formatNullableTime(grant.ExpiresAt),
				"revokedAt":          formatNullableTime(grant.RevokedAt),
			},
		}
		result, err := transaction.Run(query, parameters)
		if err != nil {
			return nil, grantd_errors.ErrDatabaseOperation
		}
		if !result.Next() {
			return nil, grantd_errors.ErrInternalServer
		}
		return nil, nil
	})

	duration := time.Since(start)
	if err != nil {
		logger.Error("Failed to save grant",
			zap.Error(err),
			zap.String("grantID", grant.ID),
			zap.Duration("duration", duration))
		return fmt.Errorf("%w: %v", grantd_errors.ErrPersistenceUnavailable, err)
	}

	logger.Debug("Grant saved",
		zap.String("grantID", grant.ID),
		zap.String("state", string(grant.State)),
		zap.Duration("duration", duration))
	return nil
}

// Load fetches one grant by ID
func (dao *GrantDAO) Load(ctx context.Context, grantID string) (*model.Grant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:GRANT {id: $id})
        RETURN g
        `
		queryResult, err := transaction.Run(query, map[string]interface{}{"id": grantID})
		if err != nil {
			return nil, grantd_errors.ErrDatabaseOperation
		}
		if queryResult.Next() {
			node, found := queryResult.Record().Get("g")
			if !found {
				return nil, grantd_errors.ErrInternalServer
			}
			return grantFromNode(node.(neo4j.Node))
		}
		return nil, grantd_errors.ErrGrantNotFound
	})
	if err != nil {
		if err == grantd_errors.ErrGrantNotFound {
			return nil, err
		}
		logger.Error("Failed to load grant", zap.Error(err), zap.String("grantID", grantID))
		return nil, fmt.Errorf("%w: %v", grantd_errors.ErrPersistenceUnavailable, err)
	}

	return result.(*model.Grant), nil
}

// ListActive fetches every grant currently in the active state, used to
// rehydrate the expiry scheduler after a restart
func (dao *GrantDAO) ListActive(ctx context.Context) ([]*model.Grant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(transaction neo4j.Transaction) (interface{}, error) {
		query := `
        MATCH (g:GRANT {state: $state})
        RETURN g
        ORDER BY g.requestedAt
        `
		queryResult, err := transaction.Run(query, map[string]interface{}{"state": string(model.StateActive)})
		if err != nil {
			return nil, grantd_errors.ErrDatabaseOperation
		}

		var grants []*model.Grant
		for queryResult.Next() {
			node, found := queryResult.Record().Get("g")
			if !found {
				continue
			}
			grant, err := grantFromNode(node.(neo4j.Node))
			if err != nil {
				return nil, err
			}
			grants = append(grants, grant)
		}
		return grants, nil
	})
	if err != nil {
		logger.Error("Failed to list active grants", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", grantd_errors.ErrPersistenceUnavailable, err)
	}

	return result.([]*model.Grant), nil
}

func grantFromNode(node neo4j.Node) (*model.Grant, error) {
	props := node.Props

	grant := &model.Grant{
		ID:               stringProp(props, "id"),
		SubjectID:        stringProp(props, "subjectId"),
		ResourceID:       stringProp(props, "resourceId"),
		Reason:           stringProp(props, "reason"),
		State:            model.GrantState(stringProp(props, "state")),
		DecidedBy:        stringProp(props, "decidedBy"),
		DenialReason:     stringProp(props, "denialReason"),
		RevocationReason: stringProp(props, "revocationReason"),
		Lifetime: model.LifetimePolicy{
			Seconds:    intProp(props, "lifetimeSeconds"),
			Indefinite: boolProp(props, "lifetimeIndefinite"),
		},
	}

	requestedAt, err := time.Parse(time.RFC3339, stringProp(props, "requestedAt"))
	if err != nil {
		return nil, fmt.Errorf("malformed requestedAt on grant %s: %w", grant.ID, err)
	}
	grant.RequestedAt = requestedAt

	if grant.ActivatedAt, err = helper_util.ParseNullableTime(props["activatedAt"]); err != nil {
		return nil, fmt.Errorf("malformed activatedAt on grant %s: %w", grant.ID, err)
	}
	if grant.ExpiresAt, err = helper_util.ParseNullableTime(props["expiresAt"]); err != nil {
		return nil, fmt.Errorf("malformed expiresAt on grant %s: %w", grant.ID, err)
	}
	if grant.RevokedAt, err = helper_util.ParseNullableTime(props["revokedAt"]); err != nil {
		return nil, fmt.Errorf("malformed revokedAt on grant %s: %w", grant.ID, err)
	}

	return grant, nil
}

func formatNullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func stringProp(props map[string]interface{}, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func intProp(props map[string]interface{}, key string) int64 {
	if v, ok := props[key].(int64); ok {
		return v
	}
	return 0
}

func boolProp(props map[string]interface{}, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}
