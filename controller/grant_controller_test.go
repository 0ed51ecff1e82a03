// controller/grant_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"go.uber.org/mock/gomock"

	"github.com/accesskit/grantd/audit"
	"github.com/accesskit/grantd/controller"
	grantd_errors "github.com/accesskit/grantd/errors"
	logger "github.com/accesskit/grantd/logging"
	"github.com/accesskit/grantd/model"
	grantd_mock "github.com/accesskit/grantd/test/mock"
	service_mock "github.com/accesskit/grantd/test/service_mock"
)

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

func TestGrantController(t *testing.T) {
	dir, err := os.MkdirTemp("", "controller-test")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)
	logger.InitLogger(dir)
	defer logger.Sync()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockGrantService := service_mock.NewMockIGrantService(ctrl)
	grantController := controller.NewGrantController(mockGrantService)
	router := setupRouter()
	api := router.Group("/")
	grantController.RegisterRoutes(api)

	t.Run("RequestAccess_Success", func(t *testing.T) {
		mockGrantService.EXPECT().
			RequestAccess(gomock.Any(), gomock.Any()).
			Return(&model.Grant{ID: "1", SubjectID: "alice", ResourceID: "prod-db", State: model.StateRequested}, nil)

		body := strings.NewReader(`{"subject_id":"alice","resource_id":"prod-db","reason":"oncall"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var grant model.Grant
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&grant))
		assert.Equal(t, "1", grant.ID)
		assert.Equal(t, model.StateRequested, grant.State)
	})

	t.Run("RequestAccess_Failure_MissingSubject", func(t *testing.T) {
		body := strings.NewReader(`{"resource_id":"prod-db"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RequestAccess_Failure_UnknownOption", func(t *testing.T) {
		mockGrantService.EXPECT().
			RequestAccess(gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrInvalidDurationOption)

		body := strings.NewReader(`{"subject_id":"alice","resource_id":"prod-db","option_key":"999"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RequestAccess_Failure_BadCustomDuration", func(t *testing.T) {
		mockGrantService.EXPECT().
			RequestAccess(gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrInvalidCustomDuration)

		body := strings.NewReader(`{"subject_id":"alice","resource_id":"prod-db","option_key":"custom"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("RequestAccess_Failure_PersistenceDown", func(t *testing.T) {
		mockGrantService.EXPECT().
			RequestAccess(gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrPersistenceUnavailable)

		body := strings.NewReader(`{"subject_id":"alice","resource_id":"prod-db"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Decide_Approve_Success", func(t *testing.T) {
		expiresAt := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		mockGrantService.EXPECT().
			Decide(gomock.Any(), "1", true, "admin").
			Return(&model.Grant{ID: "1", State: model.StateActive, ExpiresAt: &expiresAt}, nil)

		body := strings.NewReader(`{"approve":true,"decider_id":"admin"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants/1/decision", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var grant model.Grant
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&grant))
		assert.Equal(t, model.StateActive, grant.State)
		assert.NotNil(t, grant.ExpiresAt)
		assert.True(t, expiresAt.Equal(*grant.ExpiresAt))
	})

	t.Run("Decide_Failure_NotFound", func(t *testing.T) {
		mockGrantService.EXPECT().
			Decide(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrGrantNotFound)

		body := strings.NewReader(`{"approve":true,"decider_id":"admin"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants/missing/decision", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Decide_Failure_AlreadyDecided", func(t *testing.T) {
		mockGrantService.EXPECT().
			Decide(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrInvalidTransition)

		body := strings.NewReader(`{"approve":false,"decider_id":"admin"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants/1/decision", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Revoke_Success", func(t *testing.T) {
		mockGrantService.EXPECT().
			Revoke(gomock.Any(), "1", "incident over").
			Return(&model.Grant{ID: "1", State: model.StateRevoked, RevocationReason: "incident over"}, nil)

		body := strings.NewReader(`{"reason":"incident over"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants/1/revoke", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Revoke_Failure_TerminalState", func(t *testing.T) {
		mockGrantService.EXPECT().
			Revoke(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrInvalidTransition)

		body := strings.NewReader(`{"reason":"too late"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/grants/1/revoke", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("GetGrant_Success", func(t *testing.T) {
		mockGrantService.EXPECT().
			GetGrant(gomock.Any(), "1").
			Return(&model.Grant{ID: "1", State: model.StateActive}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/grants/1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("GetGrant_Failure_NotFound", func(t *testing.T) {
		mockGrantService.EXPECT().
			GetGrant(gomock.Any(), gomock.Any()).
			Return(nil, grantd_errors.ErrGrantNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/grants/missing", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("ListActiveGrants_Failure_BadPagination", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/grants?limit=abc", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("ListActiveGrants_Success", func(t *testing.T) {
		grants := []*model.Grant{
			{ID: "1", State: model.StateActive},
			{ID: "2", State: model.StateActive},
		}

		mockGrantService.EXPECT().
			ListActiveGrants(gomock.Any()).
			Return(grants, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/grants", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var listed []*model.Grant
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		assert.Len(t, listed, 2)
	})

	t.Run("ListAccessTimeOptions_Success", func(t *testing.T) {
		options := []model.AccessTimeOption{
			{Key: "43200", Label: "12 Hours", Seconds: 43200},
			{Key: "1209600", Label: "Two Weeks", Seconds: 1209600},
		}

		mockGrantService.EXPECT().
			AccessTimeOptions().
			Return(options)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/access-time-options", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var listed []model.AccessTimeOption
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		assert.Len(t, listed, 2)
		assert.Equal(t, "Two Weeks", listed[1].Label)
	})
}

func TestAuditController(t *testing.T) {
	dir, err := os.MkdirTemp("", "audit-controller-test")
	assert.NoError(t, err)
	defer os.RemoveAll(dir)
	logger.InitLogger(dir)
	defer logger.Sync()

	mockAuditService := &grantd_mock.MockAuditService{}
	auditController := controller.NewAuditController(mockAuditService)
	router := setupRouter()
	api := router.Group("/")
	auditController.RegisterRoutes(api)

	t.Run("GetGrantTrail_Success", func(t *testing.T) {
		trail := []audit.TransitionLog{
			{GrantID: "1", Transition: "request", ToState: "requested"},
			{GrantID: "1", Transition: "approve", FromState: "requested", ToState: "active"},
		}
		mockAuditService.
			On("QueryTrail", testify_mock.Anything, testify_mock.Anything, testify_mock.Anything, "1", "").
			Return(trail, nil).Once()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/grants/1/audit-trail", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var listed []audit.TransitionLog
		assert.NoError(t, json.NewDecoder(w.Body).Decode(&listed))
		assert.Len(t, listed, 2)
		mockAuditService.AssertExpectations(t)
	})

	t.Run("GetGrantTrail_Failure_BadTimestamp", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/grants/1/audit-trail?from=yesterday", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
