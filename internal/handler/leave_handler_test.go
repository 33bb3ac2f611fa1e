package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushq/coordination-api/internal/middleware"
	"github.com/campushq/coordination-api/internal/models"
	appErrors "github.com/campushq/coordination-api/pkg/errors"
)

type leaveServiceMock struct {
	submitResp    *models.LeaveRequest
	submitErr     error
	reviewResp    *models.LeaveRequestWithParties
	reviewErr     error
	historyResp   []models.LeaveRequest
	historyErr    error
	lastReview    models.ReviewRequest
	lastStaffID   string
	submitCalled  bool
	approveCalled bool
	rejectCalled  bool
}

func (m *leaveServiceMock) Submit(ctx context.Context, claims *models.JWTClaims, req models.SubmitLeaveRequest) (*models.LeaveRequest, error) {
	m.submitCalled = true
	return m.submitResp, m.submitErr
}

func (m *leaveServiceMock) ListPending(ctx context.Context) ([]models.LeaveRequestWithParties, error) {
	return nil, nil
}

func (m *leaveServiceMock) Get(ctx context.Context, claims *models.JWTClaims, id int64) (*models.LeaveRequestWithParties, error) {
	return m.reviewResp, m.reviewErr
}

func (m *leaveServiceMock) History(ctx context.Context, claims *models.JWTClaims, coordinatorID string) ([]models.LeaveRequest, error) {
	m.lastStaffID = coordinatorID
	return m.historyResp, m.historyErr
}

func (m *leaveServiceMock) Approve(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.LeaveRequestWithParties, error) {
	m.approveCalled = true
	m.lastReview = req
	return m.reviewResp, m.reviewErr
}

func (m *leaveServiceMock) Reject(ctx context.Context, claims *models.JWTClaims, id int64, req models.ReviewRequest) (*models.LeaveRequestWithParties, error) {
	m.rejectCalled = true
	m.lastReview = req
	return m.reviewResp, m.reviewErr
}

func (m *leaveServiceMock) SubmitStatement(ctx context.Context, claims *models.JWTClaims, req models.SubmitLeaveStatementRequest) (*models.LeaveStatement, error) {
	return &models.LeaveStatement{ID: 1, LeaveRequestID: req.LeaveRequestID, StatementText: req.StatementText}, nil
}

func (m *leaveServiceMock) ListStatements(ctx context.Context, claims *models.JWTClaims, leaveRequestID int64) ([]models.LeaveStatementWithAuthor, error) {
	return nil, nil
}

func (m *leaveServiceMock) ExportHistory(ctx context.Context, claims *models.JWTClaims, coordinatorID, format string) ([]byte, string, string, error) {
	return []byte("id,status\n"), "text/csv", "leave-history-" + coordinatorID + ".csv", nil
}

func leaveTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Buffer
	if body != nil {
		reader = bytes.NewBuffer(body)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.Request = req
	return c, w
}

func TestLeaveHandlerSubmit(t *testing.T) {
	mockSvc := &leaveServiceMock{submitResp: &models.LeaveRequest{ID: 1, Status: models.StatusPending}}
	handler := NewLeaveHandler(mockSvc)

	payload, _ := json.Marshal(models.SubmitLeaveRequest{
		DeputyID:  "STF00002",
		StartDate: "2026-09-07",
		EndDate:   "2026-09-11",
	})
	c, w := leaveTestContext(t, http.MethodPost, "/leave-requests", payload)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "STF00001", Role: models.RoleCoordinator})

	handler.Submit(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, mockSvc.submitCalled)
}

func TestLeaveHandlerSubmitInvalidBody(t *testing.T) {
	mockSvc := &leaveServiceMock{}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodPost, "/leave-requests", []byte(`{"deputy_id":`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "STF00001", Role: models.RoleCoordinator})

	handler.Submit(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.submitCalled)
}

func TestLeaveHandlerApproveWithoutBody(t *testing.T) {
	mockSvc := &leaveServiceMock{reviewResp: &models.LeaveRequestWithParties{
		LeaveRequest: models.LeaveRequest{ID: 5, Status: models.StatusApproved},
	}}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodPut, "/leave-requests/5/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "ADM00001", Role: models.RoleAdmin})

	handler.Approve(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.approveCalled)
	assert.Empty(t, mockSvc.lastReview.AdminComments)
}

func TestLeaveHandlerRejectWithComments(t *testing.T) {
	mockSvc := &leaveServiceMock{reviewResp: &models.LeaveRequestWithParties{
		LeaveRequest: models.LeaveRequest{ID: 5, Status: models.StatusRejected},
	}}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodPut, "/leave-requests/5/reject", []byte(`{"admin_comments":"overlaps exams"}`))
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "ADM00001", Role: models.RoleAdmin})

	handler.Reject(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.rejectCalled)
	assert.Equal(t, "overlaps exams", mockSvc.lastReview.AdminComments)
}

func TestLeaveHandlerApproveConflict(t *testing.T) {
	mockSvc := &leaveServiceMock{reviewErr: appErrors.Clone(appErrors.ErrAlreadyProcessed, "leave request has already been processed")}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodPut, "/leave-requests/5/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "5"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "ADM00001", Role: models.RoleAdmin})

	handler.Approve(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLeaveHandlerApproveBadID(t *testing.T) {
	mockSvc := &leaveServiceMock{}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodPut, "/leave-requests/abc/approve", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "ADM00001", Role: models.RoleAdmin})

	handler.Approve(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.approveCalled)
}

func TestLeaveHandlerHistory(t *testing.T) {
	mockSvc := &leaveServiceMock{historyResp: []models.LeaveRequest{{ID: 1}, {ID: 2}}}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodGet, "/leave-requests/history/STF00001", nil)
	c.Params = gin.Params{{Key: "staff_id", Value: "STF00001"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "STF00001", Role: models.RoleCoordinator})

	handler.History(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "STF00001", mockSvc.lastStaffID)

	var envelope struct {
		Status  string `json:"status"`
		Results int    `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, 2, envelope.Results)
}

func TestLeaveHandlerExportHistory(t *testing.T) {
	mockSvc := &leaveServiceMock{}
	handler := NewLeaveHandler(mockSvc)

	c, w := leaveTestContext(t, http.MethodGet, "/leave-requests/history/STF00001/export?format=csv", nil)
	c.Params = gin.Params{{Key: "staff_id", Value: "STF00001"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{StaffID: "STF00001", Role: models.RoleCoordinator})

	handler.ExportHistory(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "leave-history-STF00001.csv")
}
