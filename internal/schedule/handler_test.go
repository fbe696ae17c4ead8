package schedule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gymsched/internal/api"
	"gymsched/internal/auth"
	"gymsched/internal/policy"
)

type MockService struct{ mock.Mock }

func (m *MockService) CreateFromTemplate(ctx context.Context, actor policy.Actor, templateID int) (*ActiveSchedule, error) {
	args := m.Called(ctx, actor, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActiveSchedule), args.Error(1)
}

func (m *MockService) Get(ctx context.Context, actor policy.Actor, id int) (*ActiveSchedule, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActiveSchedule), args.Error(1)
}

func (m *MockService) List(ctx context.Context, actor policy.Actor, page, limit int) ([]ActiveSchedule, int, error) {
	args := m.Called(ctx, actor, page, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]ActiveSchedule), args.Int(1), args.Error(2)
}

func (m *MockService) Delete(ctx context.Context, actor policy.Actor, id int) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *MockService) Join(ctx context.Context, actor policy.Actor, scheduleID, dayOfWeek, slotID int) (bool, error) {
	args := m.Called(ctx, actor, scheduleID, dayOfWeek, slotID)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) Leave(ctx context.Context, actor policy.Actor, scheduleID, dayOfWeek, slotID int) error {
	return m.Called(ctx, actor, scheduleID, dayOfWeek, slotID).Error(0)
}

func (m *MockService) AssignStaff(ctx context.Context, actor policy.Actor, scheduleID int, coachID int64) (*ActiveSchedule, error) {
	args := m.Called(ctx, actor, scheduleID, coachID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActiveSchedule), args.Error(1)
}

func (m *MockService) UnassignStaff(ctx context.Context, actor policy.Actor, scheduleID int, coachID int64) (*ActiveSchedule, error) {
	args := m.Called(ctx, actor, scheduleID, coachID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ActiveSchedule), args.Error(1)
}

func (m *MockService) Available(ctx context.Context, actor policy.Actor) ([]ScheduleView, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ScheduleView), args.Error(1)
}

func (m *MockService) MySchedule(ctx context.Context, actor policy.Actor) ([]MySlot, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]MySlot), args.Error(1)
}

const handlerTestSecret = "schedule-handler-secret"

func setupScheduleRouter(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	router := gin.New()
	protected := router.Group("/")
	protected.Use(auth.AuthMiddleware(handlerTestSecret))
	{
		protected.POST("/schedules/:id/days/:dayOfWeek/timeslots/:timeslotID/join", h.JoinTimeslot)
		protected.POST("/schedules/:id/days/:dayOfWeek/timeslots/:timeslotID/leave", h.LeaveTimeslot)
		protected.GET("/schedules/available", h.AvailableSchedules)
		protected.GET("/schedules/me", h.MySchedule)
	}
	return router
}

func authedRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()

	token, _, err := auth.GenerateTokens(50, "c@example.com", "client", 7, handlerTestSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestJoinTimeslot_Handler(t *testing.T) {
	clientActor := policy.Actor{UserID: 50, Role: "client", GymID: 7}

	t.Run("Joined", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Join", mock.Anything, clientActor, 1, 1, 300).Return(false, nil)

		router := setupScheduleRouter(svc)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, "POST", "/schedules/1/days/1/timeslots/300/join"))

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		require.Equal(t, "Joined timeslot", resp.Message)
	})

	t.Run("AlreadyJoined", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Join", mock.Anything, clientActor, 1, 1, 300).Return(true, nil)

		router := setupScheduleRouter(svc)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, "POST", "/schedules/1/days/1/timeslots/300/join"))

		require.Equal(t, http.StatusOK, w.Code)

		var resp api.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Equal(t, "Already joined", resp.Message)
	})

	t.Run("Full", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Join", mock.Anything, clientActor, 1, 1, 300).
			Return(false, api.Conflict("timeslot_full", "time slot is full"))

		router := setupScheduleRouter(svc)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, "POST", "/schedules/1/days/1/timeslots/300/join"))

		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		svc := new(MockService)
		svc.On("Join", mock.Anything, clientActor, 1, 1, 999).
			Return(false, api.NotFound("timeslot_not_found", "timeslot not found"))

		router := setupScheduleRouter(svc)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, "POST", "/schedules/1/days/1/timeslots/999/join"))

		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadDayParam", func(t *testing.T) {
		svc := new(MockService)

		router := setupScheduleRouter(svc)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, authedRequest(t, "POST", "/schedules/1/days/monday/timeslots/300/join"))

		require.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Join")
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		router := setupScheduleRouter(new(MockService))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("POST", "/schedules/1/days/1/timeslots/300/join", nil))

		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLeaveTimeslot_Handler(t *testing.T) {
	clientActor := policy.Actor{UserID: 50, Role: "client", GymID: 7}

	svc := new(MockService)
	svc.On("Leave", mock.Anything, clientActor, 1, 1, 300).Return(nil)

	router := setupScheduleRouter(svc)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, "POST", "/schedules/1/days/1/timeslots/300/leave"))

	require.Equal(t, http.StatusOK, w.Code)
}

func TestAvailableSchedules_Handler(t *testing.T) {
	clientActor := policy.Actor{UserID: 50, Role: "client", GymID: 7}

	svc := new(MockService)
	svc.On("Available", mock.Anything, clientActor).Return([]ScheduleView{}, nil)

	router := setupScheduleRouter(svc)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, authedRequest(t, "GET", "/schedules/available"))

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    []ScheduleView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Empty(t, resp.Data)
}
