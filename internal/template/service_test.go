package template

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gymsched/internal/api"
	"gymsched/internal/policy"
)

type MockTemplateRepo struct{ mock.Mock }

func (m *MockTemplateRepo) Create(ctx context.Context, gymID int, name string, description *string, coachIDs []int64, days []DayInput) (*Template, error) {
	args := m.Called(ctx, gymID, name, description, coachIDs, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Template), args.Error(1)
}

func (m *MockTemplateRepo) GetByID(ctx context.Context, id int) (*Template, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Template), args.Error(1)
}

func (m *MockTemplateRepo) List(ctx context.Context, gymID, limit, offset int) ([]Template, error) {
	args := m.Called(ctx, gymID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Template), args.Error(1)
}

func (m *MockTemplateRepo) CountByGym(ctx context.Context, gymID int) (int, error) {
	args := m.Called(ctx, gymID)
	return args.Int(0), args.Error(1)
}

func (m *MockTemplateRepo) Update(ctx context.Context, id int, name, description *string, coachIDs []int64, days []DayInput) (*Template, error) {
	args := m.Called(ctx, id, name, description, coachIDs, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Template), args.Error(1)
}

func (m *MockTemplateRepo) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

var (
	owner  = policy.Actor{UserID: 1, Role: policy.RoleOwner, GymID: 7}
	coach  = policy.Actor{UserID: 2, Role: policy.RoleCoach, GymID: 7}
	client = policy.Actor{UserID: 3, Role: policy.RoleClient, GymID: 7}
)

func validDays() []DayInput {
	return []DayInput{{
		DayOfWeek: 1,
		TimeSlots: []TimeSlotInput{{StartTime: "09:00", EndTime: "10:00", Capacity: 10}},
	}}
}

func TestCreateTemplate_Service(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		req := CreateTemplateRequest{Name: "Morning", CoachIDs: []int64{10}, Days: validDays()}
		repo.On("Create", ctx, 7, "Morning", (*string)(nil), []int64{10}, req.Days).
			Return(&Template{ID: 1, GymID: 7, Name: "Morning"}, nil)

		tmpl, err := svc.Create(ctx, owner, 7, req)
		assert.NoError(t, err)
		assert.Equal(t, 1, tmpl.ID)
		repo.AssertExpectations(t)
	})

	t.Run("ClientForbidden", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		_, err := svc.Create(ctx, client, 7, CreateTemplateRequest{Name: "X", CoachIDs: []int64{10}, Days: validDays()})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.Status)
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("CrossGymNotFound", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		_, err := svc.Create(ctx, owner, 99, CreateTemplateRequest{Name: "X", CoachIDs: []int64{10}, Days: validDays()})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
	})

	t.Run("EmptyCoaches", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		_, err := svc.Create(ctx, owner, 7, CreateTemplateRequest{Name: "X", Days: validDays()})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "coaches_required", apiErr.Code)
	})

	t.Run("BadClockRange", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		days := []DayInput{{
			DayOfWeek: 1,
			TimeSlots: []TimeSlotInput{{StartTime: "10:00", EndTime: "09:00", Capacity: 5}},
		}}

		_, err := svc.Create(ctx, owner, 7, CreateTemplateRequest{Name: "X", CoachIDs: []int64{10}, Days: days})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.Status)
	})

	t.Run("DuplicateWeekday", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		days := []DayInput{
			{DayOfWeek: 1, TimeSlots: []TimeSlotInput{{StartTime: "09:00", EndTime: "10:00", Capacity: 5}}},
			{DayOfWeek: 1, TimeSlots: []TimeSlotInput{{StartTime: "11:00", EndTime: "12:00", Capacity: 5}}},
		}

		_, err := svc.Create(ctx, owner, 7, CreateTemplateRequest{Name: "X", CoachIDs: []int64{10}, Days: days})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 400, apiErr.Status)
	})
}

func TestGetTemplate_Service(t *testing.T) {
	ctx := context.Background()

	t.Run("CoachCanRead", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 1).Return(&Template{ID: 1, GymID: 7}, nil)

		tmpl, err := svc.Get(ctx, coach, 1)
		assert.NoError(t, err)
		assert.Equal(t, 1, tmpl.ID)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 99).Return(nil, sql.ErrNoRows)

		_, err := svc.Get(ctx, owner, 99)
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
	})

	t.Run("CrossGymHiddenAsNotFound", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 1).Return(&Template{ID: 1, GymID: 42}, nil)

		_, err := svc.Get(ctx, owner, 1)
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
	})
}

func TestUpdateTemplate_Service(t *testing.T) {
	ctx := context.Background()
	newName := "Updated"

	t.Run("Success", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 1).Return(&Template{ID: 1, GymID: 7}, nil)
		repo.On("Update", ctx, 1, &newName, (*string)(nil), []int64(nil), []DayInput(nil)).
			Return(&Template{ID: 1, GymID: 7, Name: newName}, nil)

		tmpl, err := svc.Update(ctx, owner, 1, UpdateTemplateRequest{Name: &newName})
		assert.NoError(t, err)
		assert.Equal(t, newName, tmpl.Name)
	})

	t.Run("EmptyCoachesRejected", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 1).Return(&Template{ID: 1, GymID: 7}, nil)

		_, err := svc.Update(ctx, owner, 1, UpdateTemplateRequest{CoachIDs: []int64{}})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "coaches_required", apiErr.Code)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("ClientForbidden", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 1).Return(&Template{ID: 1, GymID: 7}, nil)

		_, err := svc.Update(ctx, client, 1, UpdateTemplateRequest{Name: &newName})
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 403, apiErr.Status)
	})
}

func TestDeleteTemplate_Service(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 1).Return(&Template{ID: 1, GymID: 7}, nil)
		repo.On("Delete", ctx, 1).Return(nil)

		assert.NoError(t, svc.Delete(ctx, owner, 1))
		repo.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := new(MockTemplateRepo)
		svc := NewService(repo)

		repo.On("GetByID", ctx, 99).Return(nil, sql.ErrNoRows)

		err := svc.Delete(ctx, owner, 99)
		var apiErr *api.Error
		assert.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 404, apiErr.Status)
	})
}

func TestListTemplates_Service(t *testing.T) {
	ctx := context.Background()

	repo := new(MockTemplateRepo)
	svc := NewService(repo)

	repo.On("CountByGym", ctx, 7).Return(3, nil)
	repo.On("List", ctx, 7, 2, 2).Return([]Template{{ID: 3, GymID: 7}}, nil)

	templates, total, err := svc.List(ctx, coach, 7, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, templates, 1)
}
