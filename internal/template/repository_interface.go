package template

import "context"

type Repository interface {
	Create(ctx context.Context, gymID int, name string, description *string, coachIDs []int64, days []DayInput) (*Template, error)
	GetByID(ctx context.Context, id int) (*Template, error)
	List(ctx context.Context, gymID, limit, offset int) ([]Template, error)
	CountByGym(ctx context.Context, gymID int) (int, error)
	Update(ctx context.Context, id int, name, description *string, coachIDs []int64, days []DayInput) (*Template, error)
	Delete(ctx context.Context, id int) error
}
