package services

import (
	"context"

	"github.com/cmis/studentportal/internal/app/models"
	"github.com/cmis/studentportal/internal/app/repositories"
)

// StudentStore is the persistence surface the services need for students
type StudentStore interface {
	FindByEmailOrUIN(ctx context.Context, email, uin string) (*models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	GetByEmail(ctx context.Context, email string) (*models.Student, error)
	GetByUIN(ctx context.Context, uin string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) (*models.Student, error)
	Update(ctx context.Context, id int64, update *repositories.StudentUpdate) (*models.Student, error)
	UINTakenByOther(ctx context.Context, uin string, id int64) (bool, error)
	EmailTakenByOther(ctx context.Context, email string, id int64) (bool, error)
	List(ctx context.Context, page, limit int) ([]models.Student, int64, error)
}

// EventStore is the read surface for the event catalog
type EventStore interface {
	List(ctx context.Context, filter repositories.EventFilter) ([]models.Event, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
}

// Notifier starts the external automation pipeline for a student
type Notifier interface {
	Configured() bool
	Trigger(ctx context.Context, studentID int64) (interface{}, error)
}
