package modules

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
)

// MaxPerUser caps how many modules a user can track at once.
const MaxPerUser = 6

var (
	// errors
	ErrNotFound      = errors.New("module not found")
	ErrGradeNotFound = errors.New("grade not found")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module) (Module, error)
		GetModuleByID(ctx context.Context, id string) (Module, error)
		QueryModulesByUserID(ctx context.Context, userID string) ([]Module, error)
		// DeleteModulesByID removes the modules and their grades.
		DeleteModulesByID(ctx context.Context, ids ...string) error

		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		GetGradeByID(ctx context.Context, id string) (Grade, error)
		QueryGradesByModuleID(ctx context.Context, moduleID string) ([]Grade, error)
		DeleteGradesByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, userID string, nm NewModule) (Module, error)
		GetByID(ctx context.Context, id string) (Module, error)
		// Query returns a user's modules with their grades and overall grade.
		Query(ctx context.Context, userID string) ([]ModuleDetail, error)
		Detail(ctx context.Context, id string) (ModuleDetail, error)
		Delete(ctx context.Context, ids ...string) error

		AddGrade(ctx context.Context, moduleID string, ng NewGrade) (Grade, error)
		// DeleteGrade removes a grade; the grade must belong to the module.
		DeleteGrade(ctx context.Context, moduleID, gradeID string) error
	}

	service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) Service {
	return &service{db: db, repo: repo}
}

func (svc *service) Create(ctx context.Context, userID string, nm NewModule) (Module, error) {
	mods, err := svc.repo.QueryModulesByUserID(ctx, userID)
	if err != nil {
		return Module{}, err
	}
	if len(mods) >= MaxPerUser {
		msg := fmt.Sprintf("a user cannot have more than %d modules", MaxPerUser)
		return Module{}, core.NewValidationError(nil, core.FieldError{Field: "name", Error: msg})
	}

	mod := Module{
		ID:        uuid.New().String(),
		UserID:    userID,
		Name:      nm.Name,
		Credits:   nm.Credits,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateModule(ctx, mod)
}

func (svc *service) GetByID(ctx context.Context, id string) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id)
}

func (svc *service) Query(ctx context.Context, userID string) ([]ModuleDetail, error) {
	mods, err := svc.repo.QueryModulesByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := make([]ModuleDetail, 0, len(mods))
	for _, mod := range mods {
		detail, err := svc.detail(ctx, mod)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (svc *service) Detail(ctx context.Context, id string) (ModuleDetail, error) {
	mod, err := svc.repo.GetModuleByID(ctx, id)
	if err != nil {
		return ModuleDetail{}, err
	}
	return svc.detail(ctx, mod)
}

func (svc *service) detail(ctx context.Context, mod Module) (ModuleDetail, error) {
	grades, err := svc.repo.QueryGradesByModuleID(ctx, mod.ID)
	if err != nil {
		return ModuleDetail{}, err
	}
	if grades == nil {
		grades = []Grade{}
	}
	return ModuleDetail{
		Module:       mod,
		Grades:       grades,
		OverallGrade: OverallGrade(grades),
	}, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteModulesByID(ctx, ids...)
}

func (svc *service) AddGrade(ctx context.Context, moduleID string, ng NewGrade) (Grade, error) {
	if _, err := svc.repo.GetModuleByID(ctx, moduleID); err != nil {
		return Grade{}, err
	}

	g := Grade{
		ID:        uuid.New().String(),
		ModuleID:  moduleID,
		Name:      ng.Name,
		Mark:      ng.Mark,
		Weight:    ng.Weight,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateGrade(ctx, g)
}

func (svc *service) DeleteGrade(ctx context.Context, moduleID, gradeID string) error {
	g, err := svc.repo.GetGradeByID(ctx, gradeID)
	if err != nil {
		return err
	}
	if g.ModuleID != moduleID {
		return ErrGradeNotFound
	}
	return svc.repo.DeleteGradesByID(ctx, gradeID)
}
