package modules

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
)

type fakeRepository struct {
	mods   map[string]Module
	grades map[string]Grade
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{mods: make(map[string]Module), grades: make(map[string]Grade)}
}

func (r *fakeRepository) CreateModule(_ context.Context, mod Module) (Module, error) {
	r.mods[mod.ID] = mod
	return mod, nil
}

func (r *fakeRepository) GetModuleByID(_ context.Context, id string) (Module, error) {
	if mod, ok := r.mods[id]; ok {
		return mod, nil
	}
	return Module{}, ErrNotFound
}

func (r *fakeRepository) QueryModulesByUserID(_ context.Context, userID string) ([]Module, error) {
	var out []Module
	for _, mod := range r.mods {
		if mod.UserID == userID {
			out = append(out, mod)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepository) DeleteModulesByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.mods, id)
		for gid, g := range r.grades {
			if g.ModuleID == id {
				delete(r.grades, gid)
			}
		}
	}
	return nil
}

func (r *fakeRepository) CreateGrade(_ context.Context, g Grade) (Grade, error) {
	r.grades[g.ID] = g
	return g, nil
}

func (r *fakeRepository) GetGradeByID(_ context.Context, id string) (Grade, error) {
	if g, ok := r.grades[id]; ok {
		return g, nil
	}
	return Grade{}, ErrGradeNotFound
}

func (r *fakeRepository) QueryGradesByModuleID(_ context.Context, moduleID string) ([]Grade, error) {
	var out []Grade
	for _, g := range r.grades {
		if g.ModuleID == moduleID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeRepository) DeleteGradesByID(_ context.Context, ids ...string) error {
	for _, id := range ids {
		delete(r.grades, id)
	}
	return nil
}

func TestOverallGrade(t *testing.T) {
	tests := []struct {
		name   string
		grades []Grade
		want   float64
		valid  bool
	}{
		{name: "no grades"},
		{name: "all weights zero", grades: []Grade{{Mark: 80, Weight: 0}, {Mark: 60, Weight: 0}}},
		{name: "single grade", grades: []Grade{{Mark: 72.5, Weight: 100}}, want: 72.5, valid: true},
		{
			name:   "weighted average",
			grades: []Grade{{Mark: 80, Weight: 2}, {Mark: 60, Weight: 1}},
			want:   73.33, valid: true, // (160 + 60) / 3, rounded to 2 decimals
		},
		{
			name:   "zero-weight grade is ignored",
			grades: []Grade{{Mark: 90, Weight: 50}, {Mark: 10, Weight: 0}},
			want:   90, valid: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverallGrade(tt.grades)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.Equal(t, tt.want, got.Float64)
			}
		})
	}
}

func TestCreateCapsModulesPerUser(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, newFakeRepository())

	for i := 0; i < MaxPerUser; i++ {
		_, err := svc.Create(ctx, "stud", NewModule{Name: "Module", Credits: 15})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, "stud", NewModule{Name: "One too many", Credits: 15})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "a user cannot have more than 6 modules", vErr.Fields[0].Error)

	// the cap is per user
	_, err = svc.Create(ctx, "other", NewModule{Name: "Module", Credits: 15})
	assert.NoError(t, err)
}

func TestGradesAndDetail(t *testing.T) {
	ctx := context.Background()
	svc := NewService(nil, newFakeRepository())

	mod, err := svc.Create(ctx, "stud", NewModule{Name: "Databases", Credits: 15})
	require.NoError(t, err)

	// grades only land on existing modules
	_, err = svc.AddGrade(ctx, "nope", NewGrade{Name: "Exam", Mark: 80, Weight: 60})
	assert.Equal(t, ErrNotFound, err)

	exam, err := svc.AddGrade(ctx, mod.ID, NewGrade{Name: "Exam", Mark: 80, Weight: 60})
	require.NoError(t, err)
	_, err = svc.AddGrade(ctx, mod.ID, NewGrade{Name: "Coursework", Mark: 65, Weight: 40})
	require.NoError(t, err)

	detail, err := svc.Detail(ctx, mod.ID)
	require.NoError(t, err)
	require.Len(t, detail.Grades, 2)
	require.True(t, detail.OverallGrade.Valid)
	assert.Equal(t, 74.0, detail.OverallGrade.Float64) // (80*60 + 65*40) / 100

	// a grade cannot be deleted through another module
	other, err := svc.Create(ctx, "stud", NewModule{Name: "Networks", Credits: 10})
	require.NoError(t, err)
	assert.Equal(t, ErrGradeNotFound, svc.DeleteGrade(ctx, other.ID, exam.ID))

	require.NoError(t, svc.DeleteGrade(ctx, mod.ID, exam.ID))
	detail, err = svc.Detail(ctx, mod.ID)
	require.NoError(t, err)
	require.Len(t, detail.Grades, 1)
	assert.Equal(t, 65.0, detail.OverallGrade.Float64)

	// deleting the module takes its grades with it
	require.NoError(t, svc.Delete(ctx, mod.ID))
	_, err = svc.Detail(ctx, mod.ID)
	assert.Equal(t, ErrNotFound, err)
}
