package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/ratiba/core/modules"
)

type moduleRepository struct {
	db *moduleTable
}

var _ modules.Repository = (*moduleRepository)(nil) // interface compliance check

func NewModuleRepository(db *DB) modules.Repository {
	return &moduleRepository{db: db.modules}
}

func (repo *moduleRepository) CreateModule(_ context.Context, mod modules.Module) (modules.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *moduleRepository) GetModuleByID(_ context.Context, id string) (modules.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if mod, ok := repo.db.modules[id]; ok {
		return *mod, nil
	}
	return modules.Module{}, modules.ErrNotFound
}

func (repo *moduleRepository) QueryModulesByUserID(_ context.Context, userID string) ([]modules.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mods := make([]modules.Module, 0)
	for _, mod := range repo.db.modules {
		if mod.UserID == userID {
			mods = append(mods, *mod)
		}
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].CreatedAt.Before(mods[j].CreatedAt) })
	return mods, nil
}

func (repo *moduleRepository) DeleteModulesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.modules, id)
		// cascade
		for gid, g := range repo.db.grades {
			if g.ModuleID == id {
				delete(repo.db.grades, gid)
			}
		}
	}
	return nil
}

func (repo *moduleRepository) CreateGrade(_ context.Context, g modules.Grade) (modules.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.grades[g.ID] = &g
	return g, nil
}

func (repo *moduleRepository) GetGradeByID(_ context.Context, id string) (modules.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if g, ok := repo.db.grades[id]; ok {
		return *g, nil
	}
	return modules.Grade{}, modules.ErrGradeNotFound
}

func (repo *moduleRepository) QueryGradesByModuleID(_ context.Context, moduleID string) ([]modules.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	grades := make([]modules.Grade, 0)
	for _, g := range repo.db.grades {
		if g.ModuleID == moduleID {
			grades = append(grades, *g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].CreatedAt.Before(grades[j].CreatedAt) })
	return grades, nil
}

func (repo *moduleRepository) DeleteGradesByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.grades, id)
	}
	return nil
}
