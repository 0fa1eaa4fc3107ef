package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/modules"
)

type moduleRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Credits   int       `db:"credits"`
	CreatedAt time.Time `db:"created_at"`
}

type gradeRow struct {
	ID        string    `db:"id"`
	ModuleID  string    `db:"module_id"`
	Name      string    `db:"name"`
	Mark      float64   `db:"mark"`
	Weight    float64   `db:"weight"`
	CreatedAt time.Time `db:"created_at"`
}

type moduleRepository struct {
	db *sqlx.DB
}

var _ modules.Repository = (*moduleRepository)(nil) // interface compliance check

func NewModuleRepository(db *sqlx.DB) *moduleRepository {
	return &moduleRepository{db: db}
}

func (repo moduleRepository) CreateModule(ctx context.Context, mod modules.Module) (modules.Module, error) {
	q := `
		INSERT INTO module (id, user_id, name, credits, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := repo.db.ExecContext(ctx, q, mod.ID, mod.UserID, mod.Name, mod.Credits, mod.CreatedAt)
	if err != nil {
		return modules.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo moduleRepository) GetModuleByID(ctx context.Context, id string) (modules.Module, error) {
	var row moduleRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM module WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return modules.Module{}, modules.ErrNotFound
		}
		return modules.Module{}, errors.Wrap(err, "finding module by ID")
	}
	return modules.Module(row), nil
}

func (repo moduleRepository) QueryModulesByUserID(ctx context.Context, userID string) ([]modules.Module, error) {
	var rows []moduleRow
	q := `SELECT * FROM module WHERE user_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	mods := make([]modules.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, modules.Module(row))
	}
	return mods, nil
}

func (repo moduleRepository) DeleteModulesByID(ctx context.Context, ids ...string) error {
	// grades cascade at the schema level
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM module WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting modules")
	}
	return nil
}

func (repo moduleRepository) CreateGrade(ctx context.Context, g modules.Grade) (modules.Grade, error) {
	q := `
		INSERT INTO grade (id, module_id, name, mark, weight, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q, g.ID, g.ModuleID, g.Name, g.Mark, g.Weight, g.CreatedAt)
	if err != nil {
		return modules.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo moduleRepository) GetGradeByID(ctx context.Context, id string) (modules.Grade, error) {
	var row gradeRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM grade WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return modules.Grade{}, modules.ErrGradeNotFound
		}
		return modules.Grade{}, errors.Wrap(err, "finding grade by ID")
	}
	return modules.Grade(row), nil
}

func (repo moduleRepository) QueryGradesByModuleID(ctx context.Context, moduleID string) ([]modules.Grade, error) {
	var rows []gradeRow
	q := `SELECT * FROM grade WHERE module_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, moduleID); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]modules.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, modules.Grade(row))
	}
	return grades, nil
}

func (repo moduleRepository) DeleteGradesByID(ctx context.Context, ids ...string) error {
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM grade WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting grades")
	}
	return nil
}
