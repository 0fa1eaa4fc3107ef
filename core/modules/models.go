package modules

import (
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
)

// Module is an academic course a student tracks grades against.
type Module struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Grade is a weighted assessment result within a module. Mark and Weight are
// both on a 0-100 scale.
type Grade struct {
	ID        string    `json:"id"`
	ModuleID  string    `json:"module_id"`
	Name      string    `json:"name"`
	Mark      float64   `json:"mark"`
	Weight    float64   `json:"weight"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// ModuleDetail pairs a module with its grades and the weighted overall grade.
type ModuleDetail struct {
	Module
	Grades       []Grade      `json:"grades"`
	OverallGrade null.Float64 `json:"overall_grade"`
}

// OverallGrade is the weight-averaged mark rounded to 2 decimals. Invalid when
// there are no grades or all weights are zero.
func OverallGrade(grades []Grade) null.Float64 {
	if len(grades) == 0 {
		return null.Float64{}
	}
	var totalWeight, weightedSum float64
	for _, g := range grades {
		totalWeight += g.Weight
		weightedSum += g.Mark * g.Weight
	}
	if totalWeight == 0 {
		return null.Float64{}
	}
	return null.Float64From(math.Round(weightedSum/totalWeight*100) / 100)
}

type NewModule struct {
	Name    string `json:"name" validate:"required"`
	Credits int    `json:"credits" validate:"min=0"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	return validate.Struct(nm)
}

type NewGrade struct {
	Name   string  `json:"name" validate:"required"`
	Mark   float64 `json:"mark" validate:"min=0,max=100"`
	Weight float64 `json:"weight" validate:"min=0,max=100"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.Name = core.CleanString(ng.Name)
	return validate.Struct(ng)
}
