package echoapi

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// DateRange binds the "from"/"to" query params (RFC 3339). Defaults to the
// 7 days starting today when both are absent.
type DateRange struct {
	From time.Time
	To   time.Time
}

func (dr *DateRange) Bind(ctx echo.Context) error {
	parse := func(param string) (time.Time, error) {
		val := ctx.QueryParam(param)
		if val == "" {
			return time.Time{}, nil
		}
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: param, Error: "must be a valid RFC 3339 timestamp"})
		}
		return t.UTC(), nil
	}

	var err error
	if dr.From, err = parse("from"); err != nil {
		return err
	}
	if dr.To, err = parse("to"); err != nil {
		return err
	}

	if dr.From.IsZero() {
		dr.From = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if dr.To.IsZero() {
		dr.To = dr.From.AddDate(0, 0, 7)
	}
	return nil
}
