package calendar

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"

	"github.com/trezcool/ratiba/core"
)

var (
	weeklyRRuleTag  = "weeklyrrule"
	weeklyRRuleText = "only weekly recurrence rules with a single day and a count are supported"
)

// InitValidators registers calendar-specific validators and translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(weeklyRRuleTag, weeklyRRuleValidation)
	core.RegisterCustomTranslation(validate, translator, weeklyRRuleTag, weeklyRRuleText)
}

// weeklyRRuleValidation accepts rules of the shape
// FREQ=WEEKLY;BYDAY=<day>;COUNT=<n>, the only recurrence the scheduler can
// expand. "None" is tolerated for upstream feeds that serialize it.
func weeklyRRuleValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" || val == "None" {
		return true
	}
	opt, err := rrule.StrToROption(val)
	if err != nil {
		return false
	}
	return opt.Freq == rrule.WEEKLY && opt.Interval <= 1 && len(opt.Byweekday) == 1 && opt.Count >= 1
}
