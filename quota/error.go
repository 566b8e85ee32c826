package quota

import (
	"github.com/Edgame2/castiel/kit/platform/errors"
)

var (
	// ErrQuotaNotFound is used when the quota is not found.
	ErrQuotaNotFound = &errors.Error{
		Msg:  "quota not found",
		Code: errors.ENotFound,
	}

	// ErrQuotaHasChildren is returned when deleting a quota that still has
	// child quotas.
	ErrQuotaHasChildren = &errors.Error{
		Msg:  "quota has child quotas",
		Code: errors.EConflict,
	}

	// ErrPeriodOutsideParent is returned when a child period does not nest
	// inside its parent period.
	ErrPeriodOutsideParent = &errors.Error{
		Msg:  "quota period must nest inside the parent period",
		Code: errors.EInvalid,
	}

	// ErrNegativeAttainment is returned when attainment is set below zero.
	ErrNegativeAttainment = &errors.Error{
		Msg:  "attainment cannot be negative",
		Code: errors.EInvalid,
	}

	// ErrInvalidForecastPeriods is returned when a forecast asks for zero or
	// negative periods.
	ErrInvalidForecastPeriods = &errors.Error{
		Msg:  "forecast periods must be positive",
		Code: errors.EInvalid,
	}
)
