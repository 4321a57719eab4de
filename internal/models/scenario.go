package models

// ScenarioField names one adjustable parameter of a pricing scenario.
type ScenarioField string

const (
	FieldSurrenderPeriod ScenarioField = "surrender_period"
	FieldGuaranteePeriod ScenarioField = "guarantee_period"
	FieldMinInterestRate ScenarioField = "min_interest_rate"
)

// Default values for a freshly added scenario.
const (
	DefaultSurrenderPeriod = 7
	DefaultGuaranteePeriod = 10
	DefaultMinInterestRate = 3.5
)

// Scenario is one pricing sensitivity case. The ID is assigned once at
// creation, increases monotonically within a session and is never reused,
// so removal cannot make two controls address the same scenario.
type Scenario struct {
	ID              int     `json:"id"`
	SurrenderPeriod int     `json:"surrender_period"`
	GuaranteePeriod int     `json:"guarantee_period"`
	MinInterestRate float64 `json:"min_interest_rate"`
}

// NewScenario returns a scenario with default parameter values.
func NewScenario(id int) Scenario {
	return Scenario{
		ID:              id,
		SurrenderPeriod: DefaultSurrenderPeriod,
		GuaranteePeriod: DefaultGuaranteePeriod,
		MinInterestRate: DefaultMinInterestRate,
	}
}

// Step applies one stepper click to the named field: +-1 for the period
// fields clamped to [0,30], +-0.1 for the rate clamped to [0.0,10.0].
// Unknown fields leave the scenario unchanged and report false.
func (s *Scenario) Step(field ScenarioField, up bool) bool {
	switch field {
	case FieldSurrenderPeriod:
		s.SurrenderPeriod = clampInt(s.SurrenderPeriod+stepInt(up), 0, 30)
	case FieldGuaranteePeriod:
		s.GuaranteePeriod = clampInt(s.GuaranteePeriod+stepInt(up), 0, 30)
	case FieldMinInterestRate:
		delta := 0.1
		if !up {
			delta = -0.1
		}
		s.MinInterestRate = clampFloat(round1(s.MinInterestRate+delta), 0.0, 10.0)
	default:
		return false
	}
	return true
}

func stepInt(up bool) int {
	if up {
		return 1
	}
	return -1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round1 keeps the rate at one decimal place so repeated 0.1 steps do not
// accumulate binary floating point drift.
func round1(v float64) float64 {
	if v < 0 {
		return float64(int(v*10-0.5)) / 10
	}
	return float64(int(v*10+0.5)) / 10
}
