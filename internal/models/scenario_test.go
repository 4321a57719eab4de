package models

import "testing"

func TestNewScenarioDefaults(t *testing.T) {
	s := NewScenario(4)
	if s.ID != 4 {
		t.Errorf("id = %d, want 4", s.ID)
	}
	if s.SurrenderPeriod != 7 || s.GuaranteePeriod != 10 || s.MinInterestRate != 3.5 {
		t.Errorf("defaults = %d/%d/%v, want 7/10/3.5", s.SurrenderPeriod, s.GuaranteePeriod, s.MinInterestRate)
	}
}

func TestStepPeriodsClamp(t *testing.T) {
	s := NewScenario(1)
	s.SurrenderPeriod = 0
	if !s.Step(FieldSurrenderPeriod, false) {
		t.Fatal("step returned false")
	}
	if s.SurrenderPeriod != 0 {
		t.Errorf("surrender period stepped below 0: %d", s.SurrenderPeriod)
	}

	s.GuaranteePeriod = 30
	s.Step(FieldGuaranteePeriod, true)
	if s.GuaranteePeriod != 30 {
		t.Errorf("guarantee period stepped above 30: %d", s.GuaranteePeriod)
	}

	s.SurrenderPeriod = 7
	s.Step(FieldSurrenderPeriod, true)
	if s.SurrenderPeriod != 8 {
		t.Errorf("surrender period = %d, want 8", s.SurrenderPeriod)
	}
}

func TestStepRateExactIncrements(t *testing.T) {
	s := NewScenario(1)
	for i := 0; i < 3; i++ {
		s.Step(FieldMinInterestRate, true)
	}
	if s.MinInterestRate != 3.8 {
		t.Errorf("rate after 3 up steps = %v, want 3.8", s.MinInterestRate)
	}
	for i := 0; i < 40; i++ {
		s.Step(FieldMinInterestRate, false)
	}
	if s.MinInterestRate != 0.0 {
		t.Errorf("rate clamped low = %v, want 0", s.MinInterestRate)
	}
	for i := 0; i < 200; i++ {
		s.Step(FieldMinInterestRate, true)
	}
	if s.MinInterestRate != 10.0 {
		t.Errorf("rate clamped high = %v, want 10", s.MinInterestRate)
	}
}

func TestStepUnknownField(t *testing.T) {
	s := NewScenario(1)
	before := s
	if s.Step(ScenarioField("premium_bonus"), true) {
		t.Fatal("unknown field reported success")
	}
	if s != before {
		t.Errorf("scenario changed on unknown field: %+v", s)
	}
}
