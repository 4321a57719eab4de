package models

// FeatureRecord is one row of the structured pricing features table
// produced by the warehouse AI extraction. The application only reads it;
// every field may be empty when the model omitted or malformed the value.
type FeatureRecord struct {
	Input                         string   `json:"input"`
	IssuingCompany                []string `json:"issuing_company"`
	MinimumPremium                string   `json:"minimum_premium"`
	WithdrawalOptions             []string `json:"withdrawal_options"`
	InterestCrediting             string   `json:"interest_crediting"`
	SurrenderChargeSchedule       string   `json:"surrender_charge_schedule"`
	DeathBenefit                  string   `json:"death_benefit"`
	AvailableRiders               []string `json:"available_riders"`
	IssueAges                     string   `json:"issue_ages"`
	GuaranteePeriod               string   `json:"guarantee_period"`
	GuaranteedMinimumInterestRate string   `json:"guaranteed_minimum_interest_rate"`
}
