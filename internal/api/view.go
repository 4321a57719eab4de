package api

import (
	"pricingdesk/internal/models"
	"pricingdesk/internal/session"
)

// Labels for the extract control in its two states. The client renders
// exactly what the server says, so the disabled/label pair lives here.
const (
	extractIdleLabel = "Extract Features"
	extractBusyLabel = "Extracting Features..."

	scenarioPlaceholder = "No scenarios yet. Click \"Add Scenario\" to create one."
)

// ExtractControl mirrors the state of the extract button.
type ExtractControl struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// SessionView is the full reactive snapshot a client needs to render the
// dashboard after any trigger.
type SessionView struct {
	ID                  string                `json:"id"`
	Files               []models.UploadedFile `json:"files"`
	Scenarios           []models.Scenario     `json:"scenarios"`
	ScenarioPlaceholder string                `json:"scenario_placeholder,omitempty"`
	History             []models.ChatTurn     `json:"history"`
	Status              string                `json:"status"`
	Extract             ExtractControl        `json:"extract"`
}

// viewOf renders the session. Callers hold the session lock.
func viewOf(s *session.State) SessionView {
	v := SessionView{
		ID:        s.ID,
		Files:     append([]models.UploadedFile(nil), s.Files...),
		Scenarios: append([]models.Scenario(nil), s.Scenarios...),
		History:   append([]models.ChatTurn(nil), s.History...),
		Status:    s.Status,
		Extract:   ExtractControl{Label: extractIdleLabel},
	}
	if s.Busy {
		v.Extract = ExtractControl{Label: extractBusyLabel, Disabled: true}
	}
	if s.EmptyScenarios() {
		v.ScenarioPlaceholder = scenarioPlaceholder
	}
	return v
}
