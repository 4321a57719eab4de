package session

import (
	"sync"
	"time"

	"pricingdesk/internal/models"
)

// State is everything one dashboard session mutates: the uploaded-file
// list, the scenario list, the conversation history and the latest status
// line. Handlers lock the state for their whole body, which reproduces
// the one-handler-at-a-time dispatch the UI runtime guarantees, without
// sharing anything across sessions.
type State struct {
	mu sync.Mutex

	ID             string                `json:"id"`
	CreatedAt      time.Time             `json:"created_at"`
	Files          []models.UploadedFile `json:"files"`
	Scenarios      []models.Scenario     `json:"scenarios"`
	NextScenarioID int                   `json:"next_scenario_id"`
	History        []models.ChatTurn     `json:"history"`
	Status         string                `json:"status"`
	Busy           bool                  `json:"busy"`

	// DataConversationID keys the session's tabular data chat; empty until
	// the first question starts a conversation.
	DataConversationID string `json:"data_conversation_id,omitempty"`
}

// Lock serializes handler access to this session.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *State) Unlock() { s.mu.Unlock() }

// AppendFile records one upload outcome at the end of the ordered list.
func (s *State) AppendFile(f models.UploadedFile) {
	s.Files = append(s.Files, f)
}

// RemoveFile deletes the entry at index, keeping indices dense and
// preserving the relative order of the remainder. An out-of-range index
// leaves the state unchanged.
func (s *State) RemoveFile(index int) (models.UploadedFile, bool) {
	if index < 0 || index >= len(s.Files) {
		return models.UploadedFile{}, false
	}
	removed := s.Files[index]
	s.Files = append(s.Files[:index], s.Files[index+1:]...)
	return removed, true
}

// AddScenario creates a scenario with default values and a fresh id.
// Ids increase monotonically within the session and are never reused.
func (s *State) AddScenario() models.Scenario {
	s.NextScenarioID++
	sc := models.NewScenario(s.NextScenarioID)
	s.Scenarios = append(s.Scenarios, sc)
	return sc
}

// RemoveScenario deletes the scenario with the given id.
func (s *State) RemoveScenario(id int) bool {
	for i, sc := range s.Scenarios {
		if sc.ID == id {
			s.Scenarios = append(s.Scenarios[:i], s.Scenarios[i+1:]...)
			return true
		}
	}
	return false
}

// StepScenario applies one stepper click to the named field of the
// scenario with the given id and returns the updated scenario.
func (s *State) StepScenario(id int, field models.ScenarioField, up bool) (models.Scenario, bool) {
	for i := range s.Scenarios {
		if s.Scenarios[i].ID == id {
			if !s.Scenarios[i].Step(field, up) {
				return models.Scenario{}, false
			}
			return s.Scenarios[i], true
		}
	}
	return models.Scenario{}, false
}

// EmptyScenarios reports whether the empty-state placeholder should show.
func (s *State) EmptyScenarios() bool {
	return len(s.Scenarios) == 0
}
