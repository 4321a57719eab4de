package session

import (
	"fmt"
	"testing"

	"pricingdesk/internal/models"
)

func uploaded(name string) models.UploadedFile {
	return models.UploadedFile{Filename: name, Status: models.FileUploaded}
}

func TestRemoveFileKeepsOrder(t *testing.T) {
	s := &State{}
	for i := 0; i < 4; i++ {
		s.AppendFile(uploaded(fmt.Sprintf("doc-%d.pdf", i)))
	}

	removed, ok := s.RemoveFile(1)
	if !ok || removed.Filename != "doc-1.pdf" {
		t.Fatalf("removed = %+v ok=%v", removed, ok)
	}
	if len(s.Files) != 3 {
		t.Fatalf("files length = %d, want 3", len(s.Files))
	}
	want := []string{"doc-0.pdf", "doc-2.pdf", "doc-3.pdf"}
	for i, name := range want {
		if s.Files[i].Filename != name {
			t.Errorf("files[%d] = %q, want %q", i, s.Files[i].Filename, name)
		}
	}
}

func TestRemoveFileOutOfRange(t *testing.T) {
	s := &State{}
	s.AppendFile(uploaded("doc.pdf"))
	if _, ok := s.RemoveFile(5); ok {
		t.Error("out-of-range removal reported success")
	}
	if _, ok := s.RemoveFile(-1); ok {
		t.Error("negative index removal reported success")
	}
	if len(s.Files) != 1 {
		t.Errorf("files length = %d, state changed", len(s.Files))
	}
}

func TestScenarioIDsNeverReused(t *testing.T) {
	s := &State{}
	first := s.AddScenario()
	second := s.AddScenario()
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first.ID, second.ID)
	}

	if !s.RemoveScenario(second.ID) {
		t.Fatal("remove failed")
	}
	third := s.AddScenario()
	if third.ID != 3 {
		t.Errorf("id after removal = %d, want 3 (ids must not be reused)", third.ID)
	}
}

func TestEmptyScenariosPlaceholder(t *testing.T) {
	s := &State{}
	if !s.EmptyScenarios() {
		t.Error("fresh session should show the placeholder")
	}
	sc := s.AddScenario()
	if s.EmptyScenarios() {
		t.Error("placeholder should clear after adding a scenario")
	}
	s.RemoveScenario(sc.ID)
	if !s.EmptyScenarios() {
		t.Error("placeholder should return after removing the last scenario")
	}
}

func TestStepScenarioByID(t *testing.T) {
	s := &State{}
	a := s.AddScenario()
	b := s.AddScenario()

	updated, ok := s.StepScenario(b.ID, models.FieldSurrenderPeriod, true)
	if !ok {
		t.Fatal("step failed")
	}
	if updated.SurrenderPeriod != models.DefaultSurrenderPeriod+1 {
		t.Errorf("stepped value = %d", updated.SurrenderPeriod)
	}
	if s.Scenarios[0].SurrenderPeriod != models.DefaultSurrenderPeriod {
		t.Errorf("wrong scenario stepped, scenario %d changed", a.ID)
	}

	if _, ok := s.StepScenario(99, models.FieldSurrenderPeriod, true); ok {
		t.Error("step against unknown id reported success")
	}
	if _, ok := s.StepScenario(a.ID, models.ScenarioField("bogus"), true); ok {
		t.Error("step against unknown field reported success")
	}
}
