package warehouse

import "testing"

func TestTableValue(t *testing.T) {
	table := &Table{
		Columns: []string{"input", "response"},
		Rows:    [][]string{{"doc.pdf", "ok"}},
	}
	if got := table.Value(0, "response"); got != "ok" {
		t.Errorf("Value = %q, want ok", got)
	}
	if got := table.Value(0, "missing"); got != "" {
		t.Errorf("missing column = %q, want empty", got)
	}
	if got := table.Value(5, "response"); got != "" {
		t.Errorf("out-of-range row = %q, want empty", got)
	}
}

func TestTableEmpty(t *testing.T) {
	var nilTable *Table
	if !nilTable.Empty() {
		t.Error("nil table should be empty")
	}
	if !(&Table{Columns: []string{"a"}}).Empty() {
		t.Error("rowless table should be empty")
	}
	if (&Table{Columns: []string{"a"}, Rows: [][]string{{"1"}}}).Empty() {
		t.Error("populated table reported empty")
	}
}
