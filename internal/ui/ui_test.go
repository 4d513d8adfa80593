package ui

import (
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/staffdir/internal/directory"
	"github.com/desertthunder/staffdir/internal/repositories"
	"github.com/desertthunder/staffdir/internal/shared"
	th "github.com/desertthunder/staffdir/internal/testing"
	"github.com/google/go-cmp/cmp"
)

func newTestModel(t *testing.T, opts ...repositories.Option) (*Model, *repositories.Repositories) {
	t.Helper()
	opts = append([]repositories.Option{repositories.WithLogger(shared.NewLogger(io.Discard))}, opts...)
	repos := repositories.New(th.MapStore{}, opts...)
	if err := repos.Persistence.SaveAll(th.SampleEmployees(), th.SampleGradeLevels()); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	m := NewModel(repos, directory.NewQuery(), 80)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	settle(m, m.Init())
	return m, repos
}

// settle runs cmd and feeds its message back while it is one of the model's own messages.
func settle(m *Model, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case dataLoadedMsg:
			m.Update(msg)
			return
		case actionDoneMsg, formSubmittedMsg, formCancelledMsg:
			_, cmd = m.Update(msg)
		default:
			return
		}
	}
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func visibleNames(m *Model) []string {
	var names []string
	for _, item := range m.employeeList.Items() {
		names = append(names, item.(employeeItem).employee.Name)
	}
	return names
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestEmployeeListView(t *testing.T) {
	t.Run("loads sorted directory", func(t *testing.T) {
		m, _ := newTestModel(t)
		want := []string{"alan turing", "Grace Hopper", "Katherine Johnson", "Linus Torvalds"}
		if diff := cmp.Diff(want, visibleNames(m)); diff != "" {
			t.Errorf("unexpected order (-want +got):\n%s", diff)
		}
		if view := m.View(); !strings.Contains(view, "4 of 4 employees") {
			t.Errorf("expected summary in view:\n%s", view)
		}
	})

	t.Run("cycles filters", func(t *testing.T) {
		m, _ := newTestModel(t)

		press(m, "d")
		if m.Query().Department != "Engineering" || len(visibleNames(m)) != 2 {
			t.Errorf("expected Engineering filter, got %q with %v", m.Query().Department, visibleNames(m))
		}
		press(m, "d", "d")
		if m.Query().Department != directory.All || len(visibleNames(m)) != 4 {
			t.Errorf("expected filter to wrap to all, got %q", m.Query().Department)
		}

		press(m, "f")
		if diff := cmp.Diff([]string{"Linus Torvalds"}, visibleNames(m)); diff != "" {
			t.Errorf("grade filter mismatch (-want +got):\n%s", diff)
		}

		press(m, "c")
		if m.Query().Country != "Finland" || m.Query().ActiveFilterCount() != 2 {
			t.Errorf("unexpected query %+v", m.Query())
		}

		press(m, "r")
		if diff := cmp.Diff(directory.NewQuery(), m.Query()); diff != "" {
			t.Errorf("reset mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sort and order", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "s", "o")
		if m.Query().SortBy != directory.SortRole || m.Query().Order != directory.Desc {
			t.Fatalf("unexpected query %+v", m.Query())
		}
		if got := visibleNames(m)[0]; got != "Grace Hopper" {
			t.Errorf("expected Rear Admiral first in role desc, got %s", got)
		}
	})

	t.Run("search", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "/", "turing")
		if diff := cmp.Diff([]string{"alan turing"}, visibleNames(m)); diff != "" {
			t.Errorf("search mismatch (-want +got):\n%s", diff)
		}

		press(m, "esc")
		if m.searching {
			t.Error("esc should leave search mode")
		}
		if m.Query().Search != "turing" {
			t.Errorf("search text should persist, got %q", m.Query().Search)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "/", "nobody", "enter")
		if view := m.View(); !strings.Contains(view, "No employees match") {
			t.Errorf("expected empty state:\n%s", view)
		}
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t)
		if !isQuit(press(m, "q")) {
			t.Error("q should quit")
		}
	})
}

func TestEmployeeActions(t *testing.T) {
	t.Run("profile", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "enter")
		if m.ViewState() != ProfileView {
			t.Fatalf("expected profile view, got %v", m.ViewState())
		}
		if view := m.View(); !strings.Contains(view, "LVL3 - Senior Level") || !strings.Contains(view, "Bletchley Park") {
			t.Errorf("profile missing fields:\n%s", view)
		}
		press(m, "esc")
		if m.ViewState() != EmployeeListView {
			t.Errorf("esc should return to list, got %v", m.ViewState())
		}
	})

	t.Run("delete asks first", func(t *testing.T) {
		m, repos := newTestModel(t)

		press(m, "x")
		if m.ViewState() != ConfirmView || !strings.Contains(m.View(), "Delete alan turing?") {
			t.Fatalf("expected confirm view:\n%s", m.View())
		}
		press(m, "n")
		if all, _ := repos.Employees.All(); len(all) != 4 {
			t.Errorf("n should keep the record, got %d employees", len(all))
		}

		press(m, "x")
		settle(m, press(m, "y"))
		if all, _ := repos.Employees.All(); len(all) != 3 {
			t.Errorf("expected 3 employees, got %d", len(all))
		}
		if len(visibleNames(m)) != 3 || !strings.Contains(m.status, "Deleted alan turing") {
			t.Errorf("list should reload with status, got %v %q", visibleNames(m), m.status)
		}
	})

	t.Run("delete from profile", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "enter", "x")
		settle(m, press(m, "y"))
		if m.ViewState() != EmployeeListView || m.selected != nil {
			t.Errorf("expected list view without selection, got %v", m.ViewState())
		}
	})

	t.Run("add", func(t *testing.T) {
		m, repos := newTestModel(t)
		press(m, "a")
		if m.ViewState() != EmployeeFormView {
			t.Fatalf("expected form view, got %v", m.ViewState())
		}

		values := []string{"Ada Lovelace", "Analyst", "Research", "lvl2", "United Kingdom", "London", "St James Square", "ada@example.com"}
		for _, v := range values {
			press(m, v, "enter")
		}
		settle(m, press(m, "555-0199", "enter"))

		if m.ViewState() != EmployeeListView {
			t.Fatalf("expected list after save, got %v: %v", m.ViewState(), m.form.err)
		}
		all, _ := repos.Employees.All()
		if len(all) != 5 {
			t.Fatalf("expected 5 employees, got %d", len(all))
		}
		added := all[4]
		if added.Name != "Ada Lovelace" || added.GradeLevel != "LVL2" || added.Phone != "555-0199" || added.ID == "" {
			t.Errorf("unexpected employee %+v", added)
		}
	})

	t.Run("required fields", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "a")
		for range employeeFields {
			press(m, "enter")
		}
		if m.ViewState() != EmployeeFormView || m.form.err == nil {
			t.Fatalf("expected form error, got view %v err %v", m.ViewState(), m.form.err)
		}
		if !strings.Contains(m.form.err.Error(), "name") {
			t.Errorf("unexpected error %v", m.form.err)
		}
	})

	t.Run("rejected save keeps form", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "a")
		values := []string{"Ada", "Analyst", "Research", "", "UK", "London", "Square"}
		for _, v := range values {
			if v != "" {
				press(m, v)
			}
			press(m, "enter")
		}
		settle(m, press(m, "not-an-email", "enter", "enter"))

		if m.ViewState() != EmployeeFormView {
			t.Fatalf("expected form to stay open, got %v", m.ViewState())
		}
		if !errors.Is(m.form.err, shared.ErrValidation) {
			t.Errorf("expected validation error, got %v", m.form.err)
		}
	})

	t.Run("edit and cancel", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "e")
		if m.ViewState() != EmployeeFormView || m.form.Values()["address"] != "Bletchley Park" {
			t.Fatalf("expected prefilled form, got %v", m.form.Values())
		}
		settle(m, press(m, "esc"))
		if m.ViewState() != EmployeeListView {
			t.Errorf("esc should cancel, got %v", m.ViewState())
		}
	})
}

func TestGradeListView(t *testing.T) {
	t.Run("counts", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "tab")
		if m.ViewState() != GradeListView {
			t.Fatalf("expected grade view, got %v", m.ViewState())
		}
		items := m.gradeList.Items()
		if len(items) != 4 || items[3].(gradeItem).count != 1 || items[1].(gradeItem).Description() != "0 employees" {
			t.Errorf("unexpected grade items %+v", items)
		}
	})

	t.Run("delete unassigns", func(t *testing.T) {
		m, repos := newTestModel(t)
		press(m, "tab", "x")
		if !strings.Contains(m.View(), "1 assigned employees") {
			t.Errorf("confirm should warn about assignments:\n%s", m.View())
		}
		settle(m, press(m, "y"))

		if grades, _ := repos.GradeLevels.All(); len(grades) != 3 {
			t.Errorf("expected 3 grades, got %d", len(grades))
		}
		if e, _ := repos.Employees.Get("e4"); e.GradeLevel != "" {
			t.Errorf("expected grade cleared, got %q", e.GradeLevel)
		}
		if m.ViewState() != GradeListView {
			t.Errorf("expected to stay on grades, got %v", m.ViewState())
		}
	})

	t.Run("rename cascades", func(t *testing.T) {
		m, repos := newTestModel(t)
		press(m, "tab", "enter")
		if m.ViewState() != GradeFormView || m.form.Values()["name"] != "LVL1" {
			t.Fatalf("expected prefilled grade form, got %v", m.form.Values())
		}
		press(m, "ctrl+u", "JUNIOR", "enter", "enter")
		settle(m, press(m, "enter"))

		if m.ViewState() != GradeListView {
			t.Fatalf("expected grade list after save, got %v: %v", m.ViewState(), m.form.err)
		}
		if e, _ := repos.Employees.Get("e4"); e.GradeLevel != "JUNIOR" {
			t.Errorf("expected rename to cascade, got %q", e.GradeLevel)
		}
	})

	t.Run("duplicate name", func(t *testing.T) {
		m, _ := newTestModel(t)
		press(m, "tab", "a", "mgr", "enter", "enter")
		settle(m, press(m, "enter"))
		if !errors.Is(m.form.err, shared.ErrDuplicateName) {
			t.Errorf("expected duplicate error, got %v", m.form.err)
		}
	})
}

func TestDataView(t *testing.T) {
	t.Run("summary and clear", func(t *testing.T) {
		m, repos := newTestModel(t)
		press(m, "i")
		if view := m.View(); !strings.Contains(view, "Employees: 4") || !strings.Contains(view, "Grade levels: 4") {
			t.Errorf("unexpected data view:\n%s", view)
		}
		if strings.Contains(m.View(), "almost full") {
			t.Error("should not warn below threshold")
		}

		press(m, "x")
		settle(m, press(m, "y"))
		if all, _ := repos.Employees.All(); len(all) != 0 {
			t.Errorf("expected no employees after clear, got %d", len(all))
		}
		if !strings.Contains(m.View(), "Employees: 0") {
			t.Errorf("view should reload:\n%s", m.View())
		}
	})

	t.Run("warns above threshold", func(t *testing.T) {
		m, _ := newTestModel(t, repositories.WithQuota(100))
		press(m, "i")
		if !strings.Contains(m.View(), "almost full") {
			t.Errorf("expected storage warning:\n%s", m.View())
		}
	})

	t.Run("load failure", func(t *testing.T) {
		repos := repositories.New(&th.FailingStore{Err: errors.New("disk gone")},
			repositories.WithLogger(shared.NewLogger(io.Discard)))
		m := NewModel(repos, directory.NewQuery(), 80)
		settle(m, m.Init())

		if view := m.View(); !strings.Contains(view, "Error:") {
			t.Errorf("expected error view:\n%s", view)
		}
		if !isQuit(press(m, "q")) {
			t.Error("q should quit from the error view")
		}
	})
}

func TestCycle(t *testing.T) {
	values := []string{"a", "b"}
	tc := []struct {
		current string
		want    string
	}{
		{"", "a"},
		{directory.All, "a"},
		{"a", "b"},
		{"b", directory.All},
		{"gone", directory.All},
	}
	for _, tt := range tc {
		if got := cycle(tt.current, values); got != tt.want {
			t.Errorf("cycle(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if got := cycle("", nil); got != directory.All {
		t.Errorf("cycle over no values = %q", got)
	}
}

func TestHumanBytes(t *testing.T) {
	tc := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tc {
		if got := humanBytes(tt.n); got != tt.want {
			t.Errorf("humanBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}
