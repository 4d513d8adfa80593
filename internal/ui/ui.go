package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/staffdir/internal/directory"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/repositories"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EmployeeListView ViewState = iota
	ProfileView
	EmployeeFormView
	GradeListView
	GradeFormView
	DataView
	ConfirmView
)

type confirmAction int

const (
	confirmDeleteEmployee confirmAction = iota
	confirmDeleteGrade
	confirmClear
)

var employeeFields = []field{
	{key: "name", label: "Name", required: true},
	{key: "role", label: "Role", required: true},
	{key: "department", label: "Department", required: true},
	{key: "gradeLevel", label: "Grade Level"},
	{key: "country", label: "Country", required: true},
	{key: "state", label: "State", required: true},
	{key: "address", label: "Address", required: true},
	{key: "email", label: "Email"},
	{key: "phone", label: "Phone"},
}

var gradeFields = []field{
	{key: "name", label: "Name", required: true},
	{key: "description", label: "Description"},
	{key: "itemCode", label: "Item Code"},
}

// Model represents the TUI application state.
type Model struct {
	repos       *repositories.Repositories
	view        ViewState
	returnTo    ViewState
	query       directory.Query
	employees   []models.Employee
	grades      []models.GradeLevel
	storage     models.StorageInfo
	warnPercent float64

	employeeList list.Model
	gradeList    list.Model
	search       textinput.Model
	searching    bool
	form         form
	editingID    string

	selected      *models.Employee
	selectedGrade *models.GradeLevel
	confirm       confirmAction

	status string
	err    error
	width  int
	height int
	help   help.Model
	keys   keyMap
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// NewModel creates a new TUI model over repos, starting from query.
//
// warnPercent is the storage usage above which the data view warns.
func NewModel(repos *repositories.Repositories, query directory.Query, warnPercent float64) *Model {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search name, role, department, email, location"
	search.SetValue(query.Search)

	return &Model{
		repos:        repos,
		view:         EmployeeListView,
		query:        query,
		warnPercent:  warnPercent,
		employeeList: newList("Staff Directory"),
		gradeList:    newList("Grade Levels"),
		search:       search,
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// ViewState returns the active view.
func (m *Model) ViewState() ViewState { return m.view }

// Query returns the active directory query.
func (m *Model) Query() directory.Query { return m.query }

// Init initializes the TUI by loading every record.
func (m *Model) Init() tea.Cmd {
	return m.load()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.employeeList.SetSize(msg.Width-4, msg.Height-10)
		m.gradeList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case dataLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.employees = msg.employees
		m.grades = msg.grades
		m.storage = msg.storage
		m.refreshSelection()
		return m, tea.Batch(m.refreshEmployees(), m.refreshGrades())

	case actionDoneMsg:
		if msg.err != nil {
			if m.view == EmployeeFormView || m.view == GradeFormView {
				m.form.err = msg.err
			} else {
				m.status = styles.err.Render(msg.err.Error())
			}
			return m, nil
		}
		m.status = styles.ok.Render(msg.status)
		if m.view == EmployeeFormView || m.view == GradeFormView {
			m.view = m.returnTo
		}
		return m, m.load()

	case formSubmittedMsg:
		switch m.view {
		case EmployeeFormView:
			return m, m.saveEmployee(msg.values)
		case GradeFormView:
			return m, m.saveGrade(msg.values)
		}
		return m, nil

	case formCancelledMsg:
		m.view = m.returnTo
		return m, nil

	case tea.KeyMsg:
		if m.err != nil {
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}
		switch m.view {
		case EmployeeListView:
			return m.handleEmployeeListKeys(msg)
		case ProfileView:
			return m.handleProfileKeys(msg)
		case EmployeeFormView, GradeFormView:
			var cmd tea.Cmd
			m.form, cmd = m.form.Update(msg)
			return m, cmd
		case GradeListView:
			return m.handleGradeListKeys(msg)
		case DataView:
			return m.handleDataKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		}
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case EmployeeListView:
		return m.renderEmployeeList()
	case ProfileView:
		return m.renderProfile()
	case EmployeeFormView, GradeFormView:
		return m.renderForm()
	case GradeListView:
		return m.renderGradeList()
	case DataView:
		return m.renderData()
	case ConfirmView:
		return m.renderConfirm()
	default:
		return ""
	}
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		employees, grades, err := m.repos.Snapshot()
		if err != nil {
			return dataLoadedMsg{err: err}
		}
		return dataLoadedMsg{employees: employees, grades: grades, storage: m.repos.Persistence.GetStorageInfo()}
	}
}

func (m *Model) refreshEmployees() tea.Cmd {
	filtered := directory.Apply(m.employees, m.query)
	items := make([]list.Item, len(filtered))
	for i, e := range filtered {
		items[i] = employeeItem{employee: e}
	}
	return m.employeeList.SetItems(items)
}

func (m *Model) refreshGrades() tea.Cmd {
	counts := directory.GradeCounts(m.employees)
	items := make([]list.Item, len(m.grades))
	for i, g := range m.grades {
		items[i] = gradeItem{grade: g, count: counts[g.Name]}
	}
	return m.gradeList.SetItems(items)
}

// refreshSelection points the selections at the reloaded records, dropping the ones that vanished.
func (m *Model) refreshSelection() {
	if m.selected != nil {
		i := slices.IndexFunc(m.employees, func(e models.Employee) bool { return e.ID == m.selected.ID })
		if i < 0 {
			m.selected = nil
			if m.view == ProfileView {
				m.view = EmployeeListView
			}
		} else {
			m.selected = &m.employees[i]
		}
	}
	if m.selectedGrade != nil {
		i := slices.IndexFunc(m.grades, func(g models.GradeLevel) bool { return g.ID == m.selectedGrade.ID })
		if i < 0 {
			m.selectedGrade = nil
		} else {
			m.selectedGrade = &m.grades[i]
		}
	}
}

func (m *Model) selectedEmployee() *models.Employee {
	if item, ok := m.employeeList.SelectedItem().(employeeItem); ok {
		e := item.employee
		return &e
	}
	return nil
}

func (m *Model) selectedGradeItem() *gradeItem {
	if item, ok := m.gradeList.SelectedItem().(gradeItem); ok {
		return &item
	}
	return nil
}

func (m *Model) gradeNames() []string {
	names := make([]string, len(m.grades))
	for i, g := range m.grades {
		names[i] = g.Name
	}
	return names
}

// cycle advances current through All followed by values, wrapping back to All.
func cycle(current string, values []string) string {
	if current == "" || current == directory.All {
		if len(values) == 0 {
			return directory.All
		}
		return values[0]
	}
	i := slices.Index(values, current)
	if i < 0 || i == len(values)-1 {
		return directory.All
	}
	return values[i+1]
}

func nextSortField(f directory.SortField) directory.SortField {
	i := slices.Index(directory.SortFields, f)
	return directory.SortFields[(i+1)%len(directory.SortFields)]
}

func (m *Model) handleEmployeeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			m.searching = false
			m.search.Blur()
			return m, nil
		case tea.KeyCtrlC:
			return m, tea.Quit
		}

		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		if v := m.search.Value(); v != m.query.Search {
			m.query.Search = v
			return m, tea.Batch(cmd, m.refreshEmployees())
		}
		return m, cmd
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.searching = true
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.sort):
		m.query.SortBy = nextSortField(m.query.SortBy)
		return m, m.refreshEmployees()
	case key.Matches(msg, m.keys.order):
		if m.query.Order == directory.Desc {
			m.query.Order = directory.Asc
		} else {
			m.query.Order = directory.Desc
		}
		return m, m.refreshEmployees()
	case key.Matches(msg, m.keys.grade):
		m.query.Grade = cycle(m.query.Grade, m.gradeNames())
		return m, m.refreshEmployees()
	case key.Matches(msg, m.keys.department):
		m.query.Department = cycle(m.query.Department, directory.UniqueDepartments(m.employees))
		return m, m.refreshEmployees()
	case key.Matches(msg, m.keys.country):
		m.query.Country = cycle(m.query.Country, directory.UniqueCountries(m.employees))
		return m, m.refreshEmployees()
	case key.Matches(msg, m.keys.reset):
		m.query.Reset()
		m.search.SetValue("")
		return m, m.refreshEmployees()
	case key.Matches(msg, m.keys.add):
		return m, m.openEmployeeForm(nil)
	case key.Matches(msg, m.keys.edit):
		if e := m.selectedEmployee(); e != nil {
			return m, m.openEmployeeForm(e)
		}
		return m, nil
	case key.Matches(msg, m.keys.enter):
		if e := m.selectedEmployee(); e != nil {
			m.selected = e
			m.view = ProfileView
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if e := m.selectedEmployee(); e != nil {
			m.selected = e
			m.askConfirm(confirmDeleteEmployee)
		}
		return m, nil
	case key.Matches(msg, m.keys.grades):
		m.view = GradeListView
		return m, nil
	case key.Matches(msg, m.keys.data):
		m.view = DataView
		return m, nil
	}

	var cmd tea.Cmd
	m.employeeList, cmd = m.employeeList.Update(msg)
	return m, cmd
}

func (m *Model) handleProfileKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = EmployeeListView
	case key.Matches(msg, m.keys.edit):
		return m, m.openEmployeeForm(m.selected)
	case key.Matches(msg, m.keys.remove):
		m.askConfirm(confirmDeleteEmployee)
	}
	return m, nil
}

func (m *Model) handleGradeListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.grades):
		m.view = EmployeeListView
		return m, nil
	case key.Matches(msg, m.keys.add):
		return m, m.openGradeForm(nil)
	case key.Matches(msg, m.keys.edit), key.Matches(msg, m.keys.enter):
		if item := m.selectedGradeItem(); item != nil {
			return m, m.openGradeForm(&item.grade)
		}
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if item := m.selectedGradeItem(); item != nil {
			g := item.grade
			m.selectedGrade = &g
			m.askConfirm(confirmDeleteGrade)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.gradeList, cmd = m.gradeList.Update(msg)
	return m, cmd
}

func (m *Model) handleDataKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.data):
		m.view = EmployeeListView
	case key.Matches(msg, m.keys.remove):
		m.askConfirm(confirmClear)
	}
	return m, nil
}

func (m *Model) askConfirm(action confirmAction) {
	m.returnTo = m.view
	m.confirm = action
	m.view = ConfirmView
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back):
		m.view = m.returnTo
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = m.returnTo
		if m.view == ProfileView {
			m.view = EmployeeListView
		}
		return m, m.runConfirmed()
	}
	return m, nil
}

func (m *Model) runConfirmed() tea.Cmd {
	switch m.confirm {
	case confirmDeleteEmployee:
		e := m.selected
		return func() tea.Msg {
			if e == nil {
				return actionDoneMsg{}
			}
			err := m.repos.Employees.Delete(e.ID)
			return actionDoneMsg{status: fmt.Sprintf("Deleted %s", e.Name), err: err}
		}
	case confirmDeleteGrade:
		g := m.selectedGrade
		return func() tea.Msg {
			if g == nil {
				return actionDoneMsg{}
			}
			err := m.repos.GradeLevels.Delete(g.ID)
			return actionDoneMsg{status: fmt.Sprintf("Deleted grade level %s", g.Name), err: err}
		}
	case confirmClear:
		return func() tea.Msg {
			return actionDoneMsg{status: "All data cleared", err: m.repos.Clear()}
		}
	}
	return nil
}

func (m *Model) openEmployeeForm(e *models.Employee) tea.Cmd {
	values := map[string]string{}
	title := "Add Employee"
	m.editingID = ""
	if e != nil {
		title = "Edit Employee"
		m.editingID = e.ID
		values = map[string]string{
			"name": e.Name, "role": e.Role, "department": e.Department, "gradeLevel": e.GradeLevel,
			"country": e.Country, "state": e.State, "address": e.Address, "email": e.Email, "phone": e.Phone,
		}
	}
	m.returnTo = m.view
	m.form = newForm(title, employeeFields, values)
	m.view = EmployeeFormView
	return textinput.Blink
}

func (m *Model) openGradeForm(g *models.GradeLevel) tea.Cmd {
	values := map[string]string{}
	title := "Add Grade Level"
	m.editingID = ""
	if g != nil {
		title = "Edit Grade Level"
		m.editingID = g.ID
		values = map[string]string{"name": g.Name, "description": g.Description, "itemCode": g.ItemCode}
	}
	m.returnTo = m.view
	m.form = newForm(title, gradeFields, values)
	m.view = GradeFormView
	return textinput.Blink
}

// saveEmployee creates or updates an employee from form values.
func (m *Model) saveEmployee(v map[string]string) tea.Cmd {
	e := models.Employee{
		ID: m.editingID, Name: v["name"], Role: v["role"], Department: v["department"],
		GradeLevel: v["gradeLevel"], Country: v["country"], State: v["state"],
		Address: v["address"], Email: v["email"], Phone: v["phone"],
	}

	return func() tea.Msg {
		if e.ID == "" {
			err := m.repos.Employees.Create(&e)
			return actionDoneMsg{status: fmt.Sprintf("Added %s", e.Name), err: err}
		}
		err := m.repos.Employees.Update(&e)
		return actionDoneMsg{status: fmt.Sprintf("Updated %s", e.Name), err: err}
	}
}

func (m *Model) saveGrade(v map[string]string) tea.Cmd {
	g := models.GradeLevel{ID: m.editingID, Name: v["name"], Description: v["description"], ItemCode: v["itemCode"]}
	return func() tea.Msg {
		if g.ID == "" {
			err := m.repos.GradeLevels.Create(&g)
			return actionDoneMsg{status: fmt.Sprintf("Added grade level %s", g.Name), err: err}
		}
		err := m.repos.GradeLevels.Update(&g)
		return actionDoneMsg{status: fmt.Sprintf("Updated grade level %s", g.Name), err: err}
	}
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case EmployeeListView:
		m.employeeList, cmd = m.employeeList.Update(msg)
	case GradeListView:
		m.gradeList, cmd = m.gradeList.Update(msg)
	}
	return m, cmd
}

func filterLabel(v string) string {
	if v == "" {
		return directory.All
	}
	return v
}

func (m *Model) renderEmployeeList() string {
	stats := directory.ComputeStats(m.employees, directory.Apply(m.employees, m.query), m.grades)
	summary := fmt.Sprintf("%d of %d employees • %d departments • %d grade levels",
		stats.Filtered, stats.Total, stats.Departments, stats.GradeLevels)

	filters := fmt.Sprintf("grade: %s  department: %s  country: %s  sort: %s %s",
		filterLabel(m.query.Grade), filterLabel(m.query.Department), filterLabel(m.query.Country),
		m.query.SortBy, m.query.Order)
	if n := m.query.ActiveFilterCount(); n > 0 {
		filters = fmt.Sprintf("%s  (%d active)", filters, n)
	}

	var body string
	if stats.Filtered == 0 {
		if stats.Total == 0 {
			body = styles.help.Render("No employees yet. Press a to add one.")
		} else {
			body = styles.help.Render("No employees match the current filters. Press r to reset.")
		}
	} else {
		body = m.employeeList.View()
	}

	helpKeys := []key.Binding{
		m.keys.search, m.keys.grade, m.keys.department, m.keys.country, m.keys.sort, m.keys.order,
		m.keys.reset, m.keys.add, m.keys.edit, m.keys.remove, m.keys.grades, m.keys.data, m.keys.quit,
	}
	parts := []string{summary, m.search.View(), styles.help.Render(filters), body}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, m.help.ShortHelpView(helpKeys))
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderProfile() string {
	if m.selected == nil {
		return ""
	}
	e := m.selected

	grade := e.GradeLevel
	if grade == "" {
		grade = "-"
	} else if i := slices.IndexFunc(m.grades, func(g models.GradeLevel) bool { return g.Name == e.GradeLevel }); i >= 0 {
		grade = m.grades[i].Label()
	}

	rows := []struct{ label, value string }{
		{"Role", e.Role},
		{"Department", e.Department},
		{"Grade Level", grade},
		{"Country", e.Country},
		{"State", e.State},
		{"Address", e.Address},
		{"Email", e.Email},
		{"Phone", e.Phone},
		{"ID", e.ID},
	}

	var b strings.Builder
	b.WriteString(styles.title.Render(e.Name))
	b.WriteString("\n")
	for _, r := range rows {
		v := r.value
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "%s %s\n", styles.label.Render(r.label), v)
	}

	helpKeys := []key.Binding{m.keys.edit, m.keys.remove, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s", b.String(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderForm() string {
	helpKeys := []key.Binding{m.keys.next, m.keys.prev, m.keys.enter, m.keys.back}
	return fmt.Sprintf("%s\n%s", m.form.View(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderGradeList() string {
	body := m.gradeList.View()
	if len(m.grades) == 0 {
		body = styles.help.Render("No grade levels. Press a to add one.")
	}

	helpKeys := []key.Binding{m.keys.add, m.keys.edit, m.keys.remove, m.keys.back, m.keys.quit}
	parts := []string{body}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, m.help.ShortHelpView(helpKeys))
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderData() string {
	title := styles.title.Render("Data Management")
	info := fmt.Sprintf("Employees: %d\nGrade levels: %d\nStorage: %s of %s (%.1f%%)",
		len(m.employees), len(m.grades),
		humanBytes(m.storage.Used), humanBytes(m.storage.Available), m.storage.Percentage)

	if m.warnPercent > 0 && m.storage.Percentage > m.warnPercent {
		info += "\n\n" + styles.warn.Render("Storage is almost full. Export a backup and clear old records.")
	}

	parts := []string{title, info}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	clearKey := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear all data"))
	parts = append(parts, m.help.ShortHelpView([]key.Binding{clearKey, m.keys.back, m.keys.quit}))
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderConfirm() string {
	var prompt, detail string
	switch m.confirm {
	case confirmDeleteEmployee:
		if m.selected != nil {
			prompt = fmt.Sprintf("Delete %s?", m.selected.Name)
		}
		detail = "This employee record will be removed."
	case confirmDeleteGrade:
		if m.selectedGrade != nil {
			prompt = fmt.Sprintf("Delete grade level %s?", m.selectedGrade.Name)
			n := directory.GradeCounts(m.employees)[m.selectedGrade.Name]
			detail = fmt.Sprintf("%d assigned employees will lose their grade level.", n)
		}
	case confirmClear:
		prompt = "Clear all data?"
		detail = styles.warn.Render("Every employee, grade level and automatic backup will be removed.")
	}

	helpKeys := []key.Binding{m.keys.yes, m.keys.no}
	return fmt.Sprintf("%s\n%s\n\n%s", styles.title.Render(prompt), detail, m.help.ShortHelpView(helpKeys))
}

// humanBytes renders n as B, KB or MB with one decimal.
func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
