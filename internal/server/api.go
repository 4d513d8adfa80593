package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/staffdir/internal/directory"
	"github.com/desertthunder/staffdir/internal/models"
	"github.com/desertthunder/staffdir/internal/repositories"
	"github.com/desertthunder/staffdir/internal/shared"
	"github.com/gorilla/mux"
)

const maxBodyBytes = 10 << 20

// APIHandler serves the directory JSON API.
type APIHandler struct {
	repos  *repositories.Repositories
	logger *log.Logger
}

var _ Handler = (*APIHandler)(nil)

// NewAPIHandler creates an [APIHandler] over repos.
func NewAPIHandler(repos *repositories.Repositories, logger *log.Logger) *APIHandler {
	return &APIHandler{repos: repos, logger: logger}
}

// Register adds every /api route to r.
//
// Routes are registered on r itself so a method mismatch reaches r's MethodNotAllowedHandler.
func (h *APIHandler) Register(r *mux.Router) {
	routes := []struct {
		method string
		path   string
		fn     http.HandlerFunc
	}{
		{http.MethodGet, "/employees", h.ListEmployees},
		{http.MethodPost, "/employees", h.CreateEmployee},
		{http.MethodGet, "/employees/{id}", h.GetEmployee},
		{http.MethodPut, "/employees/{id}", h.UpdateEmployee},
		{http.MethodDelete, "/employees/{id}", h.DeleteEmployee},

		{http.MethodGet, "/grades", h.ListGrades},
		{http.MethodPost, "/grades", h.CreateGrade},
		{http.MethodPut, "/grades/{id}", h.UpdateGrade},
		{http.MethodDelete, "/grades/{id}", h.DeleteGrade},

		{http.MethodGet, "/filters", h.Filters},
		{http.MethodGet, "/stats", h.Stats},
		{http.MethodGet, "/storage", h.Storage},

		{http.MethodGet, "/data/export", h.Export},
		{http.MethodPost, "/data/import", h.Import},
		{http.MethodPost, "/data/restore", h.Restore},
		{http.MethodDelete, "/data", h.Clear},
	}
	for _, rt := range routes {
		r.HandleFunc("/api"+rt.path, rt.fn).Methods(rt.method)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrNoBackup):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, shared.ErrValidation),
		errors.Is(err, shared.ErrUnknownGrade),
		errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrInvalidBackup),
		errors.Is(err, shared.ErrInvalidFlag):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *APIHandler) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "error", err)
	}
	writeError(w, status, err.Error())
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

// queryFrom reads search, grade, department, country, sort and order query parameters.
func queryFrom(r *http.Request) (directory.Query, error) {
	v := r.URL.Query()
	q := directory.Query{
		Search:     v.Get("search"),
		Grade:      v.Get("grade"),
		Department: v.Get("department"),
		Country:    v.Get("country"),
	}

	var err error
	if q.SortBy, err = directory.ParseSortField(v.Get("sort")); err != nil {
		return q, err
	}
	if q.Order, err = directory.ParseOrder(v.Get("order")); err != nil {
		return q, err
	}
	return q, nil
}

// ListEmployees returns the filtered, sorted directory.
func (h *APIHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	q, err := queryFrom(r)
	if err != nil {
		h.fail(w, err)
		return
	}

	employees, err := h.repos.Employees.All()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, directory.Apply(employees, q))
}

func (h *APIHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := h.repos.Employees.Get(mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *APIHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if err := decodeBody(r, &e); err != nil {
		h.fail(w, err)
		return
	}
	e.ID = ""
	if err := h.repos.Employees.Create(&e); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *APIHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var e models.Employee
	if err := decodeBody(r, &e); err != nil {
		h.fail(w, err)
		return
	}
	e.ID = mux.Vars(r)["id"]
	if err := h.repos.Employees.Update(&e); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (h *APIHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Employees.Delete(mux.Vars(r)["id"]); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// gradeView is a grade level with its assigned employee count.
type gradeView struct {
	models.GradeLevel
	EmployeeCount int `json:"employeeCount"`
}

// ListGrades returns every grade level with its employee count.
func (h *APIHandler) ListGrades(w http.ResponseWriter, r *http.Request) {
	employees, grades, err := h.repos.Snapshot()
	if err != nil {
		h.fail(w, err)
		return
	}

	counts := directory.GradeCounts(employees)
	views := make([]gradeView, len(grades))
	for i, g := range grades {
		views[i] = gradeView{GradeLevel: g, EmployeeCount: counts[g.Name]}
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *APIHandler) CreateGrade(w http.ResponseWriter, r *http.Request) {
	var g models.GradeLevel
	if err := decodeBody(r, &g); err != nil {
		h.fail(w, err)
		return
	}
	g.ID = ""
	if err := h.repos.GradeLevels.Create(&g); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

func (h *APIHandler) UpdateGrade(w http.ResponseWriter, r *http.Request) {
	var g models.GradeLevel
	if err := decodeBody(r, &g); err != nil {
		h.fail(w, err)
		return
	}
	g.ID = mux.Vars(r)["id"]
	if err := h.repos.GradeLevels.Update(&g); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (h *APIHandler) DeleteGrade(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.GradeLevels.Delete(mux.Vars(r)["id"]); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Filters returns the values the filter pickers offer.
func (h *APIHandler) Filters(w http.ResponseWriter, r *http.Request) {
	employees, grades, err := h.repos.Snapshot()
	if err != nil {
		h.fail(w, err)
		return
	}

	names := make([]string, len(grades))
	for i, g := range grades {
		names[i] = g.Name
	}
	writeJSON(w, http.StatusOK, map[string][]string{
		"departments": directory.UniqueDepartments(employees),
		"countries":   directory.UniqueCountries(employees),
		"grades":      names,
		"sortFields":  sortFieldNames(),
	})
}

func sortFieldNames() []string {
	out := make([]string, len(directory.SortFields))
	for i, f := range directory.SortFields {
		out[i] = string(f)
	}
	return out
}

// Stats returns directory counts for the query in the request.
func (h *APIHandler) Stats(w http.ResponseWriter, r *http.Request) {
	q, err := queryFrom(r)
	if err != nil {
		h.fail(w, err)
		return
	}
	employees, grades, err := h.repos.Snapshot()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, directory.ComputeStats(employees, directory.Apply(employees, q), grades))
}

func (h *APIHandler) Storage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.repos.Persistence.GetStorageInfo())
}

// Export downloads the backup document.
func (h *APIHandler) Export(w http.ResponseWriter, r *http.Request) {
	doc, err := h.repos.Export()
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", repositories.BackupFilename(time.Now())))
	_, _ = io.WriteString(w, doc)
}

// importSummary reports how many records an import or restore wrote.
type importSummary struct {
	Employees   int `json:"employees"`
	GradeLevels int `json:"gradeLevels"`
}

// Import replaces all records with the backup document in the request body.
func (h *APIHandler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.fail(w, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	result, err := h.repos.Import(string(body))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importSummary{Employees: len(result.Employees), GradeLevels: len(result.GradeLevels)})
}

func (h *APIHandler) Restore(w http.ResponseWriter, r *http.Request) {
	result, err := h.repos.Restore()
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, importSummary{Employees: len(result.Employees), GradeLevels: len(result.GradeLevels)})
}

func (h *APIHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if err := h.repos.Clear(); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
