package handlers

import (
	"context"
	"net/http"

	"freelance-crm/internal/billing"
	"freelance-crm/internal/models"
	"freelance-crm/internal/service"
)

func (h *Handlers) page(r *http.Request, title, active string, data any) Page {
	return Page{User: GetUserFromContext(r), Title: title, Active: active, Data: data}
}

// DashboardViewModel is the data passed to the dashboard template.
type DashboardViewModel struct {
	*service.Dashboard
	Projects []models.Project
}

// Dashboard renders the overview page.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	dash, err := h.reports.Dashboard(r.Context(), user.ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	active := models.ProjectActive
	projects, err := h.db.ListProjects(r.Context(), user.ID, models.ProjectFilter{Status: &active})
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "dashboard.html", h.page(r, "Dashboard", "dashboard", DashboardViewModel{Dashboard: dash, Projects: projects}))
}

// ClientsViewModel is the data passed to the clients template.
type ClientsViewModel struct {
	Clients []models.Client
}

func (h *Handlers) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.db.ListClients(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "clients.html", h.page(r, "Clients", "clients", ClientsViewModel{Clients: clients}))
}

func (h *Handlers) ShowClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	detail, err := h.db.GetClientDetail(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "client.html", h.page(r, detail.Name, "clients", detail))
}

func (h *Handlers) CreateClient(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in := parseClientForm(r)
	if err := models.Validate(in); err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.db.CreateClient(r.Context(), GetUserFromContext(r).ID, in); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/clients")
}

func (h *Handlers) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	patch := parseClientPatchForm(r)
	if err := models.Validate(patch); err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.db.UpdateClient(r.Context(), GetUserFromContext(r).ID, id, patch); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/clients/"+r.PathValue("id"))
}

func (h *Handlers) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := h.db.DeleteClient(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/clients")
}

// ProjectsViewModel is the data passed to the projects template.
type ProjectsViewModel struct {
	Projects []models.Project
	Clients  []models.Client
	Statuses []models.ProjectStatus
	Filter   string
}

func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var f models.ProjectFilter
	status := r.URL.Query().Get("status")
	if status != "" {
		s := models.ProjectStatus(status)
		f.Status = &s
	}
	projects, err := h.db.ListProjects(r.Context(), user.ID, f)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	clients, err := h.db.ListClients(r.Context(), user.ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "projects.html", h.page(r, "Projects", "projects", ProjectsViewModel{
		Projects: projects,
		Clients:  clients,
		Statuses: models.ProjectStatuses,
		Filter:   status,
	}))
}

// ProjectViewModel is the data passed to the project detail template.
type ProjectViewModel struct {
	Report   *billing.ProfitabilityReport
	Unbilled *service.UnbilledTime
	Billable *service.BillableExpenses
	Invoices []models.Invoice
	Clients  []models.Client
	Statuses []models.ProjectStatus
}

// ShowProject renders a project with its profitability and unbilled work.
func (h *Handlers) ShowProject(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	report, err := h.reports.Profitability(r.Context(), user.ID, id)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	unbilled, err := h.invoicer.UnbilledTime(r.Context(), user.ID, id)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	billable, err := h.invoicer.BillableExpenses(r.Context(), user.ID, id)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	invoices, err := h.db.ListInvoices(r.Context(), user.ID, models.InvoiceFilter{ProjectID: &id})
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	clients, err := h.db.ListClients(r.Context(), user.ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "project.html", h.page(r, report.Project.Name, "projects", ProjectViewModel{
		Report:   report,
		Unbilled: unbilled,
		Billable: billable,
		Invoices: invoices,
		Clients:  clients,
		Statuses: models.ProjectStatuses,
	}))
}

func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in, err := parseProjectForm(r)
	if err == nil {
		err = models.Validate(in)
	}
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.db.CreateProject(r.Context(), GetUserFromContext(r).ID, in); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/projects")
}

func (h *Handlers) UpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	patch, err := parseProjectPatchForm(r)
	if err == nil {
		err = models.Validate(patch)
	}
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.db.UpdateProject(r.Context(), GetUserFromContext(r).ID, id, patch); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/projects/"+r.PathValue("id"))
}

func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := h.db.DeleteProject(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/projects")
}

// InvoiceProjectTime creates an invoice from the project's unbilled time.
func (h *Handlers) InvoiceProjectTime(w http.ResponseWriter, r *http.Request) {
	h.deriveInvoice(w, r, h.invoicer.CreateFromTime)
}

// InvoiceProjectExpenses creates an invoice from the project's billable expenses.
func (h *Handlers) InvoiceProjectExpenses(w http.ResponseWriter, r *http.Request) {
	h.deriveInvoice(w, r, h.invoicer.CreateFromExpenses)
}

func (h *Handlers) deriveInvoice(w http.ResponseWriter, r *http.Request,
	create func(ctx context.Context, userID int64, req models.DeriveRequest) (*models.Invoice, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	req, err := parseDeriveForm(r, id)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := create(r.Context(), GetUserFromContext(r).ID, req); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/invoices")
}

// TimeViewModel is the data passed to the time tracking template.
type TimeViewModel struct {
	Running  *models.TimeEntry
	Entries  []models.TimeEntry
	Projects []models.Project
}

func (h *Handlers) ListTime(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	running, err := h.tracker.Running(r.Context(), user.ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	entries, err := h.db.ListTimeEntries(r.Context(), user.ID, models.TimeEntryFilter{})
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	active := models.ProjectActive
	projects, err := h.db.ListProjects(r.Context(), user.ID, models.ProjectFilter{Status: &active})
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "time.html", h.page(r, "Time", "time", TimeViewModel{
		Running:  running,
		Entries:  entries,
		Projects: projects,
	}))
}

func (h *Handlers) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in, err := parseTimeEntryForm(r)
	if err == nil {
		err = models.Validate(in)
	}
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.db.CreateTimeEntry(r.Context(), GetUserFromContext(r).ID, in); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/time")
}

func (h *Handlers) StartTimer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	projectID, err := formID(r, "project_id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	in := models.TimerStart{ProjectID: projectID, Description: formOptString(r, "description")}
	if _, err := h.tracker.Start(r.Context(), GetUserFromContext(r).ID, in); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/time")
}

func (h *Handlers) StopTimer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.tracker.Stop(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/time")
}

func (h *Handlers) DeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := h.db.DeleteTimeEntry(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/time")
}

// InvoicesViewModel is the data passed to the invoices template.
type InvoicesViewModel struct {
	Invoices []models.Invoice
	Stats    billing.InvoiceStats
	Clients  []models.Client
	Projects []models.Project
	Statuses []models.InvoiceStatus
	Filter   string
}

func (h *Handlers) ListInvoices(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var f models.InvoiceFilter
	status := r.URL.Query().Get("status")
	if status != "" {
		s := models.InvoiceStatus(status)
		f.Status = &s
	}
	invoices, err := h.db.ListInvoices(r.Context(), user.ID, f)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	stats, err := h.reports.InvoiceStats(r.Context(), user.ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	clients, err := h.db.ListClients(r.Context(), user.ID)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	projects, err := h.db.ListProjects(r.Context(), user.ID, models.ProjectFilter{})
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	h.render(w, r, "invoices.html", h.page(r, "Invoices", "invoices", InvoicesViewModel{
		Invoices: invoices,
		Stats:    stats,
		Clients:  clients,
		Projects: projects,
		Statuses: models.InvoiceStatuses,
		Filter:   status,
	}))
}

func (h *Handlers) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in, err := parseInvoiceForm(r)
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.invoicer.Create(r.Context(), GetUserFromContext(r).ID, in); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/invoices")
}

func (h *Handlers) UpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	status := models.InvoiceStatus(formString(r, "status"))
	if _, err := h.invoicer.UpdateStatus(r.Context(), GetUserFromContext(r).ID, id, status); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/invoices")
}

func (h *Handlers) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.plainError(w, r, err)
		return
	}
	if err := h.db.DeleteInvoice(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/invoices")
}

// SettingsViewModel is the data passed to the settings template.
type SettingsViewModel struct {
	Saved bool
}

func (h *Handlers) Settings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "settings.html", h.page(r, "Settings", "settings", SettingsViewModel{
		Saved: r.URL.Query().Get("saved") == "1",
	}))
}

func (h *Handlers) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}
	in := models.ProfileUpdate{Name: formString(r, "name")}
	if err := models.Validate(in); err != nil {
		h.plainError(w, r, err)
		return
	}
	if _, err := h.db.UpdateUserName(r.Context(), GetUserFromContext(r).ID, in.Name); err != nil {
		h.plainError(w, r, err)
		return
	}
	redirect(w, r, "/settings?saved=1")
}
