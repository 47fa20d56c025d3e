package handlers

import (
	"net/http"
	"strings"
	"time"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/models"

	"go.uber.org/zap"
)

// TokenRequest is the body of POST /api/v1/token.
type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a bearer token for the JSON API.
type TokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APIToken exchanges a username and password for a bearer token.
func (h *Handlers) APIToken(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		h.writeError(w, r, apperrors.Unavailable("API tokens are not configured"))
		return
	}
	var req TokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		h.writeError(w, r, apperrors.Validation("username and password are required"))
		return
	}
	user, err := h.authenticate(r.Context(), username, req.Password)
	if err != nil {
		h.writeError(w, r, apperrors.Unauthorized("invalid username or password"))
		return
	}
	token, expires, err := h.tokens.Issue(user.ID, user.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.log.Info("api token issued", zap.Int64("user_id", user.ID), zap.String("request_id", RequestIDFromContext(r.Context())))
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, TokenType: "Bearer", ExpiresAt: expires})
}

// APIGetUser returns the authenticated user.
func (h *Handlers) APIGetUser(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, GetUserFromContext(r))
}

// APIUpdateUser changes the display name of the authenticated user.
func (h *Handlers) APIUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileUpdate
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := models.Validate(in); err != nil {
		h.writeError(w, r, err)
		return
	}
	user, err := h.db.UpdateUserName(r.Context(), GetUserFromContext(r).ID, in.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Dashboard

// APIDashboard returns the dashboard figures.
func (h *Handlers) APIDashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.reports.Dashboard(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

// Clients

// APIListClients returns the user's clients, newest first.
func (h *Handlers) APIListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.db.ListClients(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clients)
}

// APICreateClient creates a client.
func (h *Handlers) APICreateClient(w http.ResponseWriter, r *http.Request) {
	var in models.NewClient
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := models.Validate(in); err != nil {
		h.writeError(w, r, err)
		return
	}
	client, err := h.db.CreateClient(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, client)
}

// APIGetClient returns a client with its projects and invoices.
func (h *Handlers) APIGetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	detail, err := h.db.GetClientDetail(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// APIUpdateClient applies a partial update to a client.
func (h *Handlers) APIUpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var p models.ClientPatch
	if err := decodePatch(w, r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	client, err := h.db.UpdateClient(r.Context(), GetUserFromContext(r).ID, id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, client)
}

// APIDeleteClient deletes a client with its projects and invoices.
func (h *Handlers) APIDeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.db.DeleteClient(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Projects

// APIListProjects returns projects, optionally filtered by client or status.
func (h *Handlers) APIListProjects(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f := models.ProjectFilter{ClientID: clientID}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.ProjectStatus(s)
		f.Status = &status
	}
	projects, err := h.db.ListProjects(r.Context(), GetUserFromContext(r).ID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// APICreateProject creates a project under one of the user's clients.
func (h *Handlers) APICreateProject(w http.ResponseWriter, r *http.Request) {
	var in models.NewProject
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := models.Validate(in); err != nil {
		h.writeError(w, r, err)
		return
	}
	project, err := h.db.CreateProject(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// APIGetProject returns a project.
func (h *Handlers) APIGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	project, err := h.db.GetProject(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// APIUpdateProject applies a partial update to a project.
func (h *Handlers) APIUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var p models.ProjectPatch
	if err := decodePatch(w, r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	project, err := h.db.UpdateProject(r.Context(), GetUserFromContext(r).ID, id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// APIDeleteProject deletes a project.
func (h *Handlers) APIDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.db.DeleteProject(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// APIProjectProfitability returns the profitability report of a project.
func (h *Handlers) APIProjectProfitability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	report, err := h.reports.Profitability(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// APIProjectUnbilledTime returns the time of a project not yet invoiced.
func (h *Handlers) APIProjectUnbilledTime(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	unbilled, err := h.invoicer.UnbilledTime(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unbilled)
}

// APIProjectBillableExpenses returns the billable expenses of a project not yet invoiced.
func (h *Handlers) APIProjectBillableExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	billable, err := h.invoicer.BillableExpenses(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, billable)
}

// APIProjectHours returns the total hours logged on a project.
func (h *Handlers) APIProjectHours(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	hours, err := h.reports.TotalHours(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"total_hours": hours})
}

// APIProjectExpenses lists the expenses of a project.
func (h *Handlers) APIProjectExpenses(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expenses, err := h.reports.ExpensesByProject(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// Time entries and the timer

// APIListTimeEntries returns time entries, optionally for one project.
func (h *Handlers) APIListTimeEntries(w http.ResponseWriter, r *http.Request) {
	projectID, err := queryID(r, "project_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entries, err := h.db.ListTimeEntries(r.Context(), GetUserFromContext(r).ID, models.TimeEntryFilter{
		ProjectID: projectID,
		Unbilled:  queryBool(r, "unbilled"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// APICreateTimeEntry logs time by hand.
func (h *Handlers) APICreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var in models.NewTimeEntry
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := models.Validate(in); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.db.CreateTimeEntry(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// APIGetTimeEntry returns a time entry.
func (h *Handlers) APIGetTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.db.GetTimeEntry(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// APIUpdateTimeEntry applies a partial update to a time entry.
func (h *Handlers) APIUpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var p models.TimeEntryPatch
	if err := decodePatch(w, r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.db.UpdateTimeEntry(r.Context(), GetUserFromContext(r).ID, id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// APIDeleteTimeEntry deletes a time entry.
func (h *Handlers) APIDeleteTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.db.DeleteTimeEntry(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// APIRunningTimer answers the running timer, or null when none runs.
func (h *Handlers) APIRunningTimer(w http.ResponseWriter, r *http.Request) {
	entry, err := h.tracker.Running(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// APIStartTimer starts a timer on a project.
func (h *Handlers) APIStartTimer(w http.ResponseWriter, r *http.Request) {
	var in models.TimerStart
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.tracker.Start(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// APIStopTimer stops a running timer and records its hours.
func (h *Handlers) APIStopTimer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	entry, err := h.tracker.Stop(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Expenses

// APIListExpenses returns expenses matching the query filters.
func (h *Handlers) APIListExpenses(w http.ResponseWriter, r *http.Request) {
	f, err := expenseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expenses, err := h.db.ListExpenses(r.Context(), GetUserFromContext(r).ID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

// APIExpenseSummary totals the user's expenses by category.
func (h *Handlers) APIExpenseSummary(w http.ResponseWriter, r *http.Request) {
	f, err := expenseFilter(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	summary, err := h.reports.ExpenseSummary(r.Context(), GetUserFromContext(r).ID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// expenseFilter reads ?project_id, ?billable, ?unbilled, ?from and ?to.
func expenseFilter(r *http.Request) (models.ExpenseFilter, error) {
	projectID, err := queryID(r, "project_id")
	if err != nil {
		return models.ExpenseFilter{}, err
	}
	f := models.ExpenseFilter{
		ProjectID: projectID,
		Billable:  queryBool(r, "billable"),
		Unbilled:  queryBool(r, "unbilled"),
	}
	if f.From, err = queryDate(r, "from"); err != nil {
		return f, err
	}
	if f.To, err = queryDate(r, "to"); err != nil {
		return f, err
	}
	return f, nil
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(formDate, raw, time.Local)
	if err != nil {
		return time.Time{}, apperrors.Validationf("%s must be a date (YYYY-MM-DD)", name)
	}
	return t, nil
}

// APICreateExpense records an expense.
func (h *Handlers) APICreateExpense(w http.ResponseWriter, r *http.Request) {
	var in models.NewExpense
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := models.Validate(in); err != nil {
		h.writeError(w, r, err)
		return
	}
	expense, err := h.db.CreateExpense(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

// APIGetExpense returns an expense.
func (h *Handlers) APIGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expense, err := h.db.GetExpense(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// APIUpdateExpense applies a partial update to an expense.
func (h *Handlers) APIUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var p models.ExpensePatch
	if err := decodePatch(w, r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	expense, err := h.db.UpdateExpense(r.Context(), GetUserFromContext(r).ID, id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// APIDeleteExpense deletes an expense and its receipt.
func (h *Handlers) APIDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	expense, err := h.db.DeleteExpense(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if expense.Receipt != nil {
		h.dropReceipt(r.Context(), *expense.Receipt)
	}
	w.WriteHeader(http.StatusNoContent)
}

// APIUploadReceipt stores the raw request body as the expense receipt.
func (h *Handlers) APIUploadReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	filename := r.URL.Query().Get("filename")
	expense, err := h.storeReceipt(r.Context(), GetUserFromContext(r).ID, id, filename, r.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

// APIDownloadReceipt streams the receipt of an expense.
func (h *Handlers) APIDownloadReceipt(w http.ResponseWriter, r *http.Request) {
	if err := h.serveReceipt(w, r); err != nil {
		h.writeError(w, r, err)
	}
}

// Invoices

// APIListInvoices returns invoices filtered by client, project or status.
func (h *Handlers) APIListInvoices(w http.ResponseWriter, r *http.Request) {
	clientID, err := queryID(r, "client_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	projectID, err := queryID(r, "project_id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	f := models.InvoiceFilter{ClientID: clientID, ProjectID: projectID}
	if s := r.URL.Query().Get("status"); s != "" {
		status := models.InvoiceStatus(s)
		f.Status = &status
	}
	invoices, err := h.db.ListInvoices(r.Context(), GetUserFromContext(r).ID, f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, invoices)
}

// APICreateInvoice creates an invoice with an explicit amount.
func (h *Handlers) APICreateInvoice(w http.ResponseWriter, r *http.Request) {
	var in models.NewInvoice
	if err := decodeJSON(w, r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.invoicer.Create(r.Context(), GetUserFromContext(r).ID, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// APIInvoiceFromTime bills the unbilled time of a project.
func (h *Handlers) APIInvoiceFromTime(w http.ResponseWriter, r *http.Request) {
	var req models.DeriveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.invoicer.CreateFromTime(r.Context(), GetUserFromContext(r).ID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// APIInvoiceFromExpenses bills the billable expenses of a project.
func (h *Handlers) APIInvoiceFromExpenses(w http.ResponseWriter, r *http.Request) {
	var req models.DeriveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.invoicer.CreateFromExpenses(r.Context(), GetUserFromContext(r).ID, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

// APIInvoiceStats returns invoice counts and totals.
func (h *Handlers) APIInvoiceStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reports.InvoiceStats(r.Context(), GetUserFromContext(r).ID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// APIGetInvoice returns an invoice.
func (h *Handlers) APIGetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.db.GetInvoice(r.Context(), GetUserFromContext(r).ID, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// APIUpdateInvoice applies a partial update to an invoice.
func (h *Handlers) APIUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var p models.InvoicePatch
	if err := decodePatch(w, r, &p); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.db.UpdateInvoice(r.Context(), GetUserFromContext(r).ID, id, p)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// InvoiceStatusRequest is the body of PUT /api/v1/invoices/{id}/status.
type InvoiceStatusRequest struct {
	Status models.InvoiceStatus `json:"status"`
}

// APIUpdateInvoiceStatus sets the status of an invoice.
func (h *Handlers) APIUpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req InvoiceStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	inv, err := h.invoicer.UpdateStatus(r.Context(), GetUserFromContext(r).ID, id, req.Status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

// APIDeleteInvoice deletes an invoice and releases its billed items.
func (h *Handlers) APIDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.db.DeleteInvoice(r.Context(), GetUserFromContext(r).ID, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// patch is implemented by the models' patch structs.
type patch interface {
	Empty() bool
}

// decodePatch reads and validates a PATCH body. A body that changes nothing
// is rejected.
func decodePatch(w http.ResponseWriter, r *http.Request, p patch) error {
	if err := decodeJSON(w, r, p); err != nil {
		return err
	}
	if p.Empty() {
		return apperrors.Validation("no fields to update")
	}
	return models.Validate(p)
}
