package handlers

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/models"
)

// formDate is the layout of <input type="date"> values.
const formDate = "2006-01-02"

func formString(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// formOptString is nil when the field was not submitted at all.
func formOptString(r *http.Request, name string) *string {
	if _, ok := r.Form[name]; !ok {
		return nil
	}
	v := formString(r, name)
	return &v
}

func formFloat(r *http.Request, name string) (float64, error) {
	raw := formString(r, name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, apperrors.Validationf("%s must be a number", name)
	}
	return v, nil
}

func formOptFloat(r *http.Request, name string) (*float64, error) {
	if formString(r, name) == "" {
		return nil, nil
	}
	v, err := formFloat(r, name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func formID(r *http.Request, name string) (int64, error) {
	id, err := formOptID(r, name)
	if err != nil || id == nil {
		return 0, err
	}
	return *id, nil
}

func formOptID(r *http.Request, name string) (*int64, error) {
	raw := formString(r, name)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperrors.Validationf("invalid %s", name)
	}
	return &id, nil
}

func formTime(r *http.Request, name string) (time.Time, error) {
	raw := formString(r, name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(formDate, raw, time.Local)
	if err != nil {
		return time.Time{}, apperrors.Validationf("%s must be a date (YYYY-MM-DD)", name)
	}
	return t, nil
}

func formBool(r *http.Request, name string) bool {
	switch formString(r, name) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

func parseClientForm(r *http.Request) models.NewClient {
	return models.NewClient{
		Name:    formString(r, "name"),
		Email:   formString(r, "email"),
		Company: formOptString(r, "company"),
		Phone:   formOptString(r, "phone"),
		Address: formOptString(r, "address"),
	}
}

func parseClientPatchForm(r *http.Request) models.ClientPatch {
	return models.ClientPatch{
		Name:    formOptString(r, "name"),
		Email:   formOptString(r, "email"),
		Company: formOptString(r, "company"),
		Phone:   formOptString(r, "phone"),
		Address: formOptString(r, "address"),
	}
}

func parseProjectForm(r *http.Request) (models.NewProject, error) {
	clientID, err := formID(r, "client_id")
	if err != nil {
		return models.NewProject{}, err
	}
	rate, err := formOptFloat(r, "rate")
	if err != nil {
		return models.NewProject{}, err
	}
	return models.NewProject{
		ClientID:    clientID,
		Name:        formString(r, "name"),
		Description: formOptString(r, "description"),
		Status:      models.ProjectStatus(formString(r, "status")),
		Rate:        rate,
	}, nil
}

func parseProjectPatchForm(r *http.Request) (models.ProjectPatch, error) {
	var p models.ProjectPatch
	var err error
	if p.ClientID, err = formOptID(r, "client_id"); err != nil {
		return p, err
	}
	if p.Rate, err = formOptFloat(r, "rate"); err != nil {
		return p, err
	}
	p.Name = formOptString(r, "name")
	p.Description = formOptString(r, "description")
	if s := formString(r, "status"); s != "" {
		status := models.ProjectStatus(s)
		p.Status = &status
	}
	return p, nil
}

func parseTimeEntryForm(r *http.Request) (models.NewTimeEntry, error) {
	projectID, err := formID(r, "project_id")
	if err != nil {
		return models.NewTimeEntry{}, err
	}
	hours, err := formFloat(r, "hours")
	if err != nil {
		return models.NewTimeEntry{}, err
	}
	date, err := formTime(r, "date")
	if err != nil {
		return models.NewTimeEntry{}, err
	}
	return models.NewTimeEntry{
		ProjectID:   projectID,
		Description: formOptString(r, "description"),
		Hours:       hours,
		Date:        date,
	}, nil
}

func parseExpenseForm(r *http.Request) (models.NewExpense, error) {
	projectID, err := formOptID(r, "project_id")
	if err != nil {
		return models.NewExpense{}, err
	}
	amount, err := formFloat(r, "amount")
	if err != nil {
		return models.NewExpense{}, err
	}
	date, err := formTime(r, "date")
	if err != nil {
		return models.NewExpense{}, err
	}
	return models.NewExpense{
		ProjectID:      projectID,
		Description:    formString(r, "description"),
		Amount:         amount,
		Category:       formString(r, "category"),
		Date:           date,
		IsReimbursable: formBool(r, "is_reimbursable"),
		IsBillable:     formBool(r, "is_billable"),
	}, nil
}

func parseInvoiceForm(r *http.Request) (models.NewInvoice, error) {
	clientID, err := formID(r, "client_id")
	if err != nil {
		return models.NewInvoice{}, err
	}
	projectID, err := formOptID(r, "project_id")
	if err != nil {
		return models.NewInvoice{}, err
	}
	amount, err := formFloat(r, "amount")
	if err != nil {
		return models.NewInvoice{}, err
	}
	due, err := formTime(r, "due_date")
	if err != nil {
		return models.NewInvoice{}, err
	}
	return models.NewInvoice{
		ClientID:    clientID,
		ProjectID:   projectID,
		Amount:      amount,
		DueDate:     due,
		Description: formOptString(r, "description"),
		Status:      models.InvoiceStatus(formString(r, "status")),
	}, nil
}

func parseDeriveForm(r *http.Request, projectID int64) (models.DeriveRequest, error) {
	due, err := formTime(r, "due_date")
	if err != nil {
		return models.DeriveRequest{}, err
	}
	return models.DeriveRequest{ProjectID: projectID, DueDate: due}, nil
}
