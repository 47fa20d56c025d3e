package storage

import (
	"context"
	"testing"
	"time"

	"freelance-crm/internal/apperrors"
	"freelance-crm/internal/auth"
	"freelance-crm/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func ptr[T any](v T) *T { return &v }

// DBTestSuite provides a test suite for database operations
type DBTestSuite struct {
	suite.Suite
	db    *DB
	ctx   context.Context
	alice *models.User
	bob   *models.User
}

// SetupTest runs before each test
func (suite *DBTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	suite.alice, err = db.CreateUser(suite.ctx, "alice", "Alice", "hash")
	require.NoError(suite.T(), err)
	suite.bob, err = db.CreateUser(suite.ctx, "bob", "", "hash")
	require.NoError(suite.T(), err)
}

// TearDownTest runs after each test
func (suite *DBTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *DBTestSuite) createClient(userID int64, name string) *models.Client {
	c, err := suite.db.CreateClient(suite.ctx, userID, models.NewClient{Name: name, Email: name + "@example.test"})
	require.NoError(suite.T(), err)
	return c
}

func (suite *DBTestSuite) createProject(userID, clientID int64, rate *float64) *models.Project {
	p, err := suite.db.CreateProject(suite.ctx, userID, models.NewProject{ClientID: clientID, Name: "Website", Rate: rate})
	require.NoError(suite.T(), err)
	return p
}

func (suite *DBTestSuite) TestCreateUserDuplicate() {
	_, err := suite.db.CreateUser(suite.ctx, "alice", "", "hash")
	assert.ErrorIs(suite.T(), err, apperrors.ErrConflict)
}

func (suite *DBTestSuite) TestUpdateUserName() {
	u, err := suite.db.UpdateUserName(suite.ctx, suite.bob.ID, "Bob B.")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Bob B.", u.Name)

	_, err = suite.db.UpdateUserName(suite.ctx, 999, "Nobody")
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *DBTestSuite) TestClientLifecycle() {
	c, err := suite.db.CreateClient(suite.ctx, suite.alice.ID, models.NewClient{
		Name:    "Acme",
		Email:   "billing@acme.test",
		Company: ptr("Acme Ltd"),
		Phone:   ptr("  "),
	})
	require.NoError(suite.T(), err)
	assert.NotZero(suite.T(), c.ID)
	assert.Nil(suite.T(), c.Phone, "blank optional text is stored as NULL")

	got, err := suite.db.GetClient(suite.ctx, suite.alice.ID, c.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme Ltd", *got.Company)

	updated, err := suite.db.UpdateClient(suite.ctx, suite.alice.ID, c.ID, models.ClientPatch{Phone: ptr("555-0100")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Acme", updated.Name, "unset patch fields are unchanged")
	assert.Equal(suite.T(), "555-0100", *updated.Phone)

	require.NoError(suite.T(), suite.db.DeleteClient(suite.ctx, suite.alice.ID, c.ID))
	_, err = suite.db.GetClient(suite.ctx, suite.alice.ID, c.ID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *DBTestSuite) TestListClientsNewestFirst() {
	suite.createClient(suite.alice.ID, "first")
	suite.createClient(suite.alice.ID, "second")
	suite.createClient(suite.bob.ID, "other")

	clients, err := suite.db.ListClients(suite.ctx, suite.alice.ID)
	require.NoError(suite.T(), err)
	if assert.Len(suite.T(), clients, 2) {
		assert.Equal(suite.T(), "second", clients[0].Name)
		assert.Equal(suite.T(), "first", clients[1].Name)
	}
}

func (suite *DBTestSuite) TestCrossUserAccessIsNotFound() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, nil)

	_, err := suite.db.GetClient(suite.ctx, suite.bob.ID, c.ID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	_, err = suite.db.UpdateClient(suite.ctx, suite.bob.ID, c.ID, models.ClientPatch{Name: ptr("stolen")})
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	_, err = suite.db.UpdateProject(suite.ctx, suite.bob.ID, p.ID, models.ProjectPatch{})
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound, "an empty patch still checks ownership")

	assert.ErrorIs(suite.T(), suite.db.DeleteProject(suite.ctx, suite.bob.ID, p.ID), apperrors.ErrNotFound)
	assert.ErrorIs(suite.T(), suite.db.DeleteClient(suite.ctx, suite.bob.ID, c.ID), apperrors.ErrNotFound)

	// Bob cannot attach his records to Alice's client or project either.
	_, err = suite.db.CreateProject(suite.ctx, suite.bob.ID, models.NewProject{ClientID: c.ID, Name: "x"})
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
	_, err = suite.db.CreateTimeEntry(suite.ctx, suite.bob.ID, models.NewTimeEntry{ProjectID: p.ID, Hours: 1})
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	got, err := suite.db.GetClient(suite.ctx, suite.alice.ID, c.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "acme", got.Name)
}

func (suite *DBTestSuite) TestProjectDefaultsAndFilters() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, ptr(80.0))
	assert.Equal(suite.T(), models.ProjectActive, p.Status)
	assert.Equal(suite.T(), "acme", p.ClientName)

	done := models.ProjectCompleted
	_, err := suite.db.UpdateProject(suite.ctx, suite.alice.ID, p.ID, models.ProjectPatch{Status: &done})
	require.NoError(suite.T(), err)

	active, err := suite.db.CountProjects(suite.ctx, suite.alice.ID, models.ProjectActive)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, active)

	projects, err := suite.db.ListProjects(suite.ctx, suite.alice.ID, models.ProjectFilter{Status: &done})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), projects, 1)

	detail, err := suite.db.GetClientDetail(suite.ctx, suite.alice.ID, c.ID)
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), detail.Projects, 1)
	assert.Empty(suite.T(), detail.Invoices)
}

func (suite *DBTestSuite) TestTimeEntries() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, nil)
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, h := range []float64{1.5, 2.25, 0.5} {
		_, err := suite.db.CreateTimeEntry(suite.ctx, suite.alice.ID, models.NewTimeEntry{
			ProjectID: p.ID, Hours: h, Date: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(suite.T(), err)
	}

	entries, err := suite.db.ListTimeEntries(suite.ctx, suite.alice.ID, models.TimeEntryFilter{ProjectID: &p.ID})
	require.NoError(suite.T(), err)
	if assert.Len(suite.T(), entries, 3) {
		assert.Equal(suite.T(), 0.5, entries[0].Hours, "latest date first")
		assert.Equal(suite.T(), "Website", entries[0].ProjectName)
		assert.True(suite.T(), entries[0].Date.Equal(base.Add(2*time.Hour)))
	}

	total, err := suite.db.TotalHours(suite.ctx, suite.alice.ID, p.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4.25, total)

	updated, err := suite.db.UpdateTimeEntry(suite.ctx, suite.alice.ID, entries[0].ID, models.TimeEntryPatch{Hours: ptr(0.75)})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0.75, updated.Hours)

	require.NoError(suite.T(), suite.db.DeleteTimeEntry(suite.ctx, suite.alice.ID, entries[0].ID))
	assert.ErrorIs(suite.T(), suite.db.DeleteTimeEntry(suite.ctx, suite.alice.ID, entries[0].ID), apperrors.ErrNotFound)
}

func (suite *DBTestSuite) TestStartTimerPreemptsRunning() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, nil)
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	first, stopped, err := suite.db.StartTimer(suite.ctx, suite.alice.ID, models.TimerStart{ProjectID: p.ID}, t0,
		func(*models.TimeEntry) float64 { return 0 })
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), stopped)
	assert.True(suite.T(), first.IsRunning)
	assert.Equal(suite.T(), 0.0, first.Hours)
	require.NotNil(suite.T(), first.StartTime)
	assert.True(suite.T(), first.StartTime.Equal(t0))

	second, stopped, err := suite.db.StartTimer(suite.ctx, suite.alice.ID, models.TimerStart{ProjectID: p.ID}, t0.Add(time.Hour),
		func(running *models.TimeEntry) float64 {
			assert.Equal(suite.T(), first.ID, running.ID)
			return 1
		})
	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), stopped)
	assert.Equal(suite.T(), first.ID, stopped.ID)
	assert.False(suite.T(), stopped.IsRunning)
	assert.Equal(suite.T(), 1.0, stopped.Hours)
	assert.True(suite.T(), stopped.EndTime.Equal(t0.Add(time.Hour)))

	running, err := suite.db.GetRunningTimer(suite.ctx, suite.alice.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), second.ID, running.ID)

	none, err := suite.db.GetRunningTimer(suite.ctx, suite.bob.ID)
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), none)
}

func (suite *DBTestSuite) TestStopTimer() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, nil)
	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	entry, _, err := suite.db.StartTimer(suite.ctx, suite.alice.ID, models.TimerStart{ProjectID: p.ID}, t0,
		func(*models.TimeEntry) float64 { return 0 })
	require.NoError(suite.T(), err)

	_, err = suite.db.StopTimer(suite.ctx, suite.bob.ID, entry.ID, t0, func(time.Time) float64 { return 1 })
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	stopped, err := suite.db.StopTimer(suite.ctx, suite.alice.ID, entry.ID, t0.Add(90*time.Minute),
		func(start time.Time) float64 {
			assert.True(suite.T(), start.Equal(t0))
			return 1.5
		})
	require.NoError(suite.T(), err)
	assert.False(suite.T(), stopped.IsRunning)
	assert.Equal(suite.T(), 1.5, stopped.Hours)

	_, err = suite.db.StopTimer(suite.ctx, suite.alice.ID, entry.ID, t0, func(time.Time) float64 { return 1 })
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound, "a stopped timer cannot be stopped again")
}

func (suite *DBTestSuite) TestExpenses() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, nil)

	_, err := suite.db.CreateExpense(suite.ctx, suite.alice.ID, models.NewExpense{
		Description: "Hosting", Amount: 20, Category: "Software", ProjectID: &p.ID, IsBillable: true,
	})
	require.NoError(suite.T(), err)
	general, err := suite.db.CreateExpense(suite.ctx, suite.alice.ID, models.NewExpense{
		Description: "Desk", Amount: 300, Category: "Office Supplies",
	})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), general.ProjectName)
	assert.False(suite.T(), general.Date.IsZero(), "date defaults to now")

	billable, err := suite.db.ListExpenses(suite.ctx, suite.alice.ID, models.ExpenseFilter{ProjectID: &p.ID, Billable: true})
	require.NoError(suite.T(), err)
	if assert.Len(suite.T(), billable, 1) {
		assert.Equal(suite.T(), "Website", billable[0].ProjectName)
	}

	prev, err := suite.db.SetExpenseReceipt(suite.ctx, suite.alice.ID, general.ID, "receipts/a.pdf")
	require.NoError(suite.T(), err)
	assert.Nil(suite.T(), prev)
	prev, err = suite.db.SetExpenseReceipt(suite.ctx, suite.alice.ID, general.ID, "receipts/b.pdf")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "receipts/a.pdf", *prev)

	updated, err := suite.db.UpdateExpense(suite.ctx, suite.alice.ID, general.ID, models.ExpensePatch{IsReimbursable: ptr(true)})
	require.NoError(suite.T(), err)
	assert.True(suite.T(), updated.IsReimbursable)
	assert.Equal(suite.T(), "receipts/b.pdf", *updated.Receipt)

	deleted, err := suite.db.DeleteExpense(suite.ctx, suite.alice.ID, general.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Desk", deleted.Description)

	_, err = suite.db.DeleteExpense(suite.ctx, suite.bob.ID, billable[0].ID)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}

func (suite *DBTestSuite) TestInvoiceNumbering() {
	c := suite.createClient(suite.alice.ID, "acme")
	due := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

	var last *models.Invoice
	for i := 0; i < 4; i++ {
		inv, err := suite.db.CreateInvoice(suite.ctx, suite.alice.ID,
			models.NewInvoice{ClientID: c.ID, Amount: 100, DueDate: due}, models.InvoiceMarks{})
		require.NoError(suite.T(), err)
		last = inv
	}
	assert.Equal(suite.T(), "INV-0004", last.Number)
	assert.Equal(suite.T(), models.InvoiceDraft, last.Status)
	assert.Equal(suite.T(), "acme", last.ClientName)

	// Numbering is per user.
	bobClient := suite.createClient(suite.bob.ID, "globex")
	inv, err := suite.db.CreateInvoice(suite.ctx, suite.bob.ID,
		models.NewInvoice{ClientID: bobClient.ID, Amount: 50, DueDate: due}, models.InvoiceMarks{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-0001", inv.Number)
}

func (suite *DBTestSuite) TestInvoiceNumberSkipsTakenNumber() {
	c := suite.createClient(suite.alice.ID, "acme")
	due := time.Now().AddDate(0, 1, 0)

	var created []*models.Invoice
	for i := 0; i < 3; i++ {
		inv, err := suite.db.CreateInvoice(suite.ctx, suite.alice.ID,
			models.NewInvoice{ClientID: c.ID, Amount: 10, DueDate: due}, models.InvoiceMarks{})
		require.NoError(suite.T(), err)
		created = append(created, inv)
	}
	require.NoError(suite.T(), suite.db.DeleteInvoice(suite.ctx, suite.alice.ID, created[0].ID))

	// Two invoices remain, so INV-0003 is the first candidate but is taken.
	inv, err := suite.db.CreateInvoice(suite.ctx, suite.alice.ID,
		models.NewInvoice{ClientID: c.ID, Amount: 10, DueDate: due}, models.InvoiceMarks{})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-0004", inv.Number)
}

func (suite *DBTestSuite) TestInvoiceMarksBilledItems() {
	c := suite.createClient(suite.alice.ID, "acme")
	p := suite.createProject(suite.alice.ID, c.ID, ptr(50.0))
	entry, err := suite.db.CreateTimeEntry(suite.ctx, suite.alice.ID, models.NewTimeEntry{ProjectID: p.ID, Hours: 2})
	require.NoError(suite.T(), err)
	expense, err := suite.db.CreateExpense(suite.ctx, suite.alice.ID, models.NewExpense{
		Description: "Hosting", Amount: 20, Category: "Software", ProjectID: &p.ID, IsBillable: true,
	})
	require.NoError(suite.T(), err)

	marks := models.InvoiceMarks{TimeEntryIDs: []int64{entry.ID}, ExpenseIDs: []int64{expense.ID}}
	inv, err := suite.db.CreateInvoice(suite.ctx, suite.alice.ID,
		models.NewInvoice{ClientID: c.ID, ProjectID: &p.ID, Amount: 120, DueDate: time.Now()}, marks)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Website", inv.ProjectName)

	unbilled, err := suite.db.ListTimeEntries(suite.ctx, suite.alice.ID, models.TimeEntryFilter{ProjectID: &p.ID, Unbilled: true})
	require.NoError(suite.T(), err)
	assert.Empty(suite.T(), unbilled)

	billed, err := suite.db.GetExpense(suite.ctx, suite.alice.ID, expense.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), inv.ID, *billed.InvoiceID)

	// Billed rows keep the figures the invoice was built from.
	_, err = suite.db.UpdateExpense(suite.ctx, suite.alice.ID, expense.ID, models.ExpensePatch{Amount: ptr(99.0)})
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	_, err = suite.db.UpdateExpense(suite.ctx, suite.alice.ID, expense.ID, models.ExpensePatch{IsBillable: ptr(false)})
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	_, err = suite.db.UpdateTimeEntry(suite.ctx, suite.alice.ID, entry.ID, models.TimeEntryPatch{Hours: ptr(5.0)})
	assert.ErrorIs(suite.T(), err, apperrors.ErrValidation)
	renamed, err := suite.db.UpdateExpense(suite.ctx, suite.alice.ID, expense.ID, models.ExpensePatch{Description: ptr("VPS hosting")})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "VPS hosting", renamed.Description)
	assert.Equal(suite.T(), 20.0, renamed.Amount)

	// Billing the same items twice is refused and leaves no invoice behind.
	_, err = suite.db.CreateInvoice(suite.ctx, suite.alice.ID,
		models.NewInvoice{ClientID: c.ID, Amount: 120, DueDate: time.Now()}, marks)
	assert.ErrorIs(suite.T(), err, apperrors.ErrConflict)
	count, err := suite.db.CountInvoices(suite.ctx, suite.alice.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, count)

	// Deleting the invoice releases its items.
	require.NoError(suite.T(), suite.db.DeleteInvoice(suite.ctx, suite.alice.ID, inv.ID))
	unbilled, err = suite.db.ListTimeEntries(suite.ctx, suite.alice.ID, models.TimeEntryFilter{ProjectID: &p.ID, Unbilled: true})
	require.NoError(suite.T(), err)
	assert.Len(suite.T(), unbilled, 1)
	released, err := suite.db.UpdateTimeEntry(suite.ctx, suite.alice.ID, entry.ID, models.TimeEntryPatch{Hours: ptr(5.0)})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5.0, released.Hours)
}

func (suite *DBTestSuite) TestInvoiceStatusAnyTransition() {
	c := suite.createClient(suite.alice.ID, "acme")
	inv, err := suite.db.CreateInvoice(suite.ctx, suite.alice.ID,
		models.NewInvoice{ClientID: c.ID, Amount: 10, DueDate: time.Now()}, models.InvoiceMarks{})
	require.NoError(suite.T(), err)

	for _, s := range []models.InvoiceStatus{models.InvoicePaid, models.InvoiceDraft, models.InvoiceOverdue} {
		updated, err := suite.db.UpdateInvoiceStatus(suite.ctx, suite.alice.ID, inv.ID, s)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), s, updated.Status)
	}

	_, err = suite.db.UpdateInvoiceStatus(suite.ctx, suite.bob.ID, inv.ID, models.InvoicePaid)
	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)

	recent, err := suite.db.ListInvoices(suite.ctx, suite.alice.ID, models.InvoiceFilter{Limit: 5})
	require.NoError(suite.T(), err)
	if assert.Len(suite.T(), recent, 1) {
		assert.Equal(suite.T(), models.InvoiceOverdue, recent[0].Status)
	}
}

// SessionTestSuite provides a test suite for session operations
type SessionTestSuite struct {
	suite.Suite
	db   *DB
	ctx  context.Context
	user *models.User
}

// SetupTest runs before each test
func (suite *SessionTestSuite) SetupTest() {
	db, err := NewDB(":memory:")
	require.NoError(suite.T(), err, "failed to create test database")
	suite.db = db
	suite.ctx = context.Background()

	// Create a test user
	password, err := auth.HashPassword("testpass")
	require.NoError(suite.T(), err, "failed to hash password")

	user, err := suite.db.CreateUser(suite.ctx, "testuser", "", password)
	require.NoError(suite.T(), err, "failed to create test user")
	suite.user = user
}

// TearDownTest runs after each test
func (suite *SessionTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *SessionTestSuite) TestCreateAndValidateSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	expiresAt := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(suite.ctx, token, suite.user.ID, expiresAt)
	require.NoError(suite.T(), err)

	// Validate the session
	sessionUser, err := suite.db.ValidateSession(suite.ctx, token)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "testuser", sessionUser.Username)
}

func (suite *SessionTestSuite) TestExpiredSessionIsRejected() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	err = suite.db.CreateSession(suite.ctx, token, suite.user.ID, time.Now().Add(-time.Minute))
	require.NoError(suite.T(), err)

	_, err = suite.db.ValidateSession(suite.ctx, token)
	assert.ErrorIs(suite.T(), err, apperrors.ErrUnauthorized)

	removed, err := suite.db.CleanExpiredSessions(suite.ctx)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), removed)
}

func (suite *SessionTestSuite) TestRenewSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	originalExpiry := time.Now().Add(30 * 24 * time.Hour)
	err = suite.db.CreateSession(suite.ctx, token, suite.user.ID, originalExpiry)
	require.NoError(suite.T(), err)

	// Wait a moment to ensure timestamps differ
	time.Sleep(10 * time.Millisecond)

	originalInfo, err := suite.db.ValidateSessionWithInfo(suite.ctx, token)
	require.NoError(suite.T(), err)

	newExpiry := time.Now().Add(60 * 24 * time.Hour)
	err = suite.db.RenewSession(suite.ctx, token, newExpiry)
	require.NoError(suite.T(), err)

	updatedInfo, err := suite.db.ValidateSessionWithInfo(suite.ctx, token)
	require.NoError(suite.T(), err)

	assert.True(suite.T(), updatedInfo.LastActivity.After(originalInfo.LastActivity),
		"LastActivity should be updated after renewal")
	assert.True(suite.T(), updatedInfo.ExpiresAt.After(originalInfo.ExpiresAt),
		"ExpiresAt should be extended after renewal")
}

func (suite *SessionTestSuite) TestDeleteSession() {
	token, err := auth.GenerateSessionToken()
	require.NoError(suite.T(), err)

	err = suite.db.CreateSession(suite.ctx, token, suite.user.ID, time.Now().Add(time.Hour))
	require.NoError(suite.T(), err)

	_, err = suite.db.ValidateSession(suite.ctx, token)
	require.NoError(suite.T(), err, "session should exist before deletion")

	err = suite.db.DeleteSession(suite.ctx, token)
	require.NoError(suite.T(), err)

	_, err = suite.db.ValidateSession(suite.ctx, token)
	assert.Error(suite.T(), err, "expected error after deleting session")
}

func TestRebindPostgres(t *testing.T) {
	assert.Equal(t, "SELECT 1 WHERE a = $1 AND b IN ($2, $3)",
		dialectPostgres.rebind("SELECT 1 WHERE a = ? AND b IN (?, ?)"))
	assert.Equal(t, "SELECT ?", dialectSQLite.rebind("SELECT ?"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "x")
	assert.ErrorContains(t, err, "unsupported database driver")
}

// Test suite runners
func TestDBSuite(t *testing.T) {
	suite.Run(t, new(DBTestSuite))
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
