package e2e

import (
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// E2ETestSuite provides a test suite for end-to-end tests
type E2ETestSuite struct {
	suite.Suite
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	expect  playwright.PlaywrightAssertions
}

// SetupSuite runs once before all tests
func (suite *E2ETestSuite) SetupSuite() {
	pw, err := playwright.Run()
	require.NoError(suite.T(), err, "could not launch playwright")
	suite.pw = pw

	browser, err := pw.Chromium.Launch()
	require.NoError(suite.T(), err, "could not launch chromium")
	suite.browser = browser

	suite.expect = playwright.NewPlaywrightAssertions()
}

// TearDownSuite runs once after all tests
func (suite *E2ETestSuite) TearDownSuite() {
	if suite.browser != nil {
		suite.browser.Close()
	}
	if suite.pw != nil {
		suite.pw.Stop()
	}
}

// SetupTest runs before each test
func (suite *E2ETestSuite) SetupTest() {
	page, err := suite.browser.NewPage()
	require.NoError(suite.T(), err, "could not create page")
	suite.page = page

	_, err = suite.page.Goto(appURL)
	require.NoError(suite.T(), err, "could not navigate to app")
}

// TearDownTest runs after each test
func (suite *E2ETestSuite) TearDownTest() {
	if suite.page != nil {
		suite.page.Close()
	}
}

func (suite *E2ETestSuite) login() {
	// Wait for login form
	err := suite.expect.Locator(suite.page.Locator(".login-form")).ToBeVisible()
	require.NoError(suite.T(), err, "login form not visible")

	// Fill in credentials
	err = suite.page.Locator("input[name=username]").Fill("testuser")
	require.NoError(suite.T(), err, "failed to fill username")

	err = suite.page.Locator("input[name=password]").Fill("testpass123")
	require.NoError(suite.T(), err, "failed to fill password")

	// Submit login
	err = suite.page.Locator(".login-btn").Click()
	require.NoError(suite.T(), err, "failed to click login")

	// Wait for redirect to the dashboard
	err = suite.expect.Locator(suite.page.Locator(".dashboard-screen")).ToBeVisible()
	require.NoError(suite.T(), err, "did not redirect to dashboard after login")
}

func (suite *E2ETestSuite) TestCompleteUserFlow() {
	// Login
	suite.login()

	// Create a client
	_, err := suite.page.Goto(appURL + "/clients")
	require.NoError(suite.T(), err, "could not open clients page")

	err = suite.page.Locator("#client-form input[name=name]").Fill("Acme Corp")
	require.NoError(suite.T(), err, "failed to fill client name")

	err = suite.page.Locator("#client-form input[name=email]").Fill("billing@acme.test")
	require.NoError(suite.T(), err, "failed to fill client email")

	err = suite.page.Locator("#client-form button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit client")

	err = suite.expect.Locator(suite.page.Locator(".client-row")).ToHaveCount(1)
	require.NoError(suite.T(), err, "client row count mismatch")

	err = suite.expect.Locator(suite.page.Locator(".client-row").First()).ToContainText("Acme Corp")
	require.NoError(suite.T(), err, "client name mismatch")

	// Create a project for it
	_, err = suite.page.Goto(appURL + "/projects")
	require.NoError(suite.T(), err, "could not open projects page")

	err = suite.page.Locator("#project-form input[name=name]").Fill("Website")
	require.NoError(suite.T(), err, "failed to fill project name")

	err = suite.page.Locator("#project-form input[name=rate]").Fill("80")
	require.NoError(suite.T(), err, "failed to fill project rate")

	err = suite.page.Locator("#project-form button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit project")

	err = suite.expect.Locator(suite.page.Locator(".project-row")).ToHaveCount(1)
	require.NoError(suite.T(), err, "project row count mismatch")

	err = suite.expect.Locator(suite.page.Locator(".project-row").First()).ToContainText("$80.00/hr")
	require.NoError(suite.T(), err, "project rate mismatch")

	// Log time against the project
	_, err = suite.page.Goto(appURL + "/time")
	require.NoError(suite.T(), err, "could not open time page")

	err = suite.page.Locator("#time-form input[name=hours]").Fill("1.5")
	require.NoError(suite.T(), err, "failed to fill hours")

	err = suite.page.Locator("#time-form button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit time entry")

	err = suite.expect.Locator(suite.page.Locator(".entry-row")).ToHaveCount(1)
	require.NoError(suite.T(), err, "time entry count mismatch")

	err = suite.expect.Locator(suite.page.Locator(".entry-row").First()).ToContainText("1.50")
	require.NoError(suite.T(), err, "hours mismatch")

	// Record an expense
	_, err = suite.page.Goto(appURL + "/expenses")
	require.NoError(suite.T(), err, "could not open expenses page")

	err = suite.page.Locator("#expense-form input[name=description]").Fill("Lunch Test")
	require.NoError(suite.T(), err, "failed to fill description")

	err = suite.page.Locator("#expense-form input[name=amount]").Fill("12.50")
	require.NoError(suite.T(), err, "failed to fill amount")

	_, err = suite.page.Locator("#expense-form select[name=category]").SelectOption(playwright.SelectOptionValues{
		Values: &[]string{"Meals"},
	})
	require.NoError(suite.T(), err, "failed to select category")

	err = suite.page.Locator("#expense-form button[type=submit]").Click()
	require.NoError(suite.T(), err, "failed to submit expense")

	err = suite.expect.Locator(suite.page.Locator(".expense-item")).ToHaveCount(1)
	require.NoError(suite.T(), err, "expense item count mismatch")

	item := suite.page.Locator(".expense-item").First()
	err = suite.expect.Locator(item.Locator(".expense-details strong")).ToHaveText("Lunch Test")
	require.NoError(suite.T(), err, "description mismatch")

	err = suite.expect.Locator(item.Locator(".expense-amount")).ToContainText("12.50")
	require.NoError(suite.T(), err, "amount mismatch")
}

// TestE2ESuite runs the e2e test suite
func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
