package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"lab-request-api/models"
)

func TestPickRule(t *testing.T) {
	// Rules are loaded priority DESC, rule_id ASC; the first match wins.
	rules := []models.NotificationRule{
		{RuleID: 5, Role: models.RoleCompanyAdmin, Priority: 20},
		{RuleID: 3, Role: models.RoleCompanyAdmin, Priority: 10},
		{RuleID: 7, Role: models.RoleLaborStaff, Priority: 5},
	}

	picked := pickRule(rules, models.RoleCompanyAdmin)
	assert.NotNil(t, picked)
	assert.Equal(t, uint(5), picked.RuleID)

	picked = pickRule(rules, models.RoleLaborStaff)
	assert.NotNil(t, picked)
	assert.Equal(t, uint(7), picked.RuleID)

	assert.Nil(t, pickRule(rules, models.RoleSuperAdmin))
	assert.Nil(t, pickRule(nil, models.RoleCompanyAdmin))
}

func TestFilterCompanyScoped(t *testing.T) {
	companyA := uint(1)
	companyB := uint(2)

	users := []models.User{
		{UserID: 1, Role: models.RoleSuperAdmin},
		{UserID: 2, Role: models.RoleLaborStaff},
		{UserID: 3, Role: models.RoleCompanyAdmin, CompanyID: &companyA},
		{UserID: 4, Role: models.RoleCompanyAdmin, CompanyID: &companyB},
		{UserID: 5, Role: models.RoleCompanyUser, CompanyID: &companyA},
		{UserID: 6, Role: models.RoleCompanyLogistics, CompanyID: &companyB},
		{UserID: 7, Role: models.RoleCompanyUser}, // orphaned, no company
	}

	got := filterCompanyScoped(users, companyA)

	ids := make([]uint, 0, len(got))
	for _, u := range got {
		ids = append(ids, u.UserID)
	}
	// Cross-company roles pass through; company-scoped roles from another
	// company (or without one) are dropped.
	assert.Equal(t, []uint{1, 2, 3, 5}, ids)
}

func TestInAppMessage(t *testing.T) {
	data := map[string]string{
		"request_number": "ACME-20250115-001",
		"new_status":     "in_transit",
		"company_name":   "Acme GmbH",
		"days_remaining": "2",
	}

	tests := []struct {
		eventKey string
		want     string
	}{
		{EventStatusChange, "Status change: ACME-20250115-001 → in_transit"},
		{"status_to_in_transit", "Status change: ACME-20250115-001 → in_transit"},
		{EventNewRequest, "New request: ACME-20250115-001 (Acme GmbH)"},
		{EventRequestApproved, "Approved: ACME-20250115-001"},
		{EventRequestRejected, "Rejected: ACME-20250115-001"},
		{EventResultsUploaded, "Results uploaded: ACME-20250115-001"},
		{EventDeadlineApproaching, "Deadline approaching: ACME-20250115-001 (2 days)"},
		{EventCommentAdded, "New comment: ACME-20250115-001"},
		{"something_else", "New notification: ACME-20250115-001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inAppMessage(tt.eventKey, data), "event %s", tt.eventKey)
	}
}

func TestRequestLink(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://lab.example.com/")

	id := uint(42)
	assert.Equal(t,
		"https://lab.example.com/requests?number=ACME-20250115-001",
		requestLink(&id, "ACME-20250115-001"))
	assert.Equal(t,
		"https://lab.example.com/requests?id=42",
		requestLink(&id, ""))
	assert.Equal(t,
		"https://lab.example.com/requests",
		requestLink(nil, ""))
}

func TestRequestLinkDefaultBase(t *testing.T) {
	t.Setenv("FRONTEND_URL", "")
	assert.Equal(t, "http://localhost:3000/requests?number=X-1", requestLink(nil, "X-1"))
}

func TestNotifyUnknownEventKeyReturnsZeroAndWritesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewNotificationService(db)

	// Only the event-type lookup runs; it finds nothing and dispatch stops.
	mock.ExpectQuery("SELECT (.+) FROM `notification_event_types`").
		WithArgs("no_such_event").
		WillReturnRows(sqlmock.NewRows([]string{"event_type_id"}))

	inApp, email := svc.Notify("no_such_event", nil, map[string]string{"request_number": "X-1"}, nil)

	assert.Zero(t, inApp)
	assert.Zero(t, email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
