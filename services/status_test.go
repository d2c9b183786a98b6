package services

import (
	"errors"
	"testing"

	"lab-request-api/models"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		raw  string
		want RequestStatus
		ok   bool
	}{
		{"draft", StatusDraft, true},
		{"pending_approval", StatusPendingApproval, true},
		{"awaiting_shipment", StatusAwaitingShipment, true},
		{"in_transit", StatusInTransit, true},
		{"arrived_at_provider", StatusArrivedAtProvider, true},
		{"in_progress", StatusInProgress, true},
		{"validation_pending", StatusValidationPending, true},
		{"completed", StatusCompleted, true},
		{"submitted", StatusArrivedAtProvider, true},
		{"  Submitted ", StatusArrivedAtProvider, true},
		{"DRAFT", StatusDraft, true},
		{"rejected", "", false},
		{"", "", false},
		{"shipping", "", false},
	}

	for _, tt := range tests {
		got, ok := NormalizeStatus(tt.raw)
		if ok != tt.ok {
			t.Errorf("NormalizeStatus(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	if !StatusCompleted.IsTerminal() {
		t.Error("completed should be terminal")
	}
	for _, s := range []RequestStatus{
		StatusDraft, StatusPendingApproval, StatusAwaitingShipment,
		StatusInTransit, StatusArrivedAtProvider, StatusInProgress,
		StatusValidationPending,
	} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestTransitionTableEdges(t *testing.T) {
	direct := []struct{ from, to RequestStatus }{
		{StatusDraft, StatusPendingApproval},
		{StatusPendingApproval, StatusAwaitingShipment},
		{StatusAwaitingShipment, StatusInTransit},
		{StatusInTransit, StatusArrivedAtProvider},
		{StatusArrivedAtProvider, StatusInProgress},
	}
	for _, e := range direct {
		rule, ok := ruleFor(e.from, e.to)
		if !ok {
			t.Errorf("edge %s -> %s should be defined", e.from, e.to)
			continue
		}
		if rule.gateOnly {
			t.Errorf("edge %s -> %s should be directly reachable", e.from, e.to)
		}
		if rule.guard == nil {
			t.Errorf("edge %s -> %s has no guard", e.from, e.to)
		}
	}

	gateOnly := []struct{ from, to RequestStatus }{
		{StatusArrivedAtProvider, StatusValidationPending},
		{StatusInProgress, StatusValidationPending},
		{StatusValidationPending, StatusCompleted},
	}
	for _, e := range gateOnly {
		rule, ok := ruleFor(e.from, e.to)
		if !ok {
			t.Errorf("edge %s -> %s should be defined", e.from, e.to)
			continue
		}
		if !rule.gateOnly {
			t.Errorf("edge %s -> %s should be gate-only", e.from, e.to)
		}
	}

	undefined := []struct{ from, to RequestStatus }{
		{StatusDraft, StatusCompleted},
		{StatusCompleted, StatusDraft},
		{StatusPendingApproval, StatusInTransit},
		{StatusInTransit, StatusAwaitingShipment},
		{StatusValidationPending, StatusInProgress},
	}
	for _, e := range undefined {
		if _, ok := ruleFor(e.from, e.to); ok {
			t.Errorf("edge %s -> %s should not exist", e.from, e.to)
		}
	}
}

func TestApprovalEdgeRecordsApprover(t *testing.T) {
	rule, ok := ruleFor(StatusPendingApproval, StatusAwaitingShipment)
	if !ok {
		t.Fatal("approval edge missing")
	}
	if !rule.recordApproval {
		t.Error("approval edge should stamp approved_by/approved_at")
	}

	rule, _ = ruleFor(StatusDraft, StatusPendingApproval)
	if rule.recordApproval {
		t.Error("submit edge should not stamp approval")
	}
}

func TestSubmitGuardRequiresOwner(t *testing.T) {
	rule, _ := ruleFor(StatusDraft, StatusPendingApproval)
	req := &models.LabRequest{RequestID: 1, UserID: 7, CompanyID: 3}

	if err := rule.guard(Actor{UserID: 7, Role: models.RoleCompanyUser}, req); err != nil {
		t.Errorf("owner submit should pass, got %v", err)
	}

	err := rule.guard(Actor{UserID: 8, Role: models.RoleCompanyAdmin}, req)
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Errorf("non-owner submit should be denied, got %v", err)
	}
}

func TestApproveGuardCompanyScope(t *testing.T) {
	rule, _ := ruleFor(StatusPendingApproval, StatusAwaitingShipment)
	req := &models.LabRequest{RequestID: 1, UserID: 7, CompanyID: 3}
	companyID := uint(3)
	otherCompany := uint(4)

	cases := []struct {
		name  string
		actor Actor
		allow bool
	}{
		{"same-company admin", Actor{UserID: 2, Role: models.RoleCompanyAdmin, CompanyID: &companyID}, true},
		{"other-company admin", Actor{UserID: 2, Role: models.RoleCompanyAdmin, CompanyID: &otherCompany}, false},
		{"superuser", Actor{UserID: 1, Role: models.RoleSuperAdmin}, true},
		{"requester", Actor{UserID: 7, Role: models.RoleCompanyUser, CompanyID: &companyID}, false},
	}
	for _, tc := range cases {
		err := rule.guard(tc.actor, req)
		if tc.allow && err != nil {
			t.Errorf("%s: expected approval to pass, got %v", tc.name, err)
		}
		if !tc.allow {
			var denied *PermissionDeniedError
			if !errors.As(err, &denied) {
				t.Errorf("%s: expected permission denial, got %v", tc.name, err)
			}
		}
	}
}

func TestDispatchGuardLogisticsRoles(t *testing.T) {
	rule, _ := ruleFor(StatusAwaitingShipment, StatusInTransit)
	req := &models.LabRequest{RequestID: 1, CompanyID: 3}
	companyID := uint(3)
	otherCompany := uint(9)

	if err := rule.guard(Actor{Role: models.RoleUniversityLogistics}, req); err != nil {
		t.Errorf("university logistics should dispatch any company, got %v", err)
	}
	if err := rule.guard(Actor{Role: models.RoleCompanyLogistics, CompanyID: &companyID}, req); err != nil {
		t.Errorf("same-company logistics should dispatch, got %v", err)
	}
	if err := rule.guard(Actor{Role: models.RoleCompanyLogistics, CompanyID: &otherCompany}, req); err == nil {
		t.Error("cross-company logistics dispatch should be denied")
	}
	if err := rule.guard(Actor{Role: models.RoleCompanyAdmin, CompanyID: &companyID}, req); err == nil {
		t.Error("company admin should not dispatch")
	}
}

func TestStartGuardLabRoles(t *testing.T) {
	rule, _ := ruleFor(StatusArrivedAtProvider, StatusInProgress)
	req := &models.LabRequest{RequestID: 1, CompanyID: 3}

	if err := rule.guard(Actor{Role: models.RoleLaborStaff}, req); err != nil {
		t.Errorf("lab staff should start processing, got %v", err)
	}
	if err := rule.guard(Actor{Role: models.RoleSuperAdmin}, req); err != nil {
		t.Errorf("superuser should start processing, got %v", err)
	}
	if err := rule.guard(Actor{Role: models.RoleCompanyUser}, req); err == nil {
		t.Error("requester should not start processing")
	}
}
