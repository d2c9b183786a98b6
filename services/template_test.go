package services

import "testing"

func TestRenderTemplate(t *testing.T) {
	data := map[string]string{
		"request_number": "ACME-20250115-001",
		"new_status":     "in_transit",
		"company_name":   "Acme GmbH",
	}

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			"all variables present",
			"Request {{request_number}} moved to {{new_status}}",
			"Request ACME-20250115-001 moved to in_transit",
		},
		{
			"missing variable stays literal",
			"Hello {{recipient_name}}, request {{request_number}} updated",
			"Hello {{recipient_name}}, request ACME-20250115-001 updated",
		},
		{
			"no variables",
			"Plain text without tokens",
			"Plain text without tokens",
		},
		{
			"repeated variable",
			"{{company_name}} / {{company_name}}",
			"Acme GmbH / Acme GmbH",
		},
		{
			"malformed token untouched",
			"{{request_number} and {request_number}}",
			"{{request_number} and {request_number}}",
		},
		{
			"empty value replaces token",
			"[{{empty}}]",
			"[{{empty}}]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.text, data); got != tt.want {
				t.Errorf("RenderTemplate(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRenderTemplateEmptyValue(t *testing.T) {
	// An empty string is a present value and replaces the token.
	got := RenderTemplate("[{{x}}]", map[string]string{"x": ""})
	if got != "[]" {
		t.Errorf("got %q, want %q", got, "[]")
	}
}
