package services

import "testing"

func TestNormalizeCompanyShort(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme", "ACME"},
		{"ACME", "ACME"},
		{"Acme GmbH", "ACMEG"},
		{"a-c.m_e", "ACME"},
		{"verylongshortname", "VERYL"},
		{"x1", "X1"},
		{"", "LAB"},
		{"---", "LAB"},
		{"日本語", "LAB"},
		{"日本語AB", "AB"},
	}

	for _, tt := range tests {
		if got := normalizeCompanyShort(tt.in); got != tt.want {
			t.Errorf("normalizeCompanyShort(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
