package version

import (
	"strings"
	"testing"
)

func TestBuildID(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{
			name:     "epoch date",
			date:     "2026-01-01",
			expected: 0,
		},
		{
			name:     "next day after epoch",
			date:     "2026-01-02",
			expected: 1,
		},
		{
			name:     "one year later",
			date:     "2027-01-01",
			expected: 365,
		},
		{
			name:     "date with leap year included",
			date:     "2030-01-01",
			expected: 1461,
		},
		{
			name:      "invalid format",
			date:      "invalid",
			wantError: true,
		},
		{
			name:      "empty date",
			date:      "",
			wantError: true,
		},
		{
			name:      "before epoch",
			date:      "2025-12-31",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildID(tt.date)

			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (id=%d)", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if got != tt.expected {
				t.Errorf("buildID(%q) = %d, want %d", tt.date, got, tt.expected)
			}
		})
	}
}

func TestInfo_UnknownBuild(t *testing.T) {
	old := BuildDate
	BuildDate = ""
	defer func() { BuildDate = old }()

	info := Info()
	if info.Calculated || info.Error == "" {
		t.Errorf("Info() = %+v, want uncalculated with error", info)
	}
	if info.Protocol != Protocol {
		t.Errorf("Protocol = %d, want %d", info.Protocol, Protocol)
	}
	if Short() != "dev" {
		t.Errorf("Short() = %q, want dev", Short())
	}
	if !strings.Contains(String(), "protocol[1]") {
		t.Errorf("String() = %q", String())
	}
}
