package domain

import "testing"

func TestBuildNarrative(t *testing.T) {
	p := Profile{
		CRD:              "123456",
		FirmName:         "Gateway Capital Advisors",
		City:             "St. Louis",
		State:            "MO",
		AUM:              5e9,
		PrivateFundCount: 12,
		Services:         []string{"private placements", "venture capital"},
	}

	got := BuildNarrative(p)
	want := "Gateway Capital Advisors is a registered investment adviser " +
		"located in St. Louis, MO managing $5.0 billion in assets " +
		"advising 12 private funds offering private placements, venture capital."
	if got != want {
		t.Fatalf("BuildNarrative:\n got  %q\n want %q", got, want)
	}
}

func TestBuildNarrative_Minimal(t *testing.T) {
	got := BuildNarrative(Profile{FirmName: "Acme Advisers"})
	if got != "Acme Advisers is a registered investment adviser." {
		t.Fatalf("got %q", got)
	}
}

func TestBuildNarrative_StateOnly(t *testing.T) {
	got := BuildNarrative(Profile{FirmName: "Acme", State: "TX"})
	if got != "Acme is a registered investment adviser located in TX." {
		t.Fatalf("got %q", got)
	}
}

func TestFormatAUM(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9e9, "$9.0 billion"},
		{2.5e9, "$2.5 billion"},
		{750e6, "$750.0 million"},
		{5000, "$5000"},
	}
	for _, tt := range tests {
		if got := FormatAUM(tt.in); got != tt.want {
			t.Errorf("FormatAUM(%g) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKeys(t *testing.T) {
	if got := ProfileKey("42"); got != "riahunter:profile:42" {
		t.Fatalf("ProfileKey = %q", got)
	}
	if got := PeopleKey("42"); got != "riahunter:people:42" {
		t.Fatalf("PeopleKey = %q", got)
	}
}
