package scheduler

import (
	"context"
	"testing"

	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

func TestAddDailyReplacesByName(t *testing.T) {
	s := New(Config{}, logx.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop(context.Background())

	job := func(context.Context) error { return nil }
	if err := s.AddDaily("digest", "08:00", job); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if err := s.AddDaily("digest", "09:30", job); err != nil {
		t.Fatalf("re-registration: %v", err)
	}
	if got := s.Entries(); got != 1 {
		t.Fatalf("expected 1 entry after re-registration, got %d", got)
	}

	if err := s.AddDaily("other", "10:00", job); err != nil {
		t.Fatalf("second job: %v", err)
	}
	if got := s.Entries(); got != 2 {
		t.Fatalf("expected 2 entries for distinct names, got %d", got)
	}
}

func TestParseHHMM(t *testing.T) {
	cases := []struct {
		in      string
		h, m    int
		wantErr bool
	}{
		{"08:00", 8, 0, false},
		{"23:59", 23, 59, false},
		{" 7:30 ", 7, 30, false},
		{"24:00", 0, 0, true},
		{"10:60", 0, 0, true},
		{"0800", 0, 0, true},
		{"", 0, 0, true},
		{"aa:bb", 0, 0, true},
	}
	for _, tc := range cases {
		h, m, err := parseHHMM(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseHHMM(%q): expected error, got %d:%d", tc.in, h, m)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseHHMM(%q): unexpected error %v", tc.in, err)
			continue
		}
		if h != tc.h || m != tc.m {
			t.Errorf("parseHHMM(%q) = %d:%d, want %d:%d", tc.in, h, m, tc.h, tc.m)
		}
	}
}
