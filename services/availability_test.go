package services

import (
	"testing"
)

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Window
		want bool
	}{
		{"back to back slots coexist", Window{540, 600}, Window{600, 660}, false},
		{"reverse order back to back", Window{600, 660}, Window{540, 600}, false},
		{"half hour overlap conflicts", Window{540, 630}, Window{600, 660}, true},
		{"identical windows conflict", Window{540, 600}, Window{540, 600}, true},
		{"containment conflicts", Window{540, 720}, Window{600, 660}, true},
		{"disjoint windows", Window{540, 600}, Window{720, 780}, false},
		{"one minute of overlap conflicts", Window{540, 601}, Window{600, 660}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(%+v, %+v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
			// Overlap is symmetric.
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(%+v, %+v) = %v, want %v", tt.b, tt.a, got, tt.want)
			}
		})
	}
}

func TestHasConflict(t *testing.T) {
	occupied := []Window{
		{Start: 540, End: 660}, // 09:00-11:00
		{Start: 840, End: 960}, // 14:00-16:00
	}

	tests := []struct {
		name      string
		candidate Window
		want      bool
	}{
		{"fits between sessions", Window{660, 840}, false},
		{"starts as the first ends", Window{660, 720}, false},
		{"ends as the second starts", Window{780, 840}, false},
		{"overlaps the facility window", Window{900, 1020}, true}, // 15:00-17:00 vs 14:00-16:00
		{"swallows an occupied window", Window{480, 720}, true},
		{"empty day", Window{540, 600}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			occ := occupied
			if tt.name == "empty day" {
				occ = nil
			}
			if got := HasConflict(tt.candidate, occ); got != tt.want {
				t.Errorf("HasConflict(%+v) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func TestEnumerateSlots(t *testing.T) {
	// Studio open 09:00-17:00, hourly grid, one booking 10:00-12:00.
	occupied := []Window{{Start: 600, End: 720}}
	slots := EnumerateSlots(540, 1020, 120, 60, occupied)

	// Last slot must still end by close: 15:00-17:00.
	if len(slots) != 7 {
		t.Fatalf("got %d slots, want 7", len(slots))
	}
	if slots[0].StartTime != "09:00" || slots[0].EndTime != "11:00" {
		t.Errorf("first slot = %s-%s, want 09:00-11:00", slots[0].StartTime, slots[0].EndTime)
	}
	if slots[len(slots)-1].StartTime != "15:00" {
		t.Errorf("last slot starts at %s, want 15:00", slots[len(slots)-1].StartTime)
	}

	wantAvailable := map[string]bool{
		"09:00": false, // 09:00-11:00 overlaps 10:00-12:00
		"10:00": false,
		"11:00": false, // 11:00-13:00 overlaps
		"12:00": true,  // starts exactly as the booking ends
		"13:00": true,
		"14:00": true,
		"15:00": true,
	}
	for _, s := range slots {
		if s.Available != wantAvailable[s.StartTime] {
			t.Errorf("slot %s available = %v, want %v", s.StartTime, s.Available, wantAvailable[s.StartTime])
		}
	}
}

func TestEnumerateSlotsDurationLongerThanDay(t *testing.T) {
	slots := EnumerateSlots(540, 660, 180, 60, nil)
	if len(slots) != 0 {
		t.Errorf("got %d slots for a duration longer than the open hours, want 0", len(slots))
	}
}

func TestEnumerateSlotsDefaultStep(t *testing.T) {
	// A zero step falls back to the hourly grid instead of looping forever.
	slots := EnumerateSlots(540, 720, 60, 0, nil)
	if len(slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(slots))
	}
}
