package services

import (
	"testing"

	"studiopro-backend/models"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestHasSettledRef(t *testing.T) {
	payments := []models.Payment{
		{ExternalRef: strPtr("evt_123"), Status: string(models.PayPaid)},
		{ExternalRef: strPtr("evt_456"), Status: "pending"},
		{ExternalRef: nil, Status: string(models.PayPaid)}, // cash
	}

	tests := []struct {
		name string
		ref  string
		want bool
	}{
		{"empty ref never matches", "", false},
		{"redelivered settled ref is recognized", "evt_123", true},
		{"pending ref does not count as settled", "evt_456", false},
		{"unknown ref", "evt_789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := hasSettledRef(payments, tt.ref); got != tt.want {
				t.Errorf("hasSettledRef(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestBuildAddonLine(t *testing.T) {
	facilityID := uuid.New()

	plain := models.Addon{ID: uuid.New(), Name: "Extra edited photos", Price: 50000}
	facilityBound := models.Addon{
		ID: uuid.New(), Name: "Makeup room", Price: 100000,
		IsHourly: true, FacilityID: &facilityID,
	}

	t.Run("plain addon defaults quantity to one", func(t *testing.T) {
		row, _, err := buildAddonLine(plain, nil, AddonInput{AddonID: plain.ID})
		if err != nil {
			t.Fatalf("buildAddonLine() error = %v", err)
		}
		if row.Quantity != 1 || row.TotalPrice != 50000 {
			t.Errorf("got quantity %d total %v, want 1 / 50000", row.Quantity, row.TotalPrice)
		}
	})

	t.Run("facility-bound addon requires a window", func(t *testing.T) {
		_, _, err := buildAddonLine(facilityBound, nil, AddonInput{AddonID: facilityBound.ID})
		if err == nil {
			t.Fatal("expected an error for a missing window")
		}
	})

	t.Run("facility-bound addon bills per started hour", func(t *testing.T) {
		row, sel, err := buildAddonLine(facilityBound, nil, AddonInput{
			AddonID: facilityBound.ID, StartTime: "10:00", EndTime: "12:30",
		})
		if err != nil {
			t.Fatalf("buildAddonLine() error = %v", err)
		}
		if row.Quantity != 3 || sel.Quantity != 3 {
			t.Errorf("quantity = %d/%d, want 3", row.Quantity, sel.Quantity)
		}
		if row.TotalPrice != 300000 {
			t.Errorf("TotalPrice = %v, want 300000", row.TotalPrice)
		}
		if row.FacilityID == nil || *row.FacilityID != facilityID {
			t.Error("facility binding must be carried onto the line")
		}
		if row.StartTime != "10:00" || row.EndTime != "12:30" {
			t.Errorf("window = %s-%s, want 10:00-12:30", row.StartTime, row.EndTime)
		}
	})

	t.Run("facility binding without hourly flag still needs a window", func(t *testing.T) {
		nonHourly := models.Addon{
			ID: uuid.New(), Name: "Props corner", Price: 75000, FacilityID: &facilityID,
		}
		_, _, err := buildAddonLine(nonHourly, nil, AddonInput{AddonID: nonHourly.ID, Quantity: 1})
		if err == nil {
			t.Fatal("a facility-bound addon must never skip the conflict window")
		}
		row, _, err := buildAddonLine(nonHourly, nil, AddonInput{
			AddonID: nonHourly.ID, StartTime: "09:00", EndTime: "10:00",
		})
		if err != nil {
			t.Fatalf("buildAddonLine() error = %v", err)
		}
		if row.FacilityID == nil {
			t.Error("facility binding must be carried onto the line")
		}
	})

	t.Run("rejects an inverted window", func(t *testing.T) {
		_, _, err := buildAddonLine(facilityBound, nil, AddonInput{
			AddonID: facilityBound.ID, StartTime: "12:00", EndTime: "10:00",
		})
		if err == nil {
			t.Fatal("expected an error for end before start")
		}
	})

	t.Run("included bundle addon costs nothing", func(t *testing.T) {
		pa := &models.PackageAddon{AddonID: plain.ID, Included: true}
		row, sel, err := buildAddonLine(plain, pa, AddonInput{AddonID: plain.ID, Quantity: 2})
		if err != nil {
			t.Fatalf("buildAddonLine() error = %v", err)
		}
		if !row.Included || row.TotalPrice != 0 {
			t.Errorf("included line = %+v, want included with zero total", row)
		}
		if !sel.Included {
			t.Error("selection must carry the included flag")
		}
	})

	t.Run("bundle discounted price replaces the unit price", func(t *testing.T) {
		pa := &models.PackageAddon{AddonID: plain.ID, DiscountedPrice: floatPtr(30000)}
		row, _, err := buildAddonLine(plain, pa, AddonInput{AddonID: plain.ID, Quantity: 2})
		if err != nil {
			t.Fatalf("buildAddonLine() error = %v", err)
		}
		if row.UnitPrice != 30000 || row.TotalPrice != 60000 {
			t.Errorf("unit %v total %v, want 30000 / 60000", row.UnitPrice, row.TotalPrice)
		}
	})
}

func TestRescheduleWindow(t *testing.T) {
	tests := []struct {
		name     string
		startMin int
		current  int
		override *int
		want     Window
		wantDur  int
	}{
		{
			name:     "no override keeps the current duration",
			startMin: 600, current: 120,
			want: Window{Start: 600, End: 720}, wantDur: 120,
		},
		{
			name:     "override changes the session length",
			startMin: 600, current: 120, override: intPtr(180),
			want: Window{Start: 600, End: 780}, wantDur: 180,
		},
		{
			name:     "override can shorten the session",
			startMin: 540, current: 120, override: intPtr(60),
			want: Window{Start: 540, End: 600}, wantDur: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dur := rescheduleWindow(tt.startMin, tt.current, tt.override)
			if got != tt.want || dur != tt.wantDur {
				t.Errorf("rescheduleWindow() = %+v, %d; want %+v, %d", got, dur, tt.want, tt.wantDur)
			}
		})
	}
}
