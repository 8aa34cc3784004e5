package utils

import (
	"math"
	"testing"
)

func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid cairo", 30.0444, 31.2357, false},
		{"valid equator", 0, 0, false},
		{"lat too high", 91, 0, true},
		{"lat too low", -90.5, 0, true},
		{"lng too high", 0, 181, true},
		{"lng too low", 0, -180.1, true},
		{"bounds inclusive", 90, 180, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate(tt.lat, tt.lng)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate(%v, %v) error = %v, wantErr %v", tt.lat, tt.lng, err, tt.wantErr)
			}
		})
	}
}

func TestDistanceKm(t *testing.T) {
	// Cairo downtown to Giza pyramids, roughly 13 km.
	d := DistanceKm(30.0444, 31.2357, 29.9792, 31.1342)
	if d < 11 || d > 15 {
		t.Errorf("DistanceKm = %v, expected ~13", d)
	}
	if z := DistanceKm(30, 31, 30, 31); math.Abs(z) > 1e-9 {
		t.Errorf("zero distance = %v", z)
	}
}
