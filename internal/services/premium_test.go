package services

import (
	"testing"

	"github.com/harborwell/insurance-backend/internal/types"
)

func TestCalculatePremium(t *testing.T) {
	tests := []struct {
		name       string
		policyType string
		coverage   float64
		want       float64
	}{
		{"home", types.PolicyTypeHome, 300000, 5400.00},
		{"auto", types.PolicyTypeAuto, 10000, 240.00},
		{"life", types.PolicyTypeLife, 100000, 1200.00},
		{"health", types.PolicyTypeHealth, 50000, 1500.00},
		{"business", types.PolicyTypeBusiness, 200000, 7200.00},
		{"rounds to cents", types.PolicyTypeAuto, 1234.56, 29.63},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculatePremium(tt.policyType, tt.coverage)
			if err != nil {
				t.Fatalf("CalculatePremium(%q, %v): %v", tt.policyType, tt.coverage, err)
			}
			if got != tt.want {
				t.Errorf("CalculatePremium(%q, %v) = %v, want %v", tt.policyType, tt.coverage, got, tt.want)
			}
		})
	}
}

func TestCalculatePremiumRejectsBadInput(t *testing.T) {
	if _, err := CalculatePremium("BOAT", 10000); err == nil {
		t.Error("expected error for unknown policy type")
	}
	if _, err := CalculatePremium(types.PolicyTypeAuto, 0); err == nil {
		t.Error("expected error for zero coverage")
	}
	if _, err := CalculatePremium(types.PolicyTypeAuto, -500); err == nil {
		t.Error("expected error for negative coverage")
	}
}
