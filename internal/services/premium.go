package services

import (
	"fmt"
	"math"

	"github.com/harborwell/insurance-backend/internal/types"
)

// Flat lookup-table premium: coverage amount times the per-type base rate
// times a fixed loading factor. Computed once at quote creation and never
// recomputed.
var baseRates = map[string]float64{
	types.PolicyTypeAuto:     0.02,
	types.PolicyTypeHome:     0.015,
	types.PolicyTypeLife:     0.01,
	types.PolicyTypeHealth:   0.025,
	types.PolicyTypeBusiness: 0.03,
}

const loadingFactor = 1.2

// CalculatePremium returns the annual premium rounded to cents.
func CalculatePremium(policyType string, coverageAmount float64) (float64, error) {
	rate, ok := baseRates[policyType]
	if !ok {
		return 0, fmt.Errorf("unknown policy type %q", policyType)
	}
	if coverageAmount <= 0 {
		return 0, fmt.Errorf("coverage amount must be positive")
	}
	premium := coverageAmount * rate * loadingFactor
	return math.Round(premium*100) / 100, nil
}
