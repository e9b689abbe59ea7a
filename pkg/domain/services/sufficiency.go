package services

import "github.com/mfgops/bomcost/pkg/domain/entities"

// Evaluate classifies a requirement against its available quantity.
// The judgment is advisory: stock is a snapshot and is never reserved.
func Evaluate(req entities.AggregatedRequirement) entities.SufficiencyResult {
	result := entities.SufficiencyResult{Requirement: req}
	diff := req.QuantityAvailable.Sub(req.QuantityNeeded)
	if diff.IsNegative() {
		result.Status = entities.Insufficient
		result.Shortfall = diff.Neg()
		return result
	}
	result.Status = entities.Sufficient
	result.Surplus = diff
	return result
}

// EvaluateAll evaluates every requirement, ordered by raw material id
func EvaluateAll(reqs entities.Requirements) []entities.SufficiencyResult {
	sorted := reqs.Sorted()
	results := make([]entities.SufficiencyResult, 0, len(sorted))
	for _, req := range sorted {
		results = append(results, Evaluate(req))
	}
	return results
}

// Shortages returns only the insufficient results
func Shortages(results []entities.SufficiencyResult) []entities.SufficiencyResult {
	var out []entities.SufficiencyResult
	for _, r := range results {
		if !r.IsSufficient() {
			out = append(out, r)
		}
	}
	return out
}
