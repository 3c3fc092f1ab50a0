package chain

import (
	"encoding/json"
	"fmt"

	"github.com/Sama14b/orchestrator/internal/domain"
)

// Reason identifies why an acquisition result failed validation.
type Reason string

const (
	ReasonOK                  Reason = ""
	ReasonFeaturesMissing     Reason = "features_missing"
	ReasonFeaturesNotSequence Reason = "features_not_sequence"
	ReasonFeatureArity        Reason = "feature_arity"
)

// ValidateAcquire checks an acquisition result against the feature-vector
// invariants and, when valid, returns the decoded vector. Pure: no network,
// no clock, no state.
func ValidateAcquire(res *domain.AcquireResult) ([]float64, Reason) {
	if len(res.Features) == 0 || string(res.Features) == "null" {
		return nil, ReasonFeaturesMissing
	}

	var features []float64
	if err := json.Unmarshal(res.Features, &features); err != nil {
		return nil, ReasonFeaturesNotSequence
	}
	if len(features) != domain.FeatureVectorLen {
		return nil, ReasonFeatureArity
	}
	return features, ReasonOK
}

func validationError(res *domain.AcquireResult, reason Reason) *domain.StageError {
	switch reason {
	case ReasonFeaturesMissing:
		return domain.NewValidation("acquisition result has no features sequence")
	case ReasonFeaturesNotSequence:
		return domain.NewValidation("acquisition features is not a numeric sequence")
	default:
		var got int
		var features []any
		if json.Unmarshal(res.Features, &features) == nil {
			got = len(features)
		}
		return domain.NewValidation(fmt.Sprintf("expected %d features, got %d", domain.FeatureVectorLen, got))
	}
}
