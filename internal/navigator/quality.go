package navigator

import (
	"context"
	"log"
	"strings"
)

// Heuristic thresholds and their penalties.
const (
	minStudiesWanted      = 5
	minHighScoreTrials    = 3
	highRiskShareLimit    = 0.7
	locationCoverageFloor = 0.3
	penaltyFewStudies     = 20
	penaltyWeakMatches    = 15
	penaltyRiskMismatch   = 10
	penaltyPoorCoverage   = 10
	localCoverageMinimum  = 5
	profileAgeLowerBound  = 18
	profileAgeUpperBound  = 80
)

// evaluateQuality scores the aggregate result set against fixed
// thresholds. Each breached threshold subtracts its penalty and rewrites
// the refinement kind, so when several fire the last one in evaluation
// order wins.
func (p *Pipeline) evaluateQuality(ctx context.Context, state *State) {
	q := QualityMetrics{RefinementKind: RefinementNone, TotalTrials: len(state.Studies)}

	if len(state.Studies) < minStudiesWanted {
		q.Score -= penaltyFewStudies
		q.RefinementNeeded = true
		q.RefinementKind = RefineSearch
	}

	if len(state.Recommendations) > 0 {
		for _, r := range state.Recommendations {
			if r.Score > HighScoreThreshold {
				q.HighScoreTrials++
			}
		}
		if q.HighScoreTrials < minHighScoreTrials {
			q.Score -= penaltyWeakMatches
			q.RefinementNeeded = true
			q.RefinementKind = RefineProfile
		}
	}

	if len(state.RiskAssessments) > 0 && state.tolerance() == ToleranceLow {
		highRisk := 0
		for _, a := range state.RiskAssessments {
			if a.RiskLevel == RiskHigh {
				highRisk++
			}
		}
		if float64(highRisk) > float64(len(state.RiskAssessments))*highRiskShareLimit {
			q.Score -= penaltyRiskMismatch
			q.RefinementNeeded = true
			q.RefinementKind = RefineSearch
		}
	}

	if state.Profile != nil && state.Profile.Location != "" {
		want := strings.ToLower(state.Profile.Location)
		matches := 0
		for _, st := range state.Studies {
			for _, loc := range st.Locations {
				if strings.Contains(strings.ToLower(loc.City), want) {
					matches++
					break
				}
			}
		}
		q.LocationCoverage = matches
		q.LocationCoverageKnown = true
		if float64(matches) < float64(len(state.Studies))*locationCoverageFloor {
			q.Score -= penaltyPoorCoverage
			q.RefinementNeeded = true
			q.RefinementKind = RefineSearch
		}
	}

	log.Printf("navigator quality_done score=%d refinement_needed=%t kind=%s trials=%d high_score=%d",
		q.Score, q.RefinementNeeded, q.RefinementKind, q.TotalTrials, q.HighScoreTrials)
	state.Quality = &q
}

type RouteDecision string

const (
	RouteProceed       RouteDecision = "proceed"
	RouteRefineSearch  RouteDecision = "refine_search"
	RouteRefineProfile RouteDecision = "refine_profile"
)

// route turns the quality verdict into a next-step decision. The default
// pipeline wiring is linear and consults this only when a refinement
// budget is configured.
func route(q *QualityMetrics) RouteDecision {
	if q == nil || !q.RefinementNeeded {
		return RouteProceed
	}
	switch q.RefinementKind {
	case RefineProfile:
		return RouteRefineProfile
	default:
		return RouteRefineSearch
	}
}

// diseaseExpansions maps broad disease keywords to a wider search term
// set. Ordered so that key matching is deterministic.
var diseaseExpansions = []struct {
	key   string
	terms []string
}{
	{"cancer", []string{"cancer", "tumor", "malignancy", "neoplasm"}},
	{"diabetes", []string{"diabetes", "diabetic", "glucose", "insulin"}},
	{"heart", []string{"heart", "cardiac", "cardiovascular", "coronary"}},
	{"lung", []string{"lung", "pulmonary", "respiratory", "bronchial"}},
	{"breast", []string{"breast", "mammary", "ductal", "lobular"}},
	{"prostate", []string{"prostate", "prostatic", "glandular"}},
	{"brain", []string{"brain", "cerebral", "neurological", "cognitive"}},
}

// ExpandSearchTerms proposes a broader term set for a disease query. The
// match is a case-insensitive substring check against the fixed keys; an
// unmatched query comes back as its own single-term set.
func ExpandSearchTerms(disease string) []string {
	lower := strings.ToLower(disease)
	for _, exp := range diseaseExpansions {
		if strings.Contains(lower, exp.key) {
			out := make([]string, len(exp.terms))
			copy(out, exp.terms)
			return out
		}
	}
	return []string{disease}
}

// refineSearch records the proposed expanded term set. It is advisory: it
// asks for a re-search but does not perform one.
func (p *Pipeline) refineSearch(ctx context.Context, state *State) {
	reason := RefinementNone
	if state.Quality != nil {
		reason = state.Quality.RefinementKind
	}
	state.SearchRefinement = &SearchRefinement{
		OriginalDisease: state.Disease,
		ExpandedTerms:   ExpandSearchTerms(state.Disease),
		Note:            "Expanded disease terms for broader coverage",
		PreviousResults: len(state.Studies),
		Reason:          reason,
		NeedsResearch:   true,
	}
}

// refineProfile inspects the profile against the quality metrics and
// produces suggestions without mutating the profile. Skipped when no
// profile was supplied.
func (p *Pipeline) refineProfile(ctx context.Context, state *State) {
	if state.Profile == nil {
		state.ProfileRefinement = nil
		return
	}
	profile := *state.Profile
	reason := RefinementNone
	var q QualityMetrics
	if state.Quality != nil {
		q = *state.Quality
		reason = q.RefinementKind
	}

	r := &ProfileRefinement{Issues: []string{}, Suggestions: map[string]string{}, Reason: reason}

	if profile.Age < profileAgeLowerBound || profile.Age > profileAgeUpperBound {
		r.Issues = append(r.Issues, "Age may limit trial eligibility")
		r.Suggestions["age_flexibility"] = "Consider trials with broader age ranges"
	}
	if profile.TravelPreference == TravelLocal && q.LocationCoverageKnown && q.LocationCoverage < localCoverageMinimum {
		r.Issues = append(r.Issues, "Local trials may be limited")
		r.Suggestions["travel_flexibility"] = "Consider expanding travel radius"
	}
	if profile.RiskTolerance == ToleranceLow && q.HighScoreTrials < minHighScoreTrials {
		r.Issues = append(r.Issues, "Low risk tolerance may limit options")
		r.Suggestions["risk_flexibility"] = "Consider moderate risk trials"
	}

	state.ProfileRefinement = r
}
