package navigator

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/joelkehle/trial-navigator/internal/trials"
)

// Score weights. Rules are independent and additive; there is no
// normalization, so totals sit on an informal 0–100+ scale.
const (
	scoreAgeInRange    = 20
	scoreAgeGroupMatch = 10
	scoreSexMatch      = 15
	scoreLocationMatch = 25
	scorePhaseMatch    = 15
	scoreTypeMatch     = 10
)

// ScoreStudy computes the additive profile-match score for one study.
func ScoreStudy(st trials.Study, profile UserProfile) int {
	score := 0

	min, max := trials.AgeBounds(st.Eligibility)
	if min <= profile.Age && profile.Age <= max {
		score += scoreAgeInRange
		for _, group := range st.Eligibility.StdAges {
			if ageGroupMatches(group, profile.Age) {
				score += scoreAgeGroupMatch
			}
		}
	}

	if sexMatches(st.Eligibility.Sex, profile.Gender) {
		score += scoreSexMatch
	}

	if profile.Location != "" && locationMatches(st.Locations, profile.Location) {
		score += scoreLocationMatch
	}

	if st.HasPhase() && phasePreferred(st.FirstPhase(), profile.RiskTolerance) {
		score += scorePhaseMatch
	}

	switch st.Design.StudyType {
	case trials.TypeInterventional:
		if profile.RiskTolerance != ToleranceLow {
			score += scoreTypeMatch
		}
	case trials.TypeObservational:
		if profile.RiskTolerance == ToleranceLow {
			score += scoreTypeMatch
		}
	}
	return score
}

func ageGroupMatches(group trials.AgeGroup, age int) bool {
	switch group {
	case trials.AgeGroupAdult:
		return age >= 18 && age <= 65
	case trials.AgeGroupOlderAdult:
		return age > 65
	case trials.AgeGroupChild:
		return age < 18
	}
	return false
}

func sexMatches(sex trials.Sex, gender Gender) bool {
	return sex == trials.SexAll || string(sex) == strings.ToUpper(string(gender))
}

// locationMatches is a case-insensitive substring check against each
// location's city and country; the first hit wins.
func locationMatches(locations []trials.Location, want string) bool {
	want = strings.ToLower(want)
	for _, loc := range locations {
		if strings.Contains(strings.ToLower(loc.City), want) ||
			strings.Contains(strings.ToLower(loc.Country), want) {
			return true
		}
	}
	return false
}

// phasePreferred maps risk tolerance to the preferred first-phase set:
// low favors established late phases, high favors experimental early
// ones, moderate sits in the middle.
func phasePreferred(phase trials.Phase, tolerance RiskTolerance) bool {
	switch tolerance {
	case ToleranceLow:
		return phase == trials.Phase3 || phase == trials.Phase4
	case ToleranceHigh:
		return phase == trials.Phase1 || phase == trials.PhaseEarly1
	case ToleranceModerate:
		return phase == trials.Phase2
	}
	return false
}

// MatchReasons re-derives, for display, which rules fired for a study. It
// reuses the same bounds and categories the scorer saw.
func MatchReasons(st trials.Study, profile UserProfile) []string {
	reasons := []string{}

	min, max := trials.AgeBounds(st.Eligibility)
	if min <= profile.Age && profile.Age <= max {
		reasons = append(reasons, fmt.Sprintf("Age %d fits eligibility range (%d-%d)", profile.Age, min, max))
	}
	if sexMatches(st.Eligibility.Sex, profile.Gender) {
		reasons = append(reasons, fmt.Sprintf("Gender requirement: %s", st.Eligibility.Sex))
	}
	if st.HasPhase() {
		reasons = append(reasons, fmt.Sprintf("Phase: %s", st.FirstPhase()))
	}
	return reasons
}

// match scores every study against the profile and keeps the top ranked
// ones. Ties preserve registry order; the list is always sorted descending
// and capped.
func (p *Pipeline) match(ctx context.Context, state *State) {
	if len(state.Studies) == 0 || state.Profile == nil {
		state.Recommendations = nil
		return
	}
	profile := *state.Profile

	recs := make([]Recommendation, 0, len(state.Studies))
	for _, st := range state.Studies {
		recs = append(recs, Recommendation{Study: st, Score: ScoreStudy(st, profile)})
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Score > recs[j].Score })
	if len(recs) > MaxRecommendations {
		recs = recs[:MaxRecommendations]
	}
	for i := range recs {
		recs[i].MatchReasons = MatchReasons(recs[i].Study, profile)
	}

	state.Recommendations = recs
	state.appendAssistant(fmt.Sprintf("Generated personalized recommendations for %d trials based on your profile.", len(recs)))
}
