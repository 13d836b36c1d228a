package navigator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildReportMarkdown renders one pipeline run as a markdown report for
// the UI collaborator.
func BuildReportMarkdown(state *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Trial Navigator Report\n\n")
	fmt.Fprintf(&b, "- Condition: %s\n", safe(state.Disease))
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))

	if state.NeedsClarification && state.ClarificationQuestion != "" {
		fmt.Fprintf(&b, "> %s\n\n", state.ClarificationQuestion)
	}

	fmt.Fprintf(&b, "## Results\n\n")
	if state.TotalCount > len(state.Studies) {
		fmt.Fprintf(&b, "Total available: %d trials (showing first %d).\n\n", state.TotalCount, len(state.Studies))
	} else {
		fmt.Fprintf(&b, "Found %d recruiting trials.\n\n", len(state.Studies))
	}

	buildPhaseSection(&b, state.Visualization)
	buildDemographicsSection(&b, state.Visualization)
	buildEligibilitySection(&b, state)
	buildRecommendationsSection(&b, state)
	buildRiskSection(&b, state)
	buildQualitySection(&b, state)
	return b.String()
}

func buildPhaseSection(b *strings.Builder, v VisualizationBundle) {
	if len(v.PhaseCounts) == 0 {
		return
	}
	fmt.Fprintf(b, "## Phase Distribution\n\n")
	for _, label := range sortedKeys(v.PhaseCounts) {
		fmt.Fprintf(b, "- %s: %d\n", label, v.PhaseCounts[label])
	}
	b.WriteString("\n")
}

func buildDemographicsSection(b *strings.Builder, v VisualizationBundle) {
	if len(v.AgeGroupCounts) == 0 && len(v.GenderCounts) == 0 && len(v.StudyTypeCounts) == 0 && v.Enrollment == nil {
		return
	}
	fmt.Fprintf(b, "## Demographics\n\n")
	if len(v.AgeGroupCounts) > 0 {
		fmt.Fprintf(b, "### Age Groups\n\n")
		for _, k := range sortedKeys(v.AgeGroupCounts) {
			fmt.Fprintf(b, "- %s: %d\n", k, v.AgeGroupCounts[k])
		}
		b.WriteString("\n")
	}
	if len(v.GenderCounts) > 0 {
		fmt.Fprintf(b, "### Gender Requirements\n\n")
		for _, k := range sortedKeys(v.GenderCounts) {
			fmt.Fprintf(b, "- %s: %d\n", k, v.GenderCounts[k])
		}
		b.WriteString("\n")
	}
	if len(v.StudyTypeCounts) > 0 {
		fmt.Fprintf(b, "### Study Types\n\n")
		for _, k := range sortedKeys(v.StudyTypeCounts) {
			fmt.Fprintf(b, "- %s: %d\n", k, v.StudyTypeCounts[k])
		}
		b.WriteString("\n")
	}
	if v.Enrollment != nil {
		fmt.Fprintf(b, "### Enrollment\n\n")
		fmt.Fprintf(b, "- Total enrollment: %d\n", v.Enrollment.Total)
		fmt.Fprintf(b, "- Average enrollment: %d\n", v.Enrollment.Average)
		fmt.Fprintf(b, "- Largest study: %d\n", v.Enrollment.Largest)
		fmt.Fprintf(b, "- Smallest study: %d\n\n", v.Enrollment.Smallest)
	}
}

func buildEligibilitySection(b *strings.Builder, state *State) {
	if state.SimplifiedCriteria == "" {
		return
	}
	fmt.Fprintf(b, "## Simplified Eligibility\n\n%s\n\n", state.SimplifiedCriteria)
}

func buildRecommendationsSection(b *strings.Builder, state *State) {
	if len(state.Recommendations) == 0 {
		return
	}
	fmt.Fprintf(b, "## Top Matches\n\n")
	for i, rec := range state.Recommendations {
		fmt.Fprintf(b, "%d. **%s** (%s) — score %d\n", i+1, safe(rec.Study.BriefTitle), rec.Study.NCTID, rec.Score)
		for _, reason := range rec.MatchReasons {
			fmt.Fprintf(b, "   - %s\n", reason)
		}
	}
	b.WriteString("\n")
}

func buildRiskSection(b *strings.Builder, state *State) {
	if len(state.RiskAssessments) == 0 {
		return
	}
	fmt.Fprintf(b, "## Risk Assessments\n\n")
	for _, id := range sortedAssessmentIDs(state.RiskAssessments) {
		a := state.RiskAssessments[id]
		fmt.Fprintf(b, "### %s — %s\n\n", id, safe(a.Title))
		fmt.Fprintf(b, "Risk level: **%s**\n\n", a.RiskLevel)
		for _, f := range a.RiskFactors {
			fmt.Fprintf(b, "- Risk: %s\n", f)
		}
		for _, bn := range a.Benefits {
			fmt.Fprintf(b, "- Benefit: %s\n", bn)
		}
		b.WriteString("\n")
	}
}

func buildQualitySection(b *strings.Builder, state *State) {
	if state.Quality == nil {
		return
	}
	q := state.Quality
	fmt.Fprintf(b, "## Result Quality\n\n")
	fmt.Fprintf(b, "- Quality score: %d\n", q.Score)
	fmt.Fprintf(b, "- Refinement needed: %t\n", q.RefinementNeeded)
	if q.RefinementNeeded {
		fmt.Fprintf(b, "- Refinement kind: %s\n", q.RefinementKind)
	}
	b.WriteString("\n")
	if sr := state.SearchRefinement; sr != nil && len(sr.ExpandedTerms) > 1 {
		fmt.Fprintf(b, "Suggested broader search terms: %s\n\n", strings.Join(sr.ExpandedTerms, ", "))
	}
	if pr := state.ProfileRefinement; pr != nil && len(pr.Issues) > 0 {
		fmt.Fprintf(b, "Profile suggestions:\n\n")
		for _, issue := range pr.Issues {
			fmt.Fprintf(b, "- %s\n", issue)
		}
		b.WriteString("\n")
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedAssessmentIDs(m map[string]RiskAssessment) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func safe(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unknown)"
	}
	return s
}
