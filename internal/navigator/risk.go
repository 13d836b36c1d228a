package navigator

import (
	"context"
	"fmt"
	"strings"

	"github.com/joelkehle/trial-navigator/internal/trials"
)

// AssessRisk derives a qualitative risk report for one study from its
// phase and design fields. Several conditions can fire for the same study;
// each appends its fixed risk/benefit sentence pair. The study itself is
// not touched.
func AssessRisk(st trials.Study) RiskAssessment {
	a := RiskAssessment{
		Title:       st.BriefTitle,
		RiskLevel:   RiskLow,
		RiskFactors: []string{},
		Benefits:    []string{},
		Phase:       "Unknown",
		StudyType:   st.Design.StudyType,
	}

	if st.HasPhase() {
		phase := st.FirstPhase()
		a.Phase = string(phase)
		switch phase {
		case trials.Phase1, trials.PhaseEarly1:
			a.RiskLevel = RiskHigh
			a.RiskFactors = append(a.RiskFactors, "Early phase trial - limited safety data available")
			a.Benefits = append(a.Benefits, "Access to cutting-edge experimental treatments")
		case trials.Phase2:
			a.RiskLevel = RiskMediumHigh
			a.RiskFactors = append(a.RiskFactors, "Phase 2 trial - safety established, effectiveness being tested")
			a.Benefits = append(a.Benefits, "Treatment has passed initial safety testing")
		case trials.Phase3:
			a.RiskLevel = RiskMedium
			a.RiskFactors = append(a.RiskFactors, "Phase 3 trial - comparing with standard treatments")
			a.Benefits = append(a.Benefits, "Treatment has shown promise in earlier phases")
		case trials.Phase4:
			a.RiskLevel = RiskLow
			a.RiskFactors = append(a.RiskFactors, "Phase 4 trial - post-approval safety monitoring")
			a.Benefits = append(a.Benefits, "Treatment is already FDA-approved")
		}
	}

	switch st.Design.StudyType {
	case trials.TypeInterventional:
		a.RiskFactors = append(a.RiskFactors, "Interventional study - involves active treatment")
		a.Benefits = append(a.Benefits, "May receive the actual treatment being studied")
	case trials.TypeObservational:
		a.RiskFactors = append(a.RiskFactors, "Observational study - no active treatment")
		a.Benefits = append(a.Benefits, "Lower risk - just monitoring and observation")
	}

	switch st.Design.InterventionModel {
	case trials.ModelSingleGroup:
		a.RiskFactors = append(a.RiskFactors, "Single group study - no comparison group")
		a.Benefits = append(a.Benefits, "All participants receive the treatment")
	case trials.ModelParallel:
		a.RiskFactors = append(a.RiskFactors, "Randomized study - may receive placebo or standard treatment")
		a.Benefits = append(a.Benefits, "May receive the experimental treatment")
	}

	a.Summary = buildRiskSummary(st, a)
	return a
}

func buildRiskSummary(st trials.Study, a RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Risk Level: %s**\n\n", a.RiskLevel)
	b.WriteString("**Risk Factors:**\n")
	for _, f := range a.RiskFactors {
		fmt.Fprintf(&b, "• %s\n", f)
	}
	b.WriteString("\n**Potential Benefits:**\n")
	for _, bn := range a.Benefits {
		fmt.Fprintf(&b, "• %s\n", bn)
	}
	phase := "Not specified"
	if st.HasPhase() {
		phase = string(st.FirstPhase())
	}
	b.WriteString("\n**Safety Considerations:**\n")
	fmt.Fprintf(&b, "• This is a %s study\n", strings.ToLower(string(st.Design.StudyType)))
	fmt.Fprintf(&b, "• Phase: %s\n", phase)
	fmt.Fprintf(&b, "• %d inclusion criteria\n", wordCount(st.Eligibility.InclusionCriteria))
	fmt.Fprintf(&b, "• %d exclusion criteria\n", wordCount(st.Eligibility.ExclusionCriteria))
	return b.String()
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// analyzeRisk covers the first studies of the result set up to the fixed
// cap. The cap limits how many assessments exist; it does not reorder or
// filter the studies themselves.
func (p *Pipeline) analyzeRisk(ctx context.Context, state *State) {
	state.RiskAssessments = map[string]RiskAssessment{}
	if len(state.Studies) == 0 {
		return
	}
	for i, st := range state.Studies {
		if i == MaxRiskAssessments {
			break
		}
		state.RiskAssessments[st.NCTID] = AssessRisk(st)
	}
	state.appendAssistant(fmt.Sprintf("Completed risk analysis for %d trials.", len(state.RiskAssessments)))
}
