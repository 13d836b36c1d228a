package navigator

import (
	"context"
	"strings"
	"testing"

	"github.com/joelkehle/trial-navigator/internal/trials"
)

func TestAssessRiskLevels(t *testing.T) {
	cases := []struct {
		phases []trials.Phase
		want   RiskLevel
	}{
		{[]trials.Phase{trials.PhaseEarly1}, RiskHigh},
		{[]trials.Phase{trials.Phase1}, RiskHigh},
		{[]trials.Phase{trials.Phase2}, RiskMediumHigh},
		{[]trials.Phase{trials.Phase3}, RiskMedium},
		{[]trials.Phase{trials.Phase4}, RiskLow},
		{[]trials.Phase{trials.PhaseNA}, RiskLow},
		{nil, RiskLow},
	}
	for _, tc := range cases {
		st := makeStudy("NCT1", func(s *trials.Study) { s.Design.Phases = tc.phases })
		if got := AssessRisk(st).RiskLevel; got != tc.want {
			t.Errorf("phases %v: got %s, want %s", tc.phases, got, tc.want)
		}
	}
}

func TestAssessRiskAccumulatesFactorPairs(t *testing.T) {
	st := makeStudy("NCT1", func(s *trials.Study) {
		s.Design.Phases = []trials.Phase{trials.Phase1}
		s.Design.InterventionModel = trials.ModelParallel
	})
	a := AssessRisk(st)
	// Phase, study type, and intervention model all fire: three pairs.
	if len(a.RiskFactors) != 3 || len(a.Benefits) != 3 {
		t.Fatalf("factors %v benefits %v", a.RiskFactors, a.Benefits)
	}
	if a.Phase != "PHASE1" {
		t.Fatalf("phase %q", a.Phase)
	}
	if !strings.Contains(a.Summary, "Risk Level: High") {
		t.Fatalf("summary missing level: %s", a.Summary)
	}
	if !strings.Contains(a.Summary, "interventional study") {
		t.Fatalf("summary missing study type: %s", a.Summary)
	}
}

func TestAssessRiskUnknownPhase(t *testing.T) {
	st := makeStudy("NCT1", func(s *trials.Study) { s.Design.Phases = nil })
	a := AssessRisk(st)
	if a.Phase != "Unknown" {
		t.Fatalf("phase %q", a.Phase)
	}
	if !strings.Contains(a.Summary, "Phase: Not specified") {
		t.Fatalf("summary: %s", a.Summary)
	}
}

func TestAnalyzeRiskCapsAtFirstFive(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, nil)
	state := &State{}
	for i := 0; i < 8; i++ {
		state.Studies = append(state.Studies, makeStudy(nctID(i), nil))
	}
	p.analyzeRisk(context.Background(), state)

	if len(state.RiskAssessments) != MaxRiskAssessments {
		t.Fatalf("got %d assessments", len(state.RiskAssessments))
	}
	for i := 0; i < MaxRiskAssessments; i++ {
		if _, ok := state.RiskAssessments[nctID(i)]; !ok {
			t.Fatalf("missing assessment for study %d", i)
		}
	}
	for _, a := range state.RiskAssessments {
		switch a.RiskLevel {
		case RiskLow, RiskMedium, RiskMediumHigh, RiskHigh:
		default:
			t.Fatalf("unexpected risk level %q", a.RiskLevel)
		}
	}
}

func TestAnalyzeRiskEmptyResultSet(t *testing.T) {
	p := NewPipeline(&fakeSearcher{}, nil)
	state := &State{}
	p.analyzeRisk(context.Background(), state)
	if len(state.RiskAssessments) != 0 {
		t.Fatal("expected no assessments")
	}
	if len(state.Messages) != 0 {
		t.Fatal("expected no transcript message for empty set")
	}
}
