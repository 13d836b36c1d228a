package navigator

import (
	"reflect"
	"strings"
	"testing"

	"github.com/joelkehle/trial-navigator/internal/trials"
)

func makeStudy(id string, mutate func(*trials.Study)) trials.Study {
	st := trials.Study{
		NCTID:      id,
		BriefTitle: "Study " + id,
		Status:     trials.StatusRecruiting,
		Eligibility: trials.Eligibility{
			MinimumAge: "18 Years",
			MaximumAge: "75 Years",
			Sex:        trials.SexAll,
			StdAges:    []trials.AgeGroup{trials.AgeGroupAdult},
		},
		Design: trials.Design{
			StudyType:       trials.TypeInterventional,
			Phases:          []trials.Phase{trials.Phase2},
			EnrollmentCount: 100,
		},
		Locations: []trials.Location{{Facility: "General Hospital", City: "Boston", Country: "United States"}},
	}
	if mutate != nil {
		mutate(&st)
	}
	return st
}

func TestPhaseLabelObservationalOverridesPhases(t *testing.T) {
	st := makeStudy("NCT1", func(s *trials.Study) {
		s.Design.StudyType = trials.TypeObservational
		s.Design.Phases = []trials.Phase{trials.Phase3}
	})
	if got := PhaseLabel(st); got != "Observational" {
		t.Fatalf("got %q", got)
	}
}

func TestPhaseLabelBuckets(t *testing.T) {
	cases := []struct {
		phases []trials.Phase
		want   string
	}{
		{[]trials.Phase{trials.Phase1}, "Phase 1"},
		{[]trials.Phase{trials.PhaseEarly1}, "Early Phase 1"},
		{[]trials.Phase{trials.PhaseNA}, "Not Applicable"},
		{nil, "Not Applicable"},
		{[]trials.Phase{"PHASE99"}, "Other"},
	}
	for _, tc := range cases {
		st := makeStudy("NCT1", func(s *trials.Study) { s.Design.Phases = tc.phases })
		if got := PhaseLabel(st); got != tc.want {
			t.Errorf("phases %v: got %q, want %q", tc.phases, got, tc.want)
		}
	}
}

func TestBuildVisualizationCounts(t *testing.T) {
	studies := []trials.Study{
		makeStudy("NCT1", nil),
		makeStudy("NCT2", func(s *trials.Study) {
			s.Design.StudyType = trials.TypeObservational
			s.Eligibility.Sex = trials.SexFemale
			s.Design.EnrollmentCount = 40
		}),
		makeStudy("NCT3", func(s *trials.Study) {
			s.Eligibility.HealthyVolunteers = true
			s.Eligibility.Sex = trials.SexMale
			s.Design.EnrollmentCount = 0
			s.Locations = []trials.Location{{Facility: "Clinic", City: "Nowhereville", Country: "USA"}}
		}),
	}
	v := BuildVisualization(studies)

	total := 0
	for _, n := range v.PhaseCounts {
		total += n
	}
	if total != len(studies) {
		t.Fatalf("phase counts sum %d, want %d", total, len(studies))
	}

	// Unknown city dropped from the map, not from any other bucket.
	if len(v.MapPoints) != 2 {
		t.Fatalf("map points %d, want 2", len(v.MapPoints))
	}
	if v.StudyTypeCounts["Healthy Volunteers"] != 1 {
		t.Fatalf("healthy volunteers bucket: %+v", v.StudyTypeCounts)
	}
	if v.StudyTypeCounts["Interventional"] != 1 || v.StudyTypeCounts["Observational"] != 1 {
		t.Fatalf("study type buckets: %+v", v.StudyTypeCounts)
	}
	if v.GenderCounts["All Genders"] != 1 || v.GenderCounts["Female Only"] != 1 || v.GenderCounts["Male Only"] != 1 {
		t.Fatalf("gender buckets: %+v", v.GenderCounts)
	}
	if v.AgeGroupCounts["ADULT"] != 3 {
		t.Fatalf("age buckets: %+v", v.AgeGroupCounts)
	}
	if !reflect.DeepEqual(v.EnrollmentSizes, []int{100, 40}) {
		t.Fatalf("enrollment sizes: %v", v.EnrollmentSizes)
	}
	if v.Enrollment == nil || v.Enrollment.Total != 140 || v.Enrollment.Average != 70 ||
		v.Enrollment.Largest != 100 || v.Enrollment.Smallest != 40 {
		t.Fatalf("enrollment stats: %+v", v.Enrollment)
	}
}

func TestBuildVisualizationAverageIsFloorDivided(t *testing.T) {
	studies := []trials.Study{
		makeStudy("NCT1", func(s *trials.Study) { s.Design.EnrollmentCount = 5 }),
		makeStudy("NCT2", func(s *trials.Study) { s.Design.EnrollmentCount = 4 }),
	}
	v := BuildVisualization(studies)
	if v.Enrollment.Average != 4 {
		t.Fatalf("average %d, want 4", v.Enrollment.Average)
	}
}

func TestBuildVisualizationIdempotent(t *testing.T) {
	studies := []trials.Study{makeStudy("NCT1", nil), makeStudy("NCT2", nil)}
	first := BuildVisualization(studies)
	second := BuildVisualization(studies)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("two builds over the same input differ")
	}
}

func TestBuildVisualizationEmpty(t *testing.T) {
	v := BuildVisualization(nil)
	if len(v.MapPoints) != 0 || len(v.PhaseCounts) != 0 || v.Enrollment != nil {
		t.Fatalf("expected empty bundle, got %+v", v)
	}
}

func TestMapPointTitleClamped(t *testing.T) {
	long := strings.Repeat("x", 120)
	st := makeStudy("NCT1", func(s *trials.Study) { s.BriefTitle = long })
	v := BuildVisualization([]trials.Study{st})
	if len(v.MapPoints) != 1 {
		t.Fatal("expected one map point")
	}
	got := v.MapPoints[0].TrialTitle
	if len(got) != 83 || !strings.HasSuffix(got, "...") {
		t.Fatalf("title not clamped: %q", got)
	}
}
