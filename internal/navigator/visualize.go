package navigator

import (
	"github.com/joelkehle/trial-navigator/internal/geo"
	"github.com/joelkehle/trial-navigator/internal/trials"
)

var phaseLabels = map[trials.Phase]string{
	trials.Phase1:      "Phase 1",
	trials.Phase2:      "Phase 2",
	trials.Phase3:      "Phase 3",
	trials.Phase4:      "Phase 4",
	trials.PhaseEarly1: "Early Phase 1",
}

// PhaseLabel maps a study to its display bucket. Observational studies
// always bucket as "Observational" regardless of their phases list.
func PhaseLabel(st trials.Study) string {
	if st.Design.StudyType == trials.TypeObservational {
		return "Observational"
	}
	if st.HasPhase() {
		if label, ok := phaseLabels[st.FirstPhase()]; ok {
			return label
		}
		return "Other"
	}
	return "Not Applicable"
}

// BuildVisualization aggregates one result set into the chart and map
// inputs the UI renders. It reads nothing but its argument and is
// recomputed in full on every run.
func BuildVisualization(studies []trials.Study) VisualizationBundle {
	v := VisualizationBundle{
		MapPoints:       []MapPoint{},
		PhaseCounts:     map[string]int{},
		AgeGroupCounts:  map[string]int{},
		GenderCounts:    map[string]int{},
		StudyTypeCounts: map[string]int{},
		EnrollmentSizes: []int{},
	}
	if len(studies) == 0 {
		return v
	}

	for _, st := range studies {
		phase := PhaseLabel(st)
		v.PhaseCounts[phase]++

		// Locations without a table entry are dropped from the map
		// only; the study still counts everywhere else.
		for _, loc := range st.Locations {
			at, ok := geo.Lookup(loc.City, loc.Country)
			if !ok {
				continue
			}
			v.MapPoints = append(v.MapPoints, MapPoint{
				Lat:        at.Lat,
				Lon:        at.Lon,
				Facility:   loc.Facility,
				City:       loc.City,
				Country:    loc.Country,
				TrialTitle: clampTitle(st.BriefTitle, 80),
				NCTID:      st.NCTID,
				Phase:      phase,
			})
		}

		for _, group := range st.Eligibility.StdAges {
			v.AgeGroupCounts[string(group)]++
		}

		switch st.Eligibility.Sex {
		case trials.SexAll:
			v.GenderCounts["All Genders"]++
		case trials.SexMale:
			v.GenderCounts["Male Only"]++
		case trials.SexFemale:
			v.GenderCounts["Female Only"]++
		default:
			v.GenderCounts["Not Specified"]++
		}

		// Healthy-volunteer studies get their own bucket ahead of the
		// raw study-type classification.
		switch {
		case st.Eligibility.HealthyVolunteers:
			v.StudyTypeCounts["Healthy Volunteers"]++
		case st.Design.StudyType == trials.TypeInterventional:
			v.StudyTypeCounts["Interventional"]++
		case st.Design.StudyType == trials.TypeObservational:
			v.StudyTypeCounts["Observational"]++
		default:
			v.StudyTypeCounts["Other"]++
		}

		if st.Design.EnrollmentCount > 0 {
			v.EnrollmentSizes = append(v.EnrollmentSizes, st.Design.EnrollmentCount)
		}
	}

	if len(v.EnrollmentSizes) > 0 {
		stats := EnrollmentStats{Largest: v.EnrollmentSizes[0], Smallest: v.EnrollmentSizes[0]}
		for _, n := range v.EnrollmentSizes {
			stats.Total += n
			if n > stats.Largest {
				stats.Largest = n
			}
			if n < stats.Smallest {
				stats.Smallest = n
			}
		}
		stats.Average = stats.Total / len(v.EnrollmentSizes)
		v.Enrollment = &stats
	}
	return v
}

func clampTitle(title string, max int) string {
	if len(title) <= max {
		return title
	}
	return title[:max] + "..."
}
