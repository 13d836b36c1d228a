package trials

// Study status values as reported by ClinicalTrials.gov.
type Status string

const (
	StatusRecruiting Status = "RECRUITING"
	StatusUnknown    Status = "UNKNOWN"
)

type Sex string

const (
	SexAll         Sex = "ALL"
	SexMale        Sex = "MALE"
	SexFemale      Sex = "FEMALE"
	SexUnspecified Sex = "UNSPECIFIED"
)

type StudyType string

const (
	TypeInterventional StudyType = "INTERVENTIONAL"
	TypeObservational  StudyType = "OBSERVATIONAL"
	TypeUnknown        StudyType = "UNKNOWN"
)

type Phase string

const (
	PhaseEarly1 Phase = "EARLY_PHASE1"
	Phase1      Phase = "PHASE1"
	Phase2      Phase = "PHASE2"
	Phase3      Phase = "PHASE3"
	Phase4      Phase = "PHASE4"
	PhaseNA     Phase = "NA"
)

// Standardized age-group tags from the registry's eligibility module.
type AgeGroup string

const (
	AgeGroupChild      AgeGroup = "CHILD"
	AgeGroupAdult      AgeGroup = "ADULT"
	AgeGroupOlderAdult AgeGroup = "OLDER_ADULT"
)

type InterventionModel string

const (
	ModelSingleGroup InterventionModel = "SINGLE_GROUP"
	ModelParallel    InterventionModel = "PARALLEL"
)

type Location struct {
	Facility string `json:"facility"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// Eligibility keeps the registry's raw age strings; ParseAge turns them
// into comparable integers at the point of use.
type Eligibility struct {
	MinimumAge        string     `json:"minimum_age"`
	MaximumAge        string     `json:"maximum_age"`
	Sex               Sex        `json:"sex"`
	StdAges           []AgeGroup `json:"std_ages"`
	HealthyVolunteers bool       `json:"healthy_volunteers"`
	InclusionCriteria string     `json:"inclusion_criteria"`
	ExclusionCriteria string     `json:"exclusion_criteria"`
}

type Design struct {
	StudyType         StudyType         `json:"study_type"`
	Phases            []Phase           `json:"phases"`
	InterventionModel InterventionModel `json:"intervention_model"`
	Allocation        string            `json:"allocation"`
	EnrollmentCount   int               `json:"enrollment_count"`
}

// Study is one registry record flattened out of the nested protocol
// section document.
type Study struct {
	NCTID        string      `json:"nct_id"`
	BriefTitle   string      `json:"brief_title"`
	Status       Status      `json:"status"`
	Conditions   []string    `json:"conditions"`
	SponsorName  string      `json:"sponsor_name"`
	SponsorClass string      `json:"sponsor_class"`
	Locations    []Location  `json:"locations"`
	Eligibility  Eligibility `json:"eligibility"`
	Design       Design      `json:"design"`
}

// FirstPhase returns the study's leading phase code, or PhaseNA when the
// phase list is empty or the NA singleton.
func (s Study) FirstPhase() Phase {
	if len(s.Design.Phases) == 0 {
		return PhaseNA
	}
	if len(s.Design.Phases) == 1 && s.Design.Phases[0] == PhaseNA {
		return PhaseNA
	}
	return s.Design.Phases[0]
}

// HasPhase reports whether the study carries any phase information beyond
// the NA placeholder.
func (s Study) HasPhase() bool {
	return s.FirstPhase() != PhaseNA
}

// SearchResult is one page of registry results plus the registry's own
// total-hit count, which can exceed the page size.
type SearchResult struct {
	Studies    []Study `json:"studies"`
	TotalCount int     `json:"total_count"`
}
