package navigator

import (
	"github.com/joelkehle/trial-navigator/internal/trials"
)

const (
	// Caps applied by the match and risk stages.
	MaxRecommendations = 10
	MaxRiskAssessments = 5
	// The summarizer looks at the first few studies only.
	SummarizedStudies = 3
	// A recommendation counts as high-score above this.
	HighScoreThreshold = 70
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Gender string

const (
	GenderAll    Gender = "All"
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
)

type RiskTolerance string

const (
	ToleranceLow      RiskTolerance = "low"
	ToleranceModerate RiskTolerance = "moderate"
	ToleranceHigh     RiskTolerance = "high"
)

type TravelPreference string

const (
	TravelLocal         TravelPreference = "local"
	TravelRegional      TravelPreference = "regional"
	TravelNational      TravelPreference = "national"
	TravelInternational TravelPreference = "international"
)

// UserProfile is the session-scoped profile the match, quality, and
// refinement stages score against. It is never persisted.
type UserProfile struct {
	Age              int              `json:"age"`
	Gender           Gender           `json:"gender"`
	Location         string           `json:"location"`
	RiskTolerance    RiskTolerance    `json:"risk_tolerance"`
	TravelPreference TravelPreference `json:"travel_preference"`
}

type MapPoint struct {
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Facility   string  `json:"facility"`
	City       string  `json:"city"`
	Country    string  `json:"country"`
	TrialTitle string  `json:"trial_title"`
	NCTID      string  `json:"nct_id"`
	Phase      string  `json:"phase"`
}

type EnrollmentStats struct {
	Total    int `json:"total"`
	Average  int `json:"average"`
	Largest  int `json:"largest"`
	Smallest int `json:"smallest"`
}

// VisualizationBundle is a read-only aggregate recomputed in full on every
// pipeline run.
type VisualizationBundle struct {
	MapPoints       []MapPoint       `json:"map_points"`
	PhaseCounts     map[string]int   `json:"phase_counts"`
	AgeGroupCounts  map[string]int   `json:"age_group_counts"`
	GenderCounts    map[string]int   `json:"gender_counts"`
	StudyTypeCounts map[string]int   `json:"study_type_counts"`
	EnrollmentSizes []int            `json:"enrollment_sizes"`
	Enrollment      *EnrollmentStats `json:"enrollment,omitempty"`
}

type Recommendation struct {
	Study        trials.Study `json:"study"`
	Score        int          `json:"score"`
	MatchReasons []string     `json:"match_reasons"`
}

type RiskLevel string

const (
	RiskLow        RiskLevel = "Low"
	RiskMedium     RiskLevel = "Medium"
	RiskMediumHigh RiskLevel = "Medium-High"
	RiskHigh       RiskLevel = "High"
)

type RiskAssessment struct {
	Title       string           `json:"title"`
	RiskLevel   RiskLevel        `json:"risk_level"`
	RiskFactors []string         `json:"risk_factors"`
	Benefits    []string         `json:"benefits"`
	Summary     string           `json:"summary"`
	Phase       string           `json:"phase"`
	StudyType   trials.StudyType `json:"study_type"`
}

type RefinementKind string

const (
	RefinementNone RefinementKind = "none"
	RefineSearch   RefinementKind = "refine_search"
	RefineProfile  RefinementKind = "refine_profile"
)

// QualityMetrics is the quality stage's heuristic read on one run's result
// set. When several thresholds fire, RefinementKind holds whichever fired
// last in evaluation order.
type QualityMetrics struct {
	Score                 int            `json:"score"`
	RefinementNeeded      bool           `json:"refinement_needed"`
	RefinementKind        RefinementKind `json:"refinement_kind"`
	TotalTrials           int            `json:"total_trials"`
	HighScoreTrials       int            `json:"high_score_trials"`
	LocationCoverage      int            `json:"location_coverage"`
	LocationCoverageKnown bool           `json:"location_coverage_known"`
}

// SearchRefinement is advisory output: a proposed broader term set the
// caller may re-feed into the search stage. Nothing here re-invokes the
// search by itself.
type SearchRefinement struct {
	OriginalDisease string         `json:"original_disease"`
	ExpandedTerms   []string       `json:"expanded_terms"`
	Note            string         `json:"note"`
	PreviousResults int            `json:"previous_results"`
	Reason          RefinementKind `json:"reason"`
	NeedsResearch   bool           `json:"needs_research"`
}

// ProfileRefinement is advisory output about the current profile; the
// profile itself is never mutated.
type ProfileRefinement struct {
	Issues      []string          `json:"issues"`
	Suggestions map[string]string `json:"suggestions"`
	Reason      RefinementKind    `json:"reason"`
}

// State is the single mutable record threaded through one pipeline run.
// It is single-owner: exactly one in-flight run mutates it, stage by
// stage, and the host must not share one State across concurrent runs.
type State struct {
	Messages              []Message                 `json:"messages"`
	Disease               string                    `json:"disease"`
	Studies               []trials.Study            `json:"studies"`
	TotalCount            int                       `json:"total_count"`
	Profile               *UserProfile              `json:"profile,omitempty"`
	NeedsClarification    bool                      `json:"needs_clarification"`
	ClarificationQuestion string                    `json:"clarification_question,omitempty"`
	SimplifiedCriteria    string                    `json:"simplified_criteria"`
	Visualization         VisualizationBundle       `json:"visualization"`
	Recommendations       []Recommendation          `json:"recommendations"`
	RiskAssessments       map[string]RiskAssessment `json:"risk_assessments"`
	Quality               *QualityMetrics           `json:"quality,omitempty"`
	SearchRefinement      *SearchRefinement         `json:"search_refinement,omitempty"`
	ProfileRefinement     *ProfileRefinement        `json:"profile_refinement,omitempty"`
}

func (s *State) appendAssistant(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleAssistant, Content: content})
}

// AppendUser records one user turn in the transcript.
func (s *State) AppendUser(content string) {
	s.Messages = append(s.Messages, Message{Role: RoleUser, Content: content})
}

func (s *State) tolerance() RiskTolerance {
	if s.Profile == nil || s.Profile.RiskTolerance == "" {
		return ToleranceModerate
	}
	return s.Profile.RiskTolerance
}
