package trials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultBaseURL  = "https://clinicaltrials.gov/api/v2"
	DefaultPageSize = 50
	studiesPath     = "/studies"
	userAgent       = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

type ClientConfig struct {
	BaseURL    string
	PageSize   int
	HTTPClient *http.Client
}

// Client issues read-only condition searches against the ClinicalTrials.gov
// v2 API and flattens the nested protocol documents into Study records.
type Client struct {
	cfg ClientConfig
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{cfg: cfg}
}

type apiResponse struct {
	Studies    []map[string]any `json:"studies"`
	TotalCount int              `json:"totalCount"`
}

// Search runs one recruiting-only query for the given condition. Transport
// and decode failures come back as errors; the caller decides how to
// surface them.
func (c *Client) Search(ctx context.Context, condition string) (SearchResult, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return SearchResult{}, errors.New("condition is required")
	}

	q := url.Values{}
	q.Set("query.cond", condition)
	q.Set("filter.overallStatus", string(StatusRecruiting))
	q.Set("pageSize", fmt.Sprintf("%d", c.cfg.PageSize))
	q.Set("countTotal", "true")
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + studiesPath + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return SearchResult{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return SearchResult{}, err
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(res.Body, 8<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return SearchResult{}, fmt.Errorf("status code: %d", res.StatusCode)
	}

	var parsed apiResponse
	if err := json.Unmarshal(b, &parsed); err != nil {
		return SearchResult{}, fmt.Errorf("decode response: %w", err)
	}

	out := SearchResult{Studies: make([]Study, 0, len(parsed.Studies))}
	for _, raw := range parsed.Studies {
		out.Studies = append(out.Studies, flattenStudy(raw))
	}
	out.TotalCount = parsed.TotalCount
	if out.TotalCount == 0 {
		out.TotalCount = len(out.Studies)
	}
	return out, nil
}

// flattenStudy pulls the sub-documents the navigator cares about out of the
// nested protocolSection wrapper. Missing fields fall through to zero
// values; nothing here raises.
func flattenStudy(raw map[string]any) Study {
	protocol := mapAt(raw, "protocolSection")
	identification := mapAt(protocol, "identificationModule")
	status := mapAt(protocol, "statusModule")
	conditions := mapAt(protocol, "conditionsModule")
	sponsor := mapAt(protocol, "sponsorCollaboratorsModule")
	contacts := mapAt(protocol, "contactsLocationsModule")
	design := mapAt(protocol, "designModule")
	eligibility := mapAt(protocol, "eligibilityModule")

	s := Study{
		NCTID:      strings.TrimSpace(str(identification["nctId"])),
		BriefTitle: strings.TrimSpace(str(identification["briefTitle"])),
		Status:     Status(str(status["overallStatus"])),
		Conditions: strList(conditions["conditions"]),
	}
	if s.Status == "" {
		s.Status = StatusUnknown
	}

	lead := mapAt(sponsor, "leadSponsor")
	s.SponsorName = strings.TrimSpace(str(lead["name"]))
	s.SponsorClass = strings.TrimSpace(str(lead["class"]))

	s.Locations = flattenLocations(contacts["locations"])
	s.Design = flattenDesign(design)
	s.Eligibility = flattenEligibility(eligibility)
	return s
}

func flattenLocations(v any) []Location {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Location, 0, len(arr))
	for _, item := range arr {
		m, _ := item.(map[string]any)
		loc := Location{
			Facility: strings.TrimSpace(str(m["facility"])),
			City:     strings.TrimSpace(str(m["city"])),
			Country:  strings.TrimSpace(str(m["country"])),
		}
		if loc.Facility == "" && loc.City == "" && loc.Country == "" {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func flattenDesign(m map[string]any) Design {
	d := Design{
		StudyType:         StudyType(str(m["studyType"])),
		InterventionModel: InterventionModel(strFromPath(m, "designInfo", "interventionModel")),
		Allocation:        strFromPath(m, "designInfo", "allocation"),
	}
	if d.StudyType == "" {
		d.StudyType = TypeUnknown
	}
	for _, p := range strList(m["phases"]) {
		d.Phases = append(d.Phases, Phase(p))
	}
	enrollment := mapAt(m, "enrollmentInfo")
	if n, ok := enrollment["count"].(float64); ok && n > 0 {
		d.EnrollmentCount = int(n)
	}
	return d
}

func flattenEligibility(m map[string]any) Eligibility {
	e := Eligibility{
		MinimumAge:        strings.TrimSpace(str(m["minimumAge"])),
		MaximumAge:        strings.TrimSpace(str(m["maximumAge"])),
		Sex:               Sex(str(m["sex"])),
		HealthyVolunteers: boolAt(m, "healthyVolunteers"),
	}
	if e.Sex == "" {
		e.Sex = SexUnspecified
	}
	for _, g := range strList(m["stdAges"]) {
		e.StdAges = append(e.StdAges, AgeGroup(g))
	}
	// The v2 API ships criteria as one block; older shapes split them.
	criteria := str(m["eligibilityCriteria"])
	inclusion, exclusion := splitCriteria(criteria)
	if v := str(m["inclusionCriteria"]); v != "" {
		inclusion = v
	}
	if v := str(m["exclusionCriteria"]); v != "" {
		exclusion = v
	}
	e.InclusionCriteria = strings.TrimSpace(inclusion)
	e.ExclusionCriteria = strings.TrimSpace(exclusion)
	return e
}

// splitCriteria separates a combined criteria block on the registry's
// conventional "Exclusion Criteria" heading.
func splitCriteria(criteria string) (inclusion, exclusion string) {
	if criteria == "" {
		return "", ""
	}
	lower := strings.ToLower(criteria)
	idx := strings.Index(lower, "exclusion criteria")
	if idx < 0 {
		return criteria, ""
	}
	return criteria[:idx], criteria[idx:]
}

func mapAt(m map[string]any, key string) map[string]any {
	child, _ := m[key].(map[string]any)
	if child == nil {
		return map[string]any{}
	}
	return child
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func strFromPath(m map[string]any, keys ...string) string {
	cur := any(m)
	for _, key := range keys {
		mm, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = mm[key]
	}
	s, _ := cur.(string)
	return s
}

func strList(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

func boolAt(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
