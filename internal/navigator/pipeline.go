package navigator

import (
	"context"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/joelkehle/trial-navigator/internal/trials"
)

// Searcher is the registry collaborator boundary.
type Searcher interface {
	Search(ctx context.Context, condition string) (trials.SearchResult, error)
}

// Pipeline runs the fixed stage chain over one State per user turn:
// clarify, search, summarize, visualize, match, risk, quality, then the
// two advisory refiners. The default wiring is strictly linear; an
// explicit refinement budget opts in to re-running search and match when
// the quality stage asks for a broader search.
type Pipeline struct {
	searcher       Searcher
	llm            LLMCaller
	tracer         trace.Tracer
	maxRefineIters int
}

type Option func(*Pipeline)

// WithRefinement allows the pipeline to act on refine_search advisories by
// re-running the search and match stages with an expanded term, at most
// maxIters times.
func WithRefinement(maxIters int) Option {
	return func(p *Pipeline) {
		if maxIters > 0 {
			p.maxRefineIters = maxIters
		}
	}
}

// NewPipeline builds a pipeline. The llm caller may be nil, in which case
// every model interaction degrades to its static fallback text.
func NewPipeline(searcher Searcher, llm LLMCaller, opts ...Option) *Pipeline {
	p := &Pipeline{
		searcher: searcher,
		llm:      llm,
		tracer:   otel.Tracer("trial-navigator/pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) ValidateConfig() error {
	if p.searcher == nil {
		return fmt.Errorf("searcher is required")
	}
	return nil
}

// Run executes all stages in order and returns the same state it was
// handed. No stage failure terminates the run: every boundary error is
// converted to transcript text or a permissive default before the next
// stage starts.
func (p *Pipeline) Run(ctx context.Context, state *State) *State {
	ctx, span := p.tracer.Start(ctx, "navigator.run")
	defer span.End()

	p.step(ctx, "clarify", state, p.clarify)
	p.step(ctx, "search", state, p.search)
	p.step(ctx, "summarize", state, p.summarize)
	p.step(ctx, "visualize", state, p.visualize)
	p.step(ctx, "match", state, p.match)
	p.step(ctx, "risk", state, p.analyzeRisk)
	p.step(ctx, "quality", state, p.evaluateQuality)
	p.step(ctx, "refine_search", state, p.refineSearch)
	p.step(ctx, "refine_profile", state, p.refineProfile)

	for iter := 0; iter < p.maxRefineIters; iter++ {
		if route(state.Quality) != RouteRefineSearch {
			break
		}
		term := nextExpandedTerm(state)
		if term == "" {
			break
		}
		log.Printf("navigator refine_iteration iter=%d term=%q previous=%q", iter+1, term, state.Disease)
		state.Disease = term
		p.step(ctx, "search", state, p.search)
		p.step(ctx, "match", state, p.match)
		p.step(ctx, "quality", state, p.evaluateQuality)
		p.step(ctx, "refine_search", state, p.refineSearch)
	}
	return state
}

func (p *Pipeline) step(ctx context.Context, name string, state *State, fn func(context.Context, *State)) {
	ctx, span := p.tracer.Start(ctx, "navigator."+name)
	defer span.End()
	fn(ctx, state)
}

// nextExpandedTerm picks the first proposed term that differs from the
// current query.
func nextExpandedTerm(state *State) string {
	if state.SearchRefinement == nil {
		return ""
	}
	for _, term := range state.SearchRefinement.ExpandedTerms {
		if !strings.EqualFold(term, state.Disease) {
			return term
		}
	}
	return ""
}

var ambiguousTerms = []string{"cancer", "tumor", "disease", "condition", "illness"}

// clarify flags overly general queries and asks the model to phrase a
// clarifying question. It only annotates state; the rest of the run still
// executes.
func (p *Pipeline) clarify(ctx context.Context, state *State) {
	disease := strings.ToLower(strings.TrimSpace(state.Disease))
	ambiguous := false
	for _, term := range ambiguousTerms {
		if strings.Contains(disease, term) {
			ambiguous = true
			break
		}
	}
	if ambiguous && len(strings.Fields(disease)) <= 2 {
		state.NeedsClarification = true
		state.ClarificationQuestion = p.generate(ctx, PromptClarify, state.Disease)
		state.appendAssistant(state.ClarificationQuestion)
		return
	}
	state.NeedsClarification = false
}

// search queries the registry for recruiting trials. Transport failures
// become a transcript message and an empty result set, never an error to
// the caller.
func (p *Pipeline) search(ctx context.Context, state *State) {
	disease := strings.TrimSpace(state.Disease)
	if disease == "" {
		state.appendAssistant("Please provide a disease or condition to search for.")
		return
	}
	res, err := p.searcher.Search(ctx, disease)
	if err != nil {
		log.Printf("navigator search_failed disease=%q err=%q", disease, err.Error())
		state.Studies = nil
		state.TotalCount = 0
		state.appendAssistant(fmt.Sprintf("Error searching for trials: %s", err))
		return
	}
	state.Studies = res.Studies
	state.TotalCount = res.TotalCount
	log.Printf("navigator search_done disease=%q studies=%d total=%d", disease, len(res.Studies), res.TotalCount)
	state.appendAssistant(fmt.Sprintf("Found %d recruiting trials for %s.", len(res.Studies), disease))
}

// summarize feeds the inclusion/exclusion text of the first few studies to
// the model for a plain-language rewrite. The model output is stored
// verbatim.
func (p *Pipeline) summarize(ctx context.Context, state *State) {
	if len(state.Studies) == 0 {
		state.SimplifiedCriteria = "No trials found to analyze eligibility criteria."
		return
	}
	var b strings.Builder
	for i, st := range state.Studies {
		if i == SummarizedStudies {
			break
		}
		e := st.Eligibility
		if e.InclusionCriteria == "" && e.ExclusionCriteria == "" {
			continue
		}
		fmt.Fprintf(&b, "Inclusion: %s\nExclusion: %s\n\n", e.InclusionCriteria, e.ExclusionCriteria)
	}
	state.SimplifiedCriteria = p.generate(ctx, PromptSimplify, b.String())
}

func (p *Pipeline) visualize(ctx context.Context, state *State) {
	state.Visualization = BuildVisualization(state.Studies)
}
