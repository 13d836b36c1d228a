package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/joelkehle/trial-navigator/internal/navigator"
	"github.com/joelkehle/trial-navigator/internal/trials"
)

func main() {
	_ = godotenv.Load()

	disease := flag.String("disease", "", "disease or condition to search for")
	age := flag.Int("age", 0, "patient age (0 = no profile)")
	gender := flag.String("gender", "All", "patient gender: All, Male, Female")
	location := flag.String("location", "", "preferred city")
	tolerance := flag.String("risk-tolerance", "moderate", "risk tolerance: low, moderate, high")
	travel := flag.String("travel", "regional", "travel preference: local, regional, national, international")
	registryURL := flag.String("registry-url", trials.DefaultBaseURL, "ClinicalTrials.gov API base URL")
	refineIters := flag.Int("refine-iters", 0, "max automatic search refinements (0 = linear pipeline)")
	flag.Parse()

	if strings.TrimSpace(*disease) == "" {
		fmt.Fprintln(os.Stderr, "usage: navigator-query -disease <condition> [-age N -gender G -location CITY ...]")
		os.Exit(2)
	}

	searcher := trials.NewClient(trials.ClientConfig{BaseURL: *registryURL})

	var llm navigator.LLMCaller
	if caller, err := navigator.NewAnthropicCallerFromEnv(); err != nil {
		log.Printf("navigator-query llm_disabled reason=%q (static fallbacks in effect)", err.Error())
	} else {
		llm = caller
	}

	var opts []navigator.Option
	if *refineIters > 0 {
		opts = append(opts, navigator.WithRefinement(*refineIters))
	}
	pipeline := navigator.NewPipeline(searcher, llm, opts...)
	if err := pipeline.ValidateConfig(); err != nil {
		log.Fatal(err)
	}

	state := &navigator.State{Disease: strings.TrimSpace(*disease)}
	state.AppendUser(state.Disease)
	if *age > 0 {
		state.Profile = &navigator.UserProfile{
			Age:              *age,
			Gender:           navigator.Gender(*gender),
			Location:         strings.TrimSpace(*location),
			RiskTolerance:    navigator.RiskTolerance(strings.ToLower(*tolerance)),
			TravelPreference: navigator.TravelPreference(strings.ToLower(*travel)),
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pipeline.Run(ctx, state)
	fmt.Print(navigator.BuildReportMarkdown(state))
}
