// Package orchestrator coordinates the two-phase lint pipeline: profile
// inference first, then the rule agents fanned out concurrently.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dcastillo/apa7-lint/internal/agents"
	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// DefaultTimeout bounds one lint run end to end.
const DefaultTimeout = 60 * time.Second

// Orchestrator runs the lint pipeline. It is safe for concurrent use: the
// rule library snapshot and the agents hold no per-request state.
type Orchestrator struct {
	lib     *rules.Library
	profile *agents.ProfileAgent
	agents  []agents.Agent
	timeout time.Duration
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// New builds the orchestrator with the full agent roster in its fixed run
// order. The runner may be nil to disable llm_semantic rules.
func New(lib *rules.Library, runner agents.LLMRuleRunner, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		lib:     lib,
		profile: agents.NewProfileAgent(lib),
		agents: []agents.Agent{
			agents.NewStructureAgent(lib, runner),
			agents.NewFormatAgent(lib),
			agents.NewCitationsAgent(lib),
			agents.NewReferencesAgent(lib),
			agents.NewEquationsAgent(lib),
			agents.NewTablesAgent(lib),
			agents.NewScientificAgent(lib),
			agents.NewMetadataAgent(lib),
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AgentIDs returns the identifiers of the roster in run order, the profile
// stage first.
func (o *Orchestrator) AgentIDs() []string {
	ids := []string{o.profile.ID()}
	for _, a := range o.agents {
		ids = append(ids, a.ID())
	}
	return ids
}

// Run executes one lint request and returns the merged report. Agent failures
// are isolated: a failing or panicking agent contributes no findings while the
// rest of the roster still runs.
func (o *Orchestrator) Run(ctx context.Context, req types.LintRequest) (types.Report, error) {
	if err := req.Validate(); err != nil {
		return types.Report{}, fmt.Errorf("invalid lint request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()

	profile, profileFindings, err := o.profile.Infer(ctx, req.DocumentText, req.Context)
	if err != nil {
		return types.Report{}, fmt.Errorf("profile inference: %w", err)
	}

	roster := o.selectAgents(req.Agents)

	// Fan out with one result slot per agent so the merged order is the
	// fixed roster order regardless of completion order.
	results := make([][]types.Finding, len(roster))
	g, gctx := errgroup.WithContext(ctx)
	for i, agent := range roster {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("agent %s panicked: %v", agent.ID(), r)
				}
			}()
			findings, err := agent.Evaluate(gctx, req.DocumentText, req.Context, profile)
			if err != nil {
				log.Printf("agent %s failed: %v", agent.ID(), err)
				return nil
			}
			results[i] = findings
			return nil
		})
	}
	// Errors are logged per agent, never propagated through the group.
	_ = g.Wait()

	findings := make([]types.Finding, 0, len(profileFindings))
	findings = append(findings, profileFindings...)
	for _, r := range results {
		findings = append(findings, r...)
	}

	agentsRun := []string{o.profile.ID()}
	for _, a := range roster {
		agentsRun = append(agentsRun, a.ID())
	}

	return types.Report{
		Success:   true,
		RequestID: uuid.New().String(),
		Findings:  findings,
		Summary:   types.Summarize(findings),
		AgentsRun: agentsRun,
		ElapsedMS: float64(time.Since(start).Microseconds()) / 1000.0,
		Profile:   profile,
		Timestamp: time.Now().UTC(),
	}, nil
}

// selectAgents narrows the roster to the requested agent ids, preserving run
// order. An empty filter selects the whole roster; unknown ids are ignored.
func (o *Orchestrator) selectAgents(requested []string) []agents.Agent {
	if len(requested) == 0 {
		return o.agents
	}
	wanted := make(map[string]bool, len(requested))
	for _, id := range requested {
		wanted[id] = true
	}
	var roster []agents.Agent
	for _, a := range o.agents {
		if wanted[a.ID()] {
			roster = append(roster, a)
		}
	}
	return roster
}
