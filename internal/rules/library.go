package rules

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
)

// Diagnostics summarizes the outcome of the most recent library load.
// A non-empty SkippedFiles list means the library is running partially loaded.
type Diagnostics struct {
	LoadedFiles    []string `json:"loaded_files"`
	SkippedFiles   []string `json:"skipped_files,omitempty"`
	DuplicateRules []string `json:"duplicate_rules,omitempty"`
	RuleCount      int      `json:"rule_count"`
}

// snapshot is an immutable view of the loaded rule index. Readers always see a
// complete snapshot; Reload swaps the whole thing atomically.
type snapshot struct {
	byAgent  map[string][]Rule
	byRuleID map[string]Rule
	diag     Diagnostics
}

// Library loads rule definition files for one profile and serves rule queries
// to the agents. Concurrent reads are safe against Reload.
type Library struct {
	baseDir   string
	profileID string

	current atomic.Pointer[snapshot]
}

// NewLibrary loads all *.rules.json files under baseDir/profileID.
// Malformed files are skipped and recorded in Diagnostics; a missing directory
// yields an empty library rather than an error, so the service can start with
// no rules and report that through its health surface.
func NewLibrary(baseDir, profileID string) (*Library, error) {
	lib := &Library{
		baseDir:   baseDir,
		profileID: profileID,
	}
	snap, err := lib.load()
	if err != nil {
		return nil, err
	}
	lib.current.Store(snap)
	return lib, nil
}

// load reads every rule file into a fresh snapshot. It never partially
// populates the returned snapshot: a file either loads whole or is skipped.
func (l *Library) load() (*snapshot, error) {
	snap := &snapshot{
		byAgent:  make(map[string][]Rule),
		byRuleID: make(map[string]Rule),
	}

	profileDir := filepath.Join(l.baseDir, l.profileID)
	if _, err := os.Stat(profileDir); os.IsNotExist(err) {
		log.Printf("rules: profile directory %s does not exist, starting with empty library", profileDir)
		return snap, nil
	}

	paths, err := filepath.Glob(filepath.Join(profileDir, "*.rules.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan rules directory %s: %w", profileDir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		file, err := l.loadFile(path)
		if err != nil {
			log.Printf("rules: skipping %s: %v", path, err)
			snap.diag.SkippedFiles = append(snap.diag.SkippedFiles, filepath.Base(path))
			continue
		}

		snap.byAgent[file.AgentID] = file.Rules
		for _, rule := range file.Rules {
			if _, exists := snap.byRuleID[rule.RuleID]; exists {
				// First-loaded rule wins on id collisions.
				log.Printf("rules: duplicate rule id %s in %s, keeping first occurrence", rule.RuleID, path)
				snap.diag.DuplicateRules = append(snap.diag.DuplicateRules, rule.RuleID)
				continue
			}
			snap.byRuleID[rule.RuleID] = rule
		}
		snap.diag.LoadedFiles = append(snap.diag.LoadedFiles, filepath.Base(path))
	}

	snap.diag.RuleCount = len(snap.byRuleID)
	return snap, nil
}

// loadFile reads, schema-validates and decodes one rule definition file.
func (l *Library) loadFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}

	if err := validateRuleFile(path, data); err != nil {
		return nil, err
	}

	var file RuleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rule file: %w", err)
	}
	return &file, nil
}

// RulesFor returns the ordered rules for an agent, filtered by profile variant.
// An unrecognized or empty variant returns the unfiltered set.
func (l *Library) RulesFor(agentID, profileVariant string) []Rule {
	snap := l.current.Load()
	all := snap.byAgent[agentID]

	var allowed map[Source]bool
	switch profileVariant {
	case VariantGlobal:
		allowed = map[Source]bool{SourceAPA7: true, SourceMixed: true}
	case VariantInstitutional:
		allowed = map[Source]bool{SourceLocal: true, SourceMixed: true}
	case VariantBoth:
		allowed = map[Source]bool{SourceAPA7: true, SourceLocal: true, SourceMixed: true}
	default:
		return all
	}

	filtered := make([]Rule, 0, len(all))
	for _, rule := range all {
		if allowed[rule.Source] {
			filtered = append(filtered, rule)
		}
	}
	return filtered
}

// RuleByID looks up a rule by its globally unique id.
func (l *Library) RuleByID(ruleID string) (Rule, bool) {
	rule, ok := l.current.Load().byRuleID[ruleID]
	return rule, ok
}

// AgentIDs lists the agent ids that have rules loaded, sorted.
func (l *Library) AgentIDs() []string {
	snap := l.current.Load()
	ids := make([]string, 0, len(snap.byAgent))
	for id := range snap.byAgent {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Diagnostics returns the load report for the active snapshot.
func (l *Library) Diagnostics() Diagnostics {
	return l.current.Load().diag
}

// ProfileID returns the profile the library was loaded for.
func (l *Library) ProfileID() string {
	return l.profileID
}

// Reload re-reads all rule files and atomically replaces the active snapshot.
// In-flight readers keep the snapshot they already hold.
func (l *Library) Reload() error {
	snap, err := l.load()
	if err != nil {
		return fmt.Errorf("failed to reload rule library: %w", err)
	}
	l.current.Store(snap)
	return nil
}
