package agents

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dcastillo/apa7-lint/internal/rules"
	"github.com/dcastillo/apa7-lint/internal/types"
)

// AgentIDCitations identifies the in-text citations agent.
const AgentIDCitations = "INTEXTCITATIONS"

// citationsCategory is the finding category emitted by this agent.
const citationsCategory = "citations"

var (
	citationParenthetical    = regexp.MustCompile(`\(([A-ZÁÉÍÓÚÑ][A-Za-zÁÉÍÓÚÑáéíóúñ]+),\s*(\d{4})\)`)
	citationNarrative        = regexp.MustCompile(`([A-ZÁÉÍÓÚÑ][A-Za-zÁÉÍÓÚÑáéíóúñ]+)\s*\((\d{4})\)`)
	citationNoComma          = regexp.MustCompile(`\(([A-ZÁÉÍÓÚÑ][A-Za-zÁÉÍÓÚÑáéíóúñ]+)\s+(\d{4})\)`)
	citationNarrativeCommas  = regexp.MustCompile(`([A-ZÁÉÍÓÚÑ][A-Za-zÁÉÍÓÚÑáéíóúñ]+),\s*(\d{4}),`)
	citationThreeAuthorsFull = regexp.MustCompile(`\(([A-ZÁÉÍÓÚÑ][^()]+?&[^()]+?),\s*(\d{4})\)`)

	referenceEntryPattern = regexp.MustCompile(`^([A-ZÁÉÍÓÚÑ][A-Za-zÁÉÍÓÚÑáéíóúñ\- ]+?),.*\((\d{4})\)`)
)

// authorYear is a case-normalized (author, year) pair used for the
// citation/reference set reconciliation.
type authorYear struct {
	Author string
	Year   string
}

// citationDoc holds the per-request extractions shared by the checks.
type citationDoc struct {
	text      string
	upperText string
	cited     map[authorYear]bool
	refs      map[authorYear]bool
	hasRefs   bool
}

type citationCheck func(rule rules.Rule, doc *citationDoc) []types.Finding

// CitationsAgent validates the in-text author-year citations and reconciles
// them against the reference list entries.
type CitationsAgent struct {
	lib      *rules.Library
	handlers map[string]citationCheck
}

// NewCitationsAgent creates the in-text citations agent with its rule-id
// handler table.
func NewCitationsAgent(lib *rules.Library) *CitationsAgent {
	a := &CitationsAgent{lib: lib}
	a.handlers = map[string]citationCheck{
		"CUN-IC-001": a.checkCitationsPresent,
		"CUN-IC-002": a.checkMalformedParenthetical,
		"CUN-IC-003": a.checkMalformedNarrative,
		"CUN-IC-004": a.checkOverListedAuthors,
		"CUN-IC-005": a.checkCitationWithoutReference,
		"CUN-IC-006": a.checkReferenceWithoutCitation,
	}
	return a
}

// ID returns the agent identifier.
func (a *CitationsAgent) ID() string { return AgentIDCitations }

// Evaluate runs every known citation check over the raw text.
func (a *CitationsAgent) Evaluate(_ context.Context, text string, lintCtx types.Context, _ types.Profile) ([]types.Finding, error) {
	doc := newCitationDoc(text)

	var findings []types.Finding
	for _, rule := range a.lib.RulesFor(a.ID(), lintCtx.ProfileVariant) {
		handler, ok := a.handlers[rule.RuleID]
		if !ok {
			continue
		}
		findings = append(findings, handler(rule, doc)...)
	}
	return findings, nil
}

func newCitationDoc(text string) *citationDoc {
	doc := &citationDoc{
		text:      text,
		upperText: strings.ToUpper(text),
		cited:     extractCitedPairs(text),
	}
	doc.hasRefs = strings.Contains(doc.upperText, "REFERENCIAS") || strings.Contains(doc.upperText, "BIBLIOGRAFÍA")
	doc.refs = extractReferencePairs(extractReferenceEntries(extractReferencesBlock(text)))
	return doc
}

// checkCitationsPresent flags a reference section with zero author-year
// citations anywhere in the text.
func (a *CitationsAgent) checkCitationsPresent(rule rules.Rule, doc *citationDoc) []types.Finding {
	if !doc.hasRefs {
		return nil
	}
	if citationParenthetical.MatchString(doc.text) || citationNarrative.MatchString(doc.text) {
		return nil
	}
	f := ruleFinding(a.ID(), rule, "NO_CITATIONS", citationsCategory,
		"A reference section was detected, but no author-year citations were found in the text.",
		"REFERENCIAS ...", nil)
	return []types.Finding{f}
}

// checkMalformedParenthetical flags parenthetical citations missing the comma,
// e.g. "(Author 2020)".
func (a *CitationsAgent) checkMalformedParenthetical(rule rules.Rule, doc *citationDoc) []types.Finding {
	var findings []types.Finding
	for _, m := range citationNoComma.FindAllStringIndex(doc.text, -1) {
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("NO_COMMA:%d", m[0]), citationsCategory,
			"Parenthetical citation without a comma between surname and year.",
			doc.text[m[0]:m[1]], offsetLocation(m[0], m[1])))
	}
	return findings
}

// checkMalformedNarrative flags narrative citations written as
// "Author, 2020," instead of "Author (2020)".
func (a *CitationsAgent) checkMalformedNarrative(rule rules.Rule, doc *citationDoc) []types.Finding {
	var findings []types.Finding
	for _, m := range citationNarrativeCommas.FindAllStringIndex(doc.text, -1) {
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("NARRATIVE_COMMAS:%d", m[0]), citationsCategory,
			"Narrative citation with the year set off by commas instead of parentheses.",
			doc.text[m[0]:m[1]], offsetLocation(m[0], m[1])))
	}
	return findings
}

// checkOverListedAuthors flags citations spelling out three or more authors
// joined by "&" instead of using "et al.".
func (a *CitationsAgent) checkOverListedAuthors(rule rules.Rule, doc *citationDoc) []types.Finding {
	var findings []types.Finding
	for _, m := range citationThreeAuthorsFull.FindAllStringIndex(doc.text, -1) {
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("THREE_AUTHORS:%d", m[0]), citationsCategory,
			"Citation listing three or more authors in full; APA 7 recommends the first author followed by 'et al.'.",
			doc.text[m[0]:m[1]], offsetLocation(m[0], m[1])))
	}
	return findings
}

// checkCitationWithoutReference flags every cited (author, year) pair that has
// no matching entry in the reference list.
func (a *CitationsAgent) checkCitationWithoutReference(rule rules.Rule, doc *citationDoc) []types.Finding {
	if !doc.hasRefs {
		return nil
	}

	var findings []types.Finding
	for _, pair := range sortedPairDifference(doc.cited, doc.refs) {
		author := titleCase(pair.Author)
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("MISSING_REF:%s:%s", pair.Author, pair.Year), citationsCategory,
			fmt.Sprintf("A citation to %s (%s) was found that has no corresponding entry in the reference list.", author, pair.Year),
			fmt.Sprintf("(%s, %s)", author, pair.Year), nil))
	}
	return findings
}

// checkReferenceWithoutCitation flags every reference entry that is never
// cited in the text.
func (a *CitationsAgent) checkReferenceWithoutCitation(rule rules.Rule, doc *citationDoc) []types.Finding {
	if !doc.hasRefs {
		return nil
	}

	var findings []types.Finding
	for _, pair := range sortedPairDifference(doc.refs, doc.cited) {
		author := titleCase(pair.Author)
		findings = append(findings, ruleFinding(a.ID(), rule,
			fmt.Sprintf("UNUSED_REF:%s:%s", pair.Author, pair.Year), "references",
			fmt.Sprintf("The work by %s (%s) appears in the reference list but is never cited in the text.", author, pair.Year),
			fmt.Sprintf("%s (%s)", author, pair.Year), nil))
	}
	return findings
}

// extractReferencesBlock returns the text starting at the first
// "REFERENCIAS" or "BIBLIOGRAFÍA" occurrence, or "" if absent.
func extractReferencesBlock(text string) string {
	upper := strings.ToUpper(text)
	idx := strings.Index(upper, "REFERENCIAS")
	if idx == -1 {
		idx = strings.Index(upper, "BIBLIOGRAFÍA")
	}
	if idx == -1 {
		return ""
	}
	return text[idx:]
}

// extractReferenceEntries splits the reference block into one entry per
// non-blank line, dropping the header line itself.
func extractReferenceEntries(block string) []string {
	var entries []string
	for _, line := range strings.Split(block, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		upper := strings.ToUpper(trimmed)
		if strings.HasPrefix(upper, "REFERENCIAS") || strings.HasPrefix(upper, "BIBLIOGRAFÍA") {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}

// extractCitedPairs collects the (author, year) pairs of every parenthetical
// and narrative citation, author upper-cased for set comparison.
func extractCitedPairs(text string) map[authorYear]bool {
	pairs := make(map[authorYear]bool)
	for _, re := range []*regexp.Regexp{citationParenthetical, citationNarrative} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			pairs[authorYear{
				Author: strings.ToUpper(strings.TrimSpace(m[1])),
				Year:   strings.TrimSpace(m[2]),
			}] = true
		}
	}
	return pairs
}

// extractReferencePairs recognizes the (author, year) pair of each reference
// entry shaped like "Surname, ... (YYYY)".
func extractReferencePairs(entries []string) map[authorYear]bool {
	pairs := make(map[authorYear]bool)
	for _, entry := range entries {
		m := referenceEntryPattern.FindStringSubmatch(entry)
		if m == nil {
			continue
		}
		pairs[authorYear{
			Author: strings.ToUpper(strings.TrimSpace(m[1])),
			Year:   strings.TrimSpace(m[2]),
		}] = true
	}
	return pairs
}

// sortedPairDifference returns the pairs in a that are not in b, sorted for
// deterministic output.
func sortedPairDifference(a, b map[authorYear]bool) []authorYear {
	var diff []authorYear
	for pair := range a {
		if !b[pair] {
			diff = append(diff, pair)
		}
	}
	sort.Slice(diff, func(i, j int) bool {
		if diff[i].Author != diff[j].Author {
			return diff[i].Author < diff[j].Author
		}
		return diff[i].Year < diff[j].Year
	})
	return diff
}

// titleCase renders an upper-cased author name for display, e.g.
// "DE LA CRUZ" -> "De La Cruz".
func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
