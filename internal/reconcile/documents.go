package reconcile

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/policy-sync/internal/model"
	"github.com/Veraticus/policy-sync/internal/normalize"
	"github.com/Veraticus/policy-sync/internal/resolve"
)

// Document is a file to attach to the policy it names.
type Document struct {
	// Text extracts the document's text. It is only called when the file
	// name matches no policy, and may be nil.
	Text func() (string, error)
	Name string
	Path string
}

// AttachDocuments links each document to a policy whose number appears in
// the file name or, failing that, in the document text. Policies are tried
// active first, in fetch order, and the first hit wins.
func (e *Engine) AttachDocuments(ctx context.Context, docs []Document, ic ImportContext) (*Outcome, error) {
	if err := ic.validate(); err != nil {
		return nil, err
	}

	out := newOutcome("documents", e.opts.DiagnosticsLimit, e.opts.DryRun)
	r, err := e.loadRefs(ctx, ic, false)
	if err != nil {
		return nil, err
	}

	e.log.Info("Starting document attachment", "documents", len(docs), "operator", ic.OperatorID)

	candidates := orderedPolicies(r.policies)
	decisions := make([]Decision, 0, len(docs))
	for i, doc := range docs {
		d := e.decideDocument(candidates, doc, i+1, out)
		e.tally(out, d)
		if d.Action == ActionUpdate {
			decisions = append(decisions, d)
		}
		if e.opts.Progress != nil {
			e.opts.Progress(i+1, len(docs))
		}
	}

	execErr := e.execute(ctx, r, decisions, out)
	e.finish("documents", out)
	return out, execErr
}

func (e *Engine) decideDocument(candidates []*model.Policy, doc Document, line int, out *Outcome) Decision {
	policy := matchTokens(candidates, tokenKeys(strings.TrimSuffix(doc.Name, filepath.Ext(doc.Name))), nil)
	if policy == nil && doc.Text != nil {
		text, err := doc.Text()
		if err != nil {
			out.addWarning(line, fmt.Sprintf("%s: text not readable: %v", doc.Name, err))
		} else {
			policy = matchTokens(candidates, tokenKeys(text), distinctiveInText)
		}
	}
	if policy == nil {
		return fail(line, &resolve.ResolutionError{Kind: resolve.KindPolicy, Input: doc.Name, Reason: "matches no policy"})
	}

	if policy.DocumentPath == doc.Path {
		return skip(line, SkipDuplicate)
	}
	if policy.DocumentPath != "" {
		out.addWarning(line, fmt.Sprintf("%s replaces the document of policy %s", doc.Name, policy.PolicyNumber))
	}

	updated := *policy
	updated.DocumentPath = doc.Path
	*policy = updated
	return Decision{Line: line, Action: ActionUpdate, Policy: &updated}
}

// orderedPolicies lists the policies in scope, active before archived, each
// group in fetch order.
func orderedPolicies(idx *resolve.Policies) []*model.Policy {
	all := idx.All()
	out := make([]*model.Policy, 0, len(all))
	for _, active := range []bool{true, false} {
		for _, p := range all {
			if p.IsActive() == active && idx.InScope(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// Document text is full of page numbers, dates and amounts, so a policy
// number only counts there when it could not be one of those.
const (
	minTextKeyLen     = 3
	minTextNumericLen = 6
)

// matchTokens returns the first candidate whose number is among tokens.
// usable, when set, rejects keys too generic to trust.
func matchTokens(candidates []*model.Policy, tokens map[string]bool, usable func(string) bool) *model.Policy {
	if len(tokens) == 0 {
		return nil
	}
	for _, p := range candidates {
		key := normalize.Key(p.PolicyNumber)
		if key == "" || !tokens[key] {
			continue
		}
		if usable != nil && !usable(key) {
			continue
		}
		return p
	}
	return nil
}

func distinctiveInText(key string) bool {
	if utf8.RuneCountInString(key) < minTextKeyLen {
		return false
	}
	for _, r := range key {
		if !unicode.IsDigit(r) {
			return true
		}
	}
	return len(key) >= minTextNumericLen
}

// tokenKeys splits text on whitespace and on punctuation that never occurs
// inside a policy number, keeping '-', '/' and '.' so that "P-100" survives.
func tokenKeys(text string) map[string]bool {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		return r != '-' && r != '/' && r != '.'
	})
	keys := make(map[string]bool, len(fields))
	for _, f := range fields {
		if k := normalize.Key(strings.Trim(f, "-/.")); k != "" {
			keys[k] = true
		}
	}
	return keys
}
