// Transposition cache for the main search

package engine

import (
	dragon "github.com/dylhunn/dragontoothmg"
)

// The eval for a TT entry can be exact, a lower bound, or an upper bound
type TTEvalT uint8

const (
	TTEvalExact      TTEvalT = iota
	TTEvalLowerBound         // from beta cut-off
	TTEvalUpperBound         // from alpha cut-off
)

func (t TTEvalT) String() string {
	switch t {
	case TTEvalLowerBound:
		return "lower"
	case TTEvalUpperBound:
		return "upper"
	}
	return "exact"
}

type TTEntryT struct {
	Eval      EvalCp
	BestMove  dragon.Move
	DepthToGo int
	EvalType  TTEvalT
}

// TranspositionCache maps position fingerprints to search results.
// Entries are never replaced by depth preference: a Put always overwrites.
type TranspositionCache struct {
	entries lifetimeCache[TTEntryT]
}

func NewTranspositionCache() *TranspositionCache {
	return &TranspositionCache{entries: newLifetimeCache[TTEntryT]()}
}

// Get returns the entry for the fingerprint if it was searched at least depthToGo deep.
func (tc *TranspositionCache) Get(fingerprint string, depthToGo int) (TTEntryT, bool) {
	entry, ok := tc.entries.get(fingerprint)
	if !ok || entry.DepthToGo < depthToGo {
		return TTEntryT{}, false
	}
	return entry, true
}

func (tc *TranspositionCache) Put(fingerprint string, eval EvalCp, bestMove dragon.Move, depthToGo int, evalType TTEvalT) {
	tc.entries.put(fingerprint, TTEntryT{Eval: eval, BestMove: bestMove, DepthToGo: depthToGo, EvalType: evalType}, depthToGo)
}

// Age is called once per top-level search; entries run out after depth+1 calls.
func (tc *TranspositionCache) Age() { tc.entries.age() }

func (tc *TranspositionCache) Len() int { return tc.entries.len() }

func (tc *TranspositionCache) Clear() { tc.entries.clear() }

// Remaining lifetime of an entry, for diagnostics.
func (tc *TranspositionCache) Lifetime(fingerprint string) (int, bool) {
	return tc.entries.lifetime(fingerprint)
}

// Whether the entry settles a node searched with the closed window [alpha, beta].
func (entry *TTEntryT) isUsable(alpha EvalCp, beta EvalCp) bool {
	switch entry.EvalType {
	case TTEvalLowerBound:
		return entry.Eval > beta
	case TTEvalUpperBound:
		return entry.Eval < alpha
	}
	return true
}

// Classify a node result against the window it was searched with.
func evalType(eval EvalCp, alpha EvalCp, beta EvalCp) TTEvalT {
	if eval > beta {
		return TTEvalLowerBound
	}
	if eval < alpha {
		return TTEvalUpperBound
	}
	return TTEvalExact
}
