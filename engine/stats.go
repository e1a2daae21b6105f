package engine

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

type SearchStatsT struct {
	Nodes           uint64 // #nodes visited
	Leafs           uint64 // #depth-zero nodes evaluated statically
	Mates           uint64 // #true terminal nodes
	NonLeafs        uint64 // #non-leaf nodes
	CutNodes        uint64 // #nodes that pruned their remaining children
	MateCuts        uint64 // #nodes that stopped on finding a mate for the side to move
	TTHits          uint64 // #nodes with a usable TT entry
	TTMisses        uint64 // #nodes probing the TT without a usable entry
	ReSearches      uint64 // #PVS zero-window probes that needed a full window search
	AspirationFails uint64 // #aspiration windows that failed and were widened
	MaxDepth        int    // deepest iteration completed
}

// Percentage of n over total, 0 when total is 0
func perC(n uint64, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

// Dump writes the stats as UCI info strings.
func (s *SearchStatsT) Dump(w io.Writer) {
	fmt.Fprintf(w, "info string nodes %d leafs %d (%.2f%%) mates %d non-leafs %d\n",
		s.Nodes, s.Leafs, perC(s.Leafs, s.Nodes), s.Mates, s.NonLeafs)
	fmt.Fprintf(w, "info string cuts %d (%.2f%% of non-leafs) mate-cuts %d\n",
		s.CutNodes, perC(s.CutNodes, s.NonLeafs), s.MateCuts)
	fmt.Fprintf(w, "info string tt-hits %d (%.2f%% of probes) re-searches %d aspiration-fails %d\n",
		s.TTHits, perC(s.TTHits, s.TTHits+s.TTMisses), s.ReSearches, s.AspirationFails)
}

func (s SearchStatsT) MarshalZerologObject(e *zerolog.Event) {
	e.Uint64("nodes", s.Nodes).
		Uint64("leafs", s.Leafs).
		Uint64("mates", s.Mates).
		Uint64("non_leafs", s.NonLeafs).
		Uint64("cuts", s.CutNodes).
		Uint64("mate_cuts", s.MateCuts).
		Uint64("tt_hits", s.TTHits).
		Uint64("re_searches", s.ReSearches).
		Uint64("aspiration_fails", s.AspirationFails)
}
