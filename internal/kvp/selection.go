package kvp

import (
	"log"
	"strings"
)

// SelectionMode decides which extracted KVPs survive.
type SelectionMode string

const (
	KeepAll                    SelectionMode = "keepall"
	KeepAllWithKeyClass        SelectionMode = "keepallwithkeyclass"
	KeepSingleBest             SelectionMode = "keepsinglebest"
	KeepSingleBestWithKeyClass SelectionMode = "keepsinglebestwithkeyclass"
)

var selectionModes = map[string]SelectionMode{
	string(KeepAll):                    KeepAll,
	string(KeepAllWithKeyClass):        KeepAllWithKeyClass,
	string(KeepSingleBest):             KeepSingleBest,
	string(KeepSingleBestWithKeyClass): KeepSingleBestWithKeyClass,
}

// ParseSelectionMode reads a mode name, ignoring case and surrounding space.
// Unknown names fall back to KeepAll.
func ParseSelectionMode(s string) SelectionMode {
	name := strings.ToLower(strings.TrimSpace(s))
	if mode, ok := selectionModes[name]; ok {
		return mode
	}
	if name != "" {
		log.Printf("kvp.ParseSelectionMode: unknown mode %q, using %s", s, KeepAll)
	}
	return KeepAll
}

// Select reports whether p is kept under mode.
//
// KeepSingleBest keeps a classified pair missing from the rankings, while
// KeepSingleBestWithKeyClass drops it.
func Select(mode SelectionMode, p *Pair, rankings RankingIndex) bool {
	switch mode {
	case KeepAllWithKeyClass:
		return p.KeyClass != ""
	case KeepSingleBestWithKeyClass:
		if p.KeyClass == "" {
			return false
		}
		return rankings.Find(p.KeyClass, p.KeyClassID, p.KVPID) == 0
	case KeepSingleBest:
		if p.KeyClass == "" {
			return true
		}
		return rankings.Find(p.KeyClass, p.KeyClassID, p.KVPID) <= 0
	default:
		return true
	}
}
