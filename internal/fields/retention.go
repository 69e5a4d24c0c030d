package fields

import (
	"log"
	"strings"

	"adpnorm/internal/domain"
)

// RetentionMode decides which generated fields survive by key-class tier.
type RetentionMode string

const (
	RetainAll    RetentionMode = "keepall"
	RetainHigh   RetentionMode = "keephigh"
	RetainMedium RetentionMode = "keepmedium"
	DeleteAll    RetentionMode = "deleteall"
)

var retentionModes = map[string]RetentionMode{
	string(RetainAll):    RetainAll,
	string(RetainHigh):   RetainHigh,
	string(RetainMedium): RetainMedium,
	string(DeleteAll):    DeleteAll,
}

// ParseRetentionMode reads a mode name, ignoring case and surrounding space.
// Unknown names fall back to RetainAll.
func ParseRetentionMode(s string) RetentionMode {
	name := strings.ToLower(strings.TrimSpace(s))
	if mode, ok := retentionModes[name]; ok {
		return mode
	}
	if name != "" {
		log.Printf("fields.ParseRetentionMode: unknown mode %q, using %s", s, RetainAll)
	}
	return RetainAll
}

// Prune deletes the page's generated fields that mode does not retain and
// returns how many were removed. Fields not created from an analysis result
// are left alone, as are fields without a tier variable.
func Prune(page *Field, mode RetentionMode) int {
	if mode == RetainAll {
		return 0
	}
	removed := 0
	for i := len(page.Children) - 1; i >= 0; i-- {
		f := page.Children[i]
		if f.Vars.Value(VarEntityType) != domain.FieldEntityType {
			continue
		}
		if !drop(f, mode) {
			continue
		}
		log.Printf("fields.Prune: %s removes %s (key %s, value %s)", mode, f.Name, f.Vars.Value(VarKeyPosition), f.Vars.Value(VarPosition))
		page.DeleteChild(i)
		removed++
	}
	return removed
}

func drop(f *Field, mode RetentionMode) bool {
	if mode == DeleteAll {
		return true
	}
	tier, ok := f.Vars.Get(VarKeyClassConfidence)
	if !ok {
		return false
	}
	tier = strings.ToLower(strings.TrimSpace(tier))
	switch mode {
	case RetainHigh:
		return tier != "high"
	case RetainMedium:
		return tier == "low"
	}
	return false
}
