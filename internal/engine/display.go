package engine

import "github.com/studiowebux/restui/internal/types"

// displayRule is one row of the display decision table
type displayRule struct {
	name  string
	match func(s *types.Section) bool
	pick  func(s *types.Section) types.Display
}

// displayRules are evaluated top to bottom; the first match wins
var displayRules = []displayRule{
	{
		name:  "explicit",
		match: func(s *types.Section) bool { return s.Display.IsSet() },
		pick:  func(s *types.Section) types.Display { return s.Display },
	},
	{
		name:  "hidden",
		match: func(s *types.Section) bool { return s.Hidden },
		pick:  func(*types.Section) types.Display { return types.Display{Kind: types.DisplayNone} },
	},
	{
		name:  "live",
		match: func(s *types.Section) bool { return s.Live != nil },
		pick:  func(*types.Section) types.Display { return types.Display{Kind: types.DisplayNone} },
	},
	{
		name:  "read",
		match: func(s *types.Section) bool { return s.Read != nil },
		pick:  func(*types.Section) types.Display { return types.Display{Kind: types.DisplayAuto, Path: "data"} },
	},
	{
		name:  "fallback",
		match: func(*types.Section) bool { return true },
		pick:  func(*types.Section) types.Display { return types.Display{Kind: types.DisplayNone} },
	},
}

// DecideDisplay returns the display rule for s and the name of the
// decision table row that produced it
func DecideDisplay(s *types.Section) (types.Display, string) {
	for _, rule := range displayRules {
		if rule.match(s) {
			return rule.pick(s), rule.name
		}
	}
	return types.Display{Kind: types.DisplayNone}, "fallback"
}
