package input

import "strings"

// ParseResult holds the action word and any trailing arguments of a text line.
type ParseResult struct {
	// Action is the first word of the input, lowercased.
	Action string
	Args   []string
}

// Parse splits a text line into an action word and arguments.
//
// Postcondition: If line is blank, Action is empty.
func Parse(line string) ParseResult {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ParseResult{}
	}
	res := ParseResult{Action: strings.ToLower(fields[0])}
	if len(fields) > 1 {
		res.Args = fields[1:]
	}
	return res
}

// Target receives firing inputs. *combat.Controller implements it.
type Target interface {
	FireStarted()
	FireTriggered()
	FireReleased()
	Reload() bool
	ToggleMode()
}

// Dispatch routes k to t.
func Dispatch(t Target, k Kind) {
	switch k {
	case FireStarted:
		t.FireStarted()
	case FireTriggered:
		t.FireTriggered()
	case FireReleased:
		t.FireReleased()
	case Reload:
		t.Reload()
	case ToggleMode:
		t.ToggleMode()
	}
}
