package command

import "strings"

// Kind identifies a recognised command.
type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindRooms
	KindReserves
	KindAdd
	KindRemove
	KindReserve
	KindCancel
)

var kindNames = map[Kind]string{
	KindNone:     "none",
	KindHelp:     "help",
	KindRooms:    "rooms",
	KindReserves: "reserves",
	KindAdd:      "add",
	KindRemove:   "remove",
	KindReserve:  "reserve",
	KindCancel:   "cancel",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "none"
}

// grammar maps each keyword to its kind and the token count including the keyword.
var grammar = map[string]struct {
	kind  Kind
	arity int
}{
	"help":     {KindHelp, 1},
	"rooms":    {KindRooms, 1},
	"reserves": {KindReserves, 1},
	"add":      {KindAdd, 2},
	"remove":   {KindRemove, 2},
	"reserve":  {KindReserve, 5},
	"cancel":   {KindCancel, 4},
}

// Command is a parsed command line. Args excludes the keyword.
type Command struct {
	Kind Kind
	Args []string
}

// Parse tokenizes line on whitespace and matches the keyword and arity.
// Anything unrecognised parses as KindNone.
func Parse(line string) Command {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return Command{Kind: KindNone}
	}
	rule, ok := grammar[tokens[0]]
	if !ok || len(tokens) != rule.arity {
		return Command{Kind: KindNone}
	}
	return Command{Kind: rule.kind, Args: tokens[1:]}
}
