package domain

import (
	"strings"
	"unicode"
)

// Kind enumerates the commands the bot understands.
type Kind int

const (
	KindNone Kind = iota
	KindHelp
	KindUpdate
	KindList
	KindExempt
	KindAdd
	KindRemoveExempt
	KindTest
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindUpdate:
		return "update"
	case KindList:
		return "list"
	case KindExempt:
		return "exempt"
	case KindAdd:
		return "add"
	case KindRemoveExempt:
		return "removeexempt"
	case KindTest:
		return "test"
	default:
		return "none"
	}
}

// Command is the parsed form of a chat message.
// Arg holds the normalized handle for handle commands and the free text for KindUpdate.
type Command struct {
	Kind Kind
	Arg  string
}

type grammar struct {
	name string
	kind Kind
	// handle commands require a single @handle argument
	handle bool
}

// Order matters: the first grammar whose command token matches wins.
var grammars = []grammar{
	{name: "/help", kind: KindHelp},
	{name: "/update", kind: KindUpdate},
	{name: "/list", kind: KindList},
	{name: "/exempt", kind: KindExempt, handle: true},
	{name: "/add", kind: KindAdd, handle: true},
	{name: "/removeexempt", kind: KindRemoveExempt, handle: true},
	{name: "/test", kind: KindTest},
}

// ParseCommand maps message text to a Command.
//
// botUsername (without "@") lets "/list@MyBot" through and rejects commands
// addressed to other bots. mention is the trigger that turns any message
// containing it, followed by some text, into a submission; empty disables it.
func ParseCommand(text, botUsername, mention string) Command {
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{}
	}

	if strings.HasPrefix(text, "/") {
		token, rest := splitFirst(text)
		name, target, addressed := strings.Cut(token, "@")
		if addressed && !strings.EqualFold(target, botUsername) {
			return Command{}
		}
		name = strings.ToLower(name)
		for _, g := range grammars {
			if g.name != name {
				continue
			}
			if !g.handle {
				// A submission needs some text after the token.
				if g.kind == KindUpdate && rest == "" {
					return Command{}
				}
				return Command{Kind: g.kind, Arg: rest}
			}
			h, err := NormalizeHandle(rest)
			if err != nil {
				return Command{}
			}
			return Command{Kind: g.kind, Arg: h}
		}
	}

	if hasMention(text, mention) {
		return Command{Kind: KindUpdate, Arg: text}
	}
	return Command{}
}

// splitFirst splits text into its first word and the trimmed remainder.
func splitFirst(text string) (string, string) {
	i := strings.IndexFunc(text, unicode.IsSpace)
	if i < 0 {
		return text, ""
	}
	return text[:i], strings.TrimSpace(text[i:])
}

// hasMention reports whether mention occurs as a whole word in text and is
// followed by at least one non-space character.
func hasMention(text, mention string) bool {
	if mention == "" {
		return false
	}
	lt, lm := strings.ToLower(text), strings.ToLower(mention)
	for from := 0; ; {
		i := strings.Index(lt[from:], lm)
		if i < 0 {
			return false
		}
		start := from + i
		end := start + len(lm)
		rest := lt[end:]
		if rest == "" {
			return false
		}
		atBoundary := start == 0 || !isHandleByte(lt[start-1])
		if atBoundary && !isHandleByte(rest[0]) && strings.TrimSpace(rest) != "" {
			return true
		}
		from = end
	}
}

func isHandleByte(b byte) bool {
	return b == '_' || b == '-' || ('a' <= b && b <= 'z') || ('0' <= b && b <= '9')
}
