package constants

import "strings"

// Command is a recognised whole-message keyword.
type Command string

const (
	CommandNone     Command = ""
	CommandGreeting Command = "GREETING"
	CommandReset    Command = "RESET"
	CommandHelp     Command = "HELP"
)

var (
	greetings     = []string{"hi", "hello", "hey", "namaste", "hola", "sup", "yo"}
	resetKeywords = []string{"reset", "start over", "restart", "new"}
	helpKeywords  = []string{"help", "?"}
)

// SkipKeyword leaves an optional onboarding field unset.
const SkipKeyword = "skip"

// NormalizeCommand lowercases and trims a message for keyword matching.
func NormalizeCommand(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// MatchCommand classifies the whole message. Partial matches ("hi there") are not commands.
func MatchCommand(text string) Command {
	c := NormalizeCommand(text)
	if c == "" {
		return CommandNone
	}
	switch {
	case contains(greetings, c):
		return CommandGreeting
	case contains(resetKeywords, c):
		return CommandReset
	case contains(helpKeywords, c):
		return CommandHelp
	}
	return CommandNone
}

// IsSkip reports whether text is the onboarding skip sentinel.
func IsSkip(text string) bool {
	return NormalizeCommand(text) == SkipKeyword
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
