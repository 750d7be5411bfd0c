package session

import (
	"regexp"
	"strings"
)

var (
	bashFenceRe    = regexp.MustCompile("(?s)```bash\\s*(.*?)\\s*```")
	genericFenceRe = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

var explanationPrefixes = []string{
	"here", "this", "the", "you can", "to ", "use ", "note",
	"explanation", "command", "it ", "that ", "these", "above",
	"below", "first", "then", "finally", "also", "remember",
}

var commandPrefixes = []string{
	"$", "sudo ", "./", "apt ", "apt-get ", "git ", "docker ",
	"kubectl ", "find ", "grep ", "ls", "cat ", "cd ", "mkdir ",
	"rm ", "cp ", "mv ", "df", "du ", "ps", "tar ", "curl ",
	"wget ", "chmod ", "chown ", "systemctl ", "ssh ",
}

var commandIndicators = []string{" | ", ";", " > ", " < ", " && ", " || "}

// ExtractCommand pulls the most likely shell command out of a model
// response. Fenced ```bash blocks win, then generic fences, then a
// line-by-line scan that skips prose. Falls back to the trimmed
// response when nothing better is found.
func ExtractCommand(response string) string {
	if m := bashFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := genericFenceRe.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}

	lines := strings.Split(response, "\n")
	var commandLines []string
	var candidateLines []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if !looksLikeExplanation(line) {
			candidateLines = append(candidateLines, line)
		}
		// Strong indicators override the explanation heuristics, a
		// pipeline inside a prose-prefixed line is still the command.
		if looksLikeCommand(line) {
			commandLines = append(commandLines, stripPrompt(line))
		}
	}

	if len(commandLines) > 0 {
		return commandLines[0]
	}
	if len(candidateLines) > 0 {
		return stripPrompt(candidateLines[0])
	}
	for _, raw := range lines {
		if line := strings.TrimSpace(raw); line != "" {
			return line
		}
	}
	return strings.TrimSpace(response)
}

// stripPrompt drops a leading shell prompt marker.
func stripPrompt(line string) string {
	return strings.TrimSpace(strings.TrimPrefix(line, "$"))
}

func looksLikeExplanation(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range explanationPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	if strings.HasPrefix(line, "#") {
		return true
	}
	// Very long lines with no shell operators read as prose.
	if len(line) > 120 && !strings.Contains(line, "&&") && !strings.Contains(line, "||") {
		return true
	}
	punctuation := strings.Count(line, ".") + strings.Count(line, ",")
	if punctuation > 2 && !strings.Contains(lower, "find") && !strings.Contains(lower, "grep") {
		return true
	}
	return false
}

func looksLikeCommand(line string) bool {
	for _, indicator := range commandIndicators {
		if strings.Contains(line, indicator) {
			return true
		}
	}
	for _, prefix := range commandPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
