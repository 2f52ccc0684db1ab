package logging

import "strings"

// Level is the ordinal severity of a log event. Higher values are more
// severe; sinks emit events at or above their configured minimum.
type Level int

const (
	LevelNone Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
	LevelSystem
)

var levelLabels = [...]string{
	LevelNone:     "NONE",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarn:     "WARN",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
	LevelSystem:   "SYSTEM",
}

// ANSI color codes per level for colorized console output.
var levelColors = [...]string{
	LevelNone:     "\x1b[0m",
	LevelDebug:    "\x1b[34m",
	LevelInfo:     "\x1b[32m",
	LevelWarn:     "\x1b[33m",
	LevelError:    "\x1b[31m",
	LevelCritical: "\x1b[35m",
	LevelSystem:   "\x1b[36m",
}

const colorReset = "\x1b[0m"

// Label returns the fixed textual label for the level.
func (l Level) Label() string {
	if l < LevelNone || int(l) >= len(levelLabels) {
		return "NONE"
	}
	return levelLabels[l]
}

func (l Level) color() string {
	if l < LevelNone || int(l) >= len(levelColors) {
		return colorReset
	}
	return levelColors[l]
}

// ParseLevel maps a case-insensitive level name to a Level. Unknown names
// fall back to LevelInfo.
func ParseLevel(name string) Level {
	for lvl, label := range levelLabels {
		if strings.EqualFold(name, label) {
			return Level(lvl)
		}
	}
	return LevelInfo
}
