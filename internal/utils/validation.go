package utils

import (
	"errors"
	"regexp"
	"strings"
)

var validLinePattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

const maxLineLength = 16

// ValidateLineID checks that a line designation looks like one SL would publish.
func ValidateLineID(line string) error {
	if line == "" {
		return errors.New("line cannot be empty")
	}
	if len(line) > maxLineLength {
		return errors.New("line too long (max 16 characters)")
	}
	if !validLinePattern.MatchString(line) {
		return errors.New("line contains invalid characters")
	}
	return nil
}

// ParseLineSelection splits a comma separated list of line designations.
// Blank entries are ignored, duplicates are kept once, and every entry is validated.
func ParseLineSelection(raw string) ([]string, error) {
	seen := make(map[string]bool)
	lines := []string{}
	for _, part := range strings.Split(raw, ",") {
		line := strings.TrimSpace(part)
		if line == "" {
			continue
		}
		if err := ValidateLineID(line); err != nil {
			return nil, err
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		lines = append(lines, line)
	}
	return lines, nil
}
