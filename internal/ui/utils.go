package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/forest-guardian/lakewatch/internal/config"
)

// Colors for consistent UI
const (
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorReset  = "\033[0m"
)

var (
	stdin = bufio.NewReader(os.Stdin)
	// stdinClosed is set once stdin reached EOF with nothing left to read.
	stdinClosed bool
)

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	fmt.Printf("%s\nWarning:%s\n", ColorYellow, ColorReset)
	fmt.Printf("%s%s%s\n", ColorYellow, message, ColorReset)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	fmt.Printf("\n%sError: %s%s\n", ColorRed, message, ColorReset)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	fmt.Printf("\n%s%s%s\n", ColorGreen, message, ColorReset)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	fmt.Printf("%s%s%s", ColorBlue, message, ColorReset)
}

// ReadString reads a string from stdin with trimming
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, err := stdin.ReadString('\n')
	if err == io.EOF && input == "" {
		stdinClosed = true
	}
	return strings.TrimSpace(input)
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadYesNo defaults to no.
func ReadYesNo(prompt string) bool {
	switch strings.ToLower(ReadString(prompt + " [y/N]: ")) {
	case "y", "yes":
		return true
	}
	return false
}

// ParseSections accepts section names or their 1-based menu numbers separated
// by commas. Empty input selects every section.
func ParseSections(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}
	var sections []string
	seen := map[string]bool{}
	for _, part := range strings.Split(input, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if n, err := strconv.Atoi(part); err == nil {
			if n < 1 || n > len(config.AllSections) {
				return nil, fmt.Errorf("section number must be between 1 and %d", len(config.AllSections))
			}
			part = config.AllSections[n-1]
		}
		if !isSection(part) {
			return nil, fmt.Errorf("unknown section %q, expected one of %s", part, strings.Join(config.AllSections, ", "))
		}
		if !seen[part] {
			seen[part] = true
			sections = append(sections, part)
		}
	}
	return sections, nil
}

func isSection(name string) bool {
	for _, s := range config.AllSections {
		if s == name {
			return true
		}
	}
	return false
}

// ReadSections lists the sections and reads a selection.
func ReadSections() ([]string, error) {
	fmt.Printf("%s\nAvailable sections:%s\n", ColorGreen, ColorReset)
	for i, s := range config.AllSections {
		fmt.Printf("%s%d. %s%s\n", ColorGreen, i+1, s, ColorReset)
	}
	return ParseSections(ReadString("Enter the sections to run (comma separated, empty for all): "))
}
