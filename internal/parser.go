package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ErrUnknownFormat is returned when no importer is registered for a format
var ErrUnknownFormat = errors.New("unknown import format")

// Importer reads subscriptions from a file
type Importer interface {
	Import(path string) ([]Subscription, error)
}

// ImporterFunc is a function that implements Importer
type ImporterFunc func(path string) ([]Subscription, error)

func (f ImporterFunc) Import(path string) ([]Subscription, error) {
	return f(path)
}

// importers is the registry of available importers
var importers = map[string]Importer{}

// extensionFormats maps file extensions to the format used when no prefix is given
var extensionFormats = map[string]string{}

// RegisterImporter registers an importer with the given name and file extensions
func RegisterImporter(name string, imp Importer, extensions ...string) {
	importers[name] = imp
	for _, ext := range extensions {
		extensionFormats[strings.ToLower(ext)] = name
	}
}

// GetImporter returns the importer for the given format
func GetImporter(format string) (Importer, error) {
	imp, ok := importers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", ErrUnknownFormat, format, AvailableFormats())
	}
	return imp, nil
}

// AvailableFormats returns the registered format names, sorted
func AvailableFormats() []string {
	var formats []string
	for name := range importers {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsKnownFormat returns true if the name is a registered importer
func IsKnownFormat(name string) bool {
	_, ok := importers[name]
	return ok
}

// ParseFileArg parses a file argument that may have a format prefix.
// Returns (format, path). If no valid prefix, format is empty.
// Example: "json:subs.json" → ("json", "subs.json")
// Example: "subs.json" → ("", "subs.json")
// Example: "C:\path\file.xlsx" → ("", "C:\path\file.xlsx") // Windows path
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg // Not a known format, treat whole thing as path
}

// FormatForPath picks a format from the file extension
func FormatForPath(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	format, ok := extensionFormats[ext]
	if !ok {
		return "", fmt.Errorf("%w: cannot infer format of %s (use one of %v as prefix)", ErrUnknownFormat, path, AvailableFormats())
	}
	return format, nil
}

// ImportFile imports a file argument ("format:path" or a path with a known extension)
func ImportFile(arg string) ([]Subscription, error) {
	format, path := ParseFileArg(arg)
	if format == "" {
		var err error
		if format, err = FormatForPath(path); err != nil {
			return nil, err
		}
	}
	imp, err := GetImporter(format)
	if err != nil {
		return nil, err
	}
	subs, err := imp.Import(path)
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", path, err)
	}
	return subs, nil
}

// NewSubscriptionID returns a fresh random id
func NewSubscriptionID() string {
	return uuid.NewString()
}

// ensureID gives sub a fresh id when it has none
func ensureID(sub Subscription) Subscription {
	if strings.TrimSpace(sub.ID) == "" {
		sub.ID = NewSubscriptionID()
	}
	return sub
}

// MergeSubscriptions adds imported subscriptions to existing ones. An imported
// subscription replaces the existing one with the same id; others are appended
// in import order. Returns the merged list and the number of replaced entries.
func MergeSubscriptions(existing, imported []Subscription) ([]Subscription, int) {
	merged := make([]Subscription, len(existing), len(existing)+len(imported))
	copy(merged, existing)

	index := make(map[string]int, len(merged))
	for i, sub := range merged {
		index[sub.ID] = i
	}

	replaced := 0
	for _, sub := range imported {
		sub = ensureID(sub)
		if i, ok := index[sub.ID]; ok {
			merged[i] = sub
			replaced++
			continue
		}
		index[sub.ID] = len(merged)
		merged = append(merged, sub)
	}
	return merged, replaced
}

func init() {
	// Register built-in importers
	RegisterImporter("json", ImporterFunc(ImportJSON), ".json")
	RegisterImporter("xlsx", ImporterFunc(ImportXLSX), ".xlsx")
}
