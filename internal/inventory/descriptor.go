package inventory

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/ini.v1"
)

// Descriptor keys read for every package
const (
	KeyName    = "name"
	KeyVersion = "version"
	KeyProject = "project"
	KeyCore    = "core"
)

// RecordKeys are the descriptor keys BuildRecords needs
var RecordKeys = []string{KeyName, KeyVersion, KeyProject, KeyCore}

// Descriptor is the flat key/value content of a .info file
type Descriptor map[string]string

// Get returns the value of key or an empty string
func (d Descriptor) Get(key string) string {
	return d[key]
}

// DescriptorParser turns a descriptor file into a Descriptor
type DescriptorParser interface {
	Parse(path string, wantedKeys []string) (Descriptor, error)
}

// DescriptorParserFunc adapts a function to DescriptorParser
type DescriptorParserFunc func(path string, wantedKeys []string) (Descriptor, error)

// Parse calls f
func (f DescriptorParserFunc) Parse(path string, wantedKeys []string) (Descriptor, error) {
	return f(path, wantedKeys)
}

// DefaultParser parses descriptors with ParseDescriptor
var DefaultParser DescriptorParser = DescriptorParserFunc(ParseDescriptor)

// ParseDescriptor reads a descriptor file. A strict INI parse is tried first and
// returns every key of the file. When the strict parse fails or yields nothing,
// the tolerant line parser is used and only wantedKeys are kept.
func ParseDescriptor(path string, wantedKeys []string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor %s: %w", path, err)
	}

	if d, err := parseStrict(data); err == nil && len(d) > 0 {
		return d, nil
	}

	return ParseDescriptorLines(data, wantedKeys), nil
}

// parseStrict parses data as INI with raw values. Repeated keys such as
// dependencies[] are joined with commas.
func parseStrict(data []byte) (Descriptor, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment: true,
		AllowShadows:        true,
		KeyValueDelimiters:  "=",
	}, data)
	if err != nil {
		return nil, err
	}

	d := make(Descriptor)
	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			if _, seen := d[key.Name()]; seen {
				continue
			}
			d[key.Name()] = strings.Join(key.ValueWithShadows(), ",")
		}
	}
	return d, nil
}

// ParseDescriptorLines is the tolerant fallback parser. Each line is split on
// the first "=", lines without "=" are skipped, and only keys listed in
// wantedKeys are kept. Keys are trimmed; values are trimmed of whitespace and
// surrounding quotes.
func ParseDescriptorLines(data []byte, wantedKeys []string) Descriptor {
	wanted := make(map[string]bool, len(wantedKeys))
	for _, k := range wantedKeys {
		wanted[k] = true
	}

	d := make(Descriptor)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if !wanted[key] {
			continue
		}
		d[key] = trimValue(value)
	}
	return d
}

func trimValue(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		v = v[1 : len(v)-1]
	}
	return v
}
