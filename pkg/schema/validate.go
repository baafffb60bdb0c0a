package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Validate is the strict stage: parse raw as JSON and check every declared
// field. On success it returns the typed object and its canonical
// re-serialization (declared fields only, keys sorted).
func (d *Descriptor) Validate(raw string) (map[string]any, string, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, "", fmt.Errorf("not a JSON object: %w", err)
	}
	return d.check(decoded)
}

// check validates an already-decoded object against the descriptor.
func (d *Descriptor) check(decoded map[string]any) (map[string]any, string, error) {
	result := make(map[string]any, len(d.Fields))

	for _, name := range d.FieldNames() {
		field := d.Fields[name]
		value, present := decoded[name]
		if !present {
			if field.Optional {
				continue
			}
			return nil, "", fmt.Errorf("field %q: required but absent", name)
		}
		checked, err := checkField(name, &field, value)
		if err != nil {
			return nil, "", err
		}
		result[name] = checked
	}

	canonical, err := json.Marshal(result)
	if err != nil {
		return nil, "", fmt.Errorf("canonical serialization failed: %w", err)
	}
	return result, string(canonical), nil
}

var (
	jsonObjectPattern = regexp.MustCompile(`\{[^{}]*\}`)
	numberPattern     = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	boolPattern       = regexp.MustCompile(`(?i)\b(true|false|yes|no)\b`)
)

// Repair is the salvage stage, run only after Validate failed. It never makes
// a provider round trip: first it looks for a JSON object embedded in prose,
// then it scrapes field values out of free text. An error means the raw
// content could not be coerced and must be left untouched.
func (d *Descriptor) Repair(raw string) (map[string]any, string, error) {
	// An embedded JSON object beats text scraping.
	if match := jsonObjectPattern.FindString(raw); match != "" {
		var decoded map[string]any
		if err := json.Unmarshal([]byte(match), &decoded); err == nil {
			if result, canonical, err := d.check(decoded); err == nil {
				return result, canonical, nil
			}
		}
	}

	scraped := make(map[string]any, len(d.Fields))
	for _, name := range d.FieldNames() {
		field := d.Fields[name]
		value, found := scrapeField(raw, name, &field)
		if found {
			scraped[name] = value
		}
	}

	result, canonical, err := d.check(scraped)
	if err != nil {
		return nil, "", fmt.Errorf("repair failed for %s: %w", d.Name, err)
	}
	return result, canonical, nil
}

// scrapeField extracts one field's value from free text.
func scrapeField(raw, name string, field *Field) (any, bool) {
	switch field.Type {
	case TypeString:
		// Enum fields match any allowed token anywhere in the text.
		if len(field.Enum) > 0 {
			lower := strings.ToLower(raw)
			for _, allowed := range field.Enum {
				if strings.Contains(lower, strings.ToLower(allowed)) {
					return allowed, true
				}
			}
			return nil, false
		}
		// Free strings only repair from an explicit "name: value" marker.
		if value := afterMarker(raw, name); value != "" {
			return value, true
		}
		return nil, false

	case TypeNumber, TypeInteger:
		// Prefer a number following the field name, else the first in-range
		// number anywhere in the text.
		candidates := numberPattern.FindAllString(raw, -1)
		if marked := afterMarker(raw, name); marked != "" {
			if first := numberPattern.FindString(marked); first != "" {
				candidates = append([]string{first}, candidates...)
			}
		}
		for _, cand := range candidates {
			f, err := strconv.ParseFloat(cand, 64)
			if err != nil {
				continue
			}
			if field.Minimum != nil && f < *field.Minimum {
				continue
			}
			if field.Maximum != nil && f > *field.Maximum {
				continue
			}
			if field.Type == TypeInteger && f != float64(int64(f)) {
				continue
			}
			return f, true
		}
		return nil, false

	case TypeBoolean:
		if match := boolPattern.FindString(raw); match != "" {
			lower := strings.ToLower(match)
			return lower == "true" || lower == "yes", true
		}
		return nil, false

	default:
		return nil, false
	}
}

// afterMarker returns the text following "name:" or "name=", if present.
func afterMarker(raw, name string) string {
	lower := strings.ToLower(raw)
	idx := strings.Index(lower, strings.ToLower(name))
	if idx == -1 {
		return ""
	}
	rest := raw[idx+len(name):]
	rest = strings.TrimLeft(rest, `"' `)
	if len(rest) == 0 || (rest[0] != ':' && rest[0] != '=') {
		return ""
	}
	rest = strings.TrimLeft(rest[1:], `"' `)
	if end := strings.IndexAny(rest, ",\n\"'}"); end != -1 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// Normalize re-serializes raw in canonical JSON form when it parses. It is
// the best-effort path for requests without a schema; the second return is
// false when raw is not valid JSON and should be left as-is.
func Normalize(raw string) (string, bool) {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw, false
	}
	canonical, err := json.Marshal(decoded)
	if err != nil {
		return raw, false
	}
	return string(canonical), true
}
