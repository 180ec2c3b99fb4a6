// Package template renders the placeholder syntax used by rule action
// configs and workflow action configs.
package template

import (
	"fmt"
	"sort"
	"strings"
)

// Render substitutes {{key}} placeholders in the input with values from
// data. The single-brace form {key} is also accepted; older rules were
// written with it. Placeholders with no matching key are left untouched.
func Render(input string, data map[string]any) string {
	if input == "" || len(data) == 0 {
		return input
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}

	// Longest key first so {contact} never clobbers {contact_name}.
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })

	out := input

	for _, key := range keys {
		value := stringify(data[key])
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}

	return out
}

// RenderAll renders every string value of a config map, leaving non-string
// values untouched.
func RenderAll(config, data map[string]any) map[string]any {
	if config == nil {
		return nil
	}

	out := make(map[string]any, len(config))

	for key, value := range config {
		if s, ok := value.(string); ok {
			out[key] = Render(s, data)
		} else {
			out[key] = value
		}
	}

	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
