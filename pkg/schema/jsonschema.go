package schema

// JSONSchema renders the descriptor as a draft-07-style JSON Schema object,
// the shape provider-native structured output modes accept.
func (d *Descriptor) JSONSchema() map[string]any {
	properties := make(map[string]any, len(d.Fields))
	var required []string

	for _, name := range d.FieldNames() {
		field := d.Fields[name]
		prop := map[string]any{"type": string(field.Type)}
		if len(field.Enum) > 0 {
			enum := make([]any, len(field.Enum))
			for i, v := range field.Enum {
				enum[i] = v
			}
			prop["enum"] = enum
		}
		if field.Minimum != nil {
			prop["minimum"] = *field.Minimum
		}
		if field.Maximum != nil {
			prop["maximum"] = *field.Maximum
		}
		properties[name] = prop
		if !field.Optional {
			required = append(required, name)
		}
	}

	result := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		result["required"] = required
	}
	return result
}
