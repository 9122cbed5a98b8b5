package schema

// JSONSchema describes the schema as an OpenAPI-compatible JSON Schema object.
func (s *Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.fields))
	required := make([]string, 0)
	for _, f := range s.fields {
		props[f.Name] = f.JSONSchema()
		if f.Required() {
			required = append(required, f.Name)
		}
	}

	out := map[string]any{
		"title":      s.name,
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	if s.forbidExtra {
		out["additionalProperties"] = false
	}
	return out
}

// JSONSchema describes one field, including constraints and documentation metadata.
func (f *Field) JSONSchema() map[string]any {
	out := map[string]any{}

	switch f.Type {
	case TypeInt:
		out["type"] = "integer"
	case TypeFloat:
		out["type"] = "number"
	case TypeString:
		out["type"] = "string"
	case TypeBool:
		out["type"] = "boolean"
	case TypeTimestamp:
		out["type"], out["format"] = "string", "date-time"
	case TypeTime:
		out["type"], out["format"] = "string", "time"
	case TypeDuration:
		out["type"], out["format"] = "string", "duration"
	case TypeUUID:
		out["type"], out["format"] = "string", "uuid"
	case TypeURL:
		out["type"], out["format"] = "string", "uri"
	case TypeEmail:
		out["type"], out["format"] = "string", "email"
	case TypeFile:
		out["type"], out["format"] = "string", "binary"
	case TypeEnum:
		out["type"], out["enum"] = "string", f.Choices
	case TypeObject:
		out = f.Schema.JSONSchema()
	case TypeList, TypeSet:
		out["type"], out["items"] = "array", f.Elem.JSONSchema()
		if f.Type == TypeSet {
			out["uniqueItems"] = true
		}
	case TypeMap:
		out["type"], out["additionalProperties"] = "object", f.Elem.JSONSchema()
	}

	for _, c := range f.Constraints {
		switch c.Kind {
		case ConstraintGe:
			out["minimum"] = c.Value
		case ConstraintGt:
			out["exclusiveMinimum"] = c.Value
		case ConstraintLe:
			out["maximum"] = c.Value
		case ConstraintLt:
			out["exclusiveMaximum"] = c.Value
		case ConstraintMinLength, ConstraintMaxLength:
			key := "minLength"
			if c.Kind == ConstraintMaxLength {
				key = "maxLength"
			}
			if f.Type == TypeList || f.Type == TypeSet {
				key = map[string]string{"minLength": "minItems", "maxLength": "maxItems"}[key]
			}
			out[key] = c.Value
		case ConstraintPattern:
			out["pattern"] = c.Value
		case ConstraintOneOf:
			out["enum"] = c.Value
		}
	}

	if f.Title != "" {
		out["title"] = f.Title
	}
	if f.Description != "" {
		out["description"] = f.Description
	}
	if len(f.Examples) > 0 {
		out["examples"] = f.Examples
	}
	if f.Deprecated {
		out["deprecated"] = true
	}
	if f.hasDefault {
		out["default"] = plain(f.Default, false)
	}
	if f.Optional {
		out["nullable"] = true
	}
	return out
}
