package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

// Renderer binds runtime variables into a template. Purely functional:
// no side effects, same inputs always produce the same text.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render checks every declared variable, applies defaults, coerces
// values to their textual form and executes the template. Fails with
// domain.ErrMissingVariable or domain.ErrInvalidVariableType; both
// indicate a caller bug, not a runtime condition.
func (r *Renderer) Render(t *Template, vars map[string]interface{}) (string, error) {
	bound := make(map[string]string, len(t.Vars))

	for _, v := range t.Vars {
		raw, ok := vars[v.Name]
		if !ok || raw == nil {
			if v.Default != "" {
				bound[v.Name] = v.Default
				continue
			}
			if v.Required {
				return "", fmt.Errorf("%w: %s requires %q", domain.ErrMissingVariable, t.Name, v.Name)
			}
			bound[v.Name] = ""
			continue
		}

		text, err := coerce(raw, v.Kind)
		if err != nil {
			return "", fmt.Errorf("%w: %s variable %q: %v", domain.ErrInvalidVariableType, t.Name, v.Name, err)
		}
		bound[v.Name] = text
	}

	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, bound); err != nil {
		return "", fmt.Errorf("%w: %s: %v", domain.ErrInvalidVariableType, t.Name, err)
	}
	return buf.String(), nil
}

func coerce(raw interface{}, kind VarKind) (string, error) {
	switch kind {
	case VarText:
		switch v := raw.(type) {
		case string:
			return v, nil
		case fmt.Stringer:
			return v.String(), nil
		case int, int64, float64, bool:
			return fmt.Sprintf("%v", v), nil
		default:
			return "", fmt.Errorf("cannot bind %T as text", raw)
		}
	case VarNumber:
		switch v := raw.(type) {
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case string:
			if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
				return "", fmt.Errorf("%q is not numeric", v)
			}
			return strings.TrimSpace(v), nil
		default:
			return "", fmt.Errorf("cannot bind %T as number", raw)
		}
	case VarJSON:
		if s, ok := raw.(string); ok {
			if !json.Valid([]byte(s)) {
				return "", fmt.Errorf("string is not valid JSON")
			}
			return s, nil
		}
		b, err := json.Marshal(raw)
		if err != nil {
			return "", fmt.Errorf("cannot marshal %T as JSON", raw)
		}
		return string(b), nil
	case VarList:
		switch v := raw.(type) {
		case []string:
			return strings.Join(v, ", "), nil
		case string:
			return v, nil
		default:
			return "", fmt.Errorf("cannot bind %T as list", raw)
		}
	default:
		return "", fmt.Errorf("unknown variable kind %d", kind)
	}
}
