package prompt

import (
	"fmt"
	"text/template"

	"go.uber.org/zap"

	"github.com/saathi-ai/saathi-core/internal/domain"
)

// VarKind tells the renderer what textual form a placeholder expects.
type VarKind int

const (
	VarText VarKind = iota
	VarNumber
	VarJSON
	VarList
)

func (k VarKind) String() string {
	switch k {
	case VarText:
		return "text"
	case VarNumber:
		return "number"
	case VarJSON:
		return "json"
	case VarList:
		return "list"
	default:
		return "unknown"
	}
}

// Var declares one placeholder of a template. Required vars with no
// Default fail rendering when unbound.
type Var struct {
	Name     string
	Kind     VarKind
	Required bool
	Default  string
}

// Template is a named, versioned prompt blueprint with a fixed ordered
// set of placeholder variables.
type Template struct {
	Name    string
	Version string
	Vars    []Var

	tmpl *template.Template
}

// Store holds the prompt templates and the fallback-response table.
// Loaded once at startup and immutable afterwards, so concurrent reads
// need no synchronization.
type Store struct {
	templates map[string]*Template
	fallbacks map[domain.Intent]string
	log       *zap.Logger
}

// NewStore parses the built-in templates. A template that fails to
// parse is a programmer error and aborts startup.
func NewStore(log *zap.Logger) (*Store, error) {
	s := &Store{
		templates: make(map[string]*Template),
		fallbacks: make(map[domain.Intent]string, len(fallbackResponses)),
		log:       log,
	}

	for name, def := range builtinTemplates {
		parsed, err := template.New(name).Parse(def.text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		s.templates[name] = &Template{
			Name:    name,
			Version: def.version,
			Vars:    def.vars,
			tmpl:    parsed,
		}
		log.Debug("Prompt template loaded",
			zap.String("template", name),
			zap.String("version", def.version),
		)
	}

	for intent, text := range fallbackResponses {
		s.fallbacks[intent] = text
	}

	return s, nil
}

// Template returns the named template.
func (s *Store) Template(name string) (*Template, bool) {
	t, ok := s.templates[name]
	return t, ok
}

// Fallback returns the canned response for intent, or the unknown entry
// when the intent has no dedicated one.
func (s *Store) Fallback(intent domain.Intent) string {
	if text, ok := s.fallbacks[intent]; ok {
		return text
	}
	return s.fallbacks[domain.IntentUnknown]
}
