package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// document is the typed mirror of the base configuration JSON. Validation
// runs against this struct; sections are pointers so an absent section is
// simply skipped (an empty configuration is valid; required project keys
// are enforced at the point of use instead).
type document struct {
	Project        *projectSection     `json:"project"`
	GitHub         *githubSection      `json:"github"`
	LLMSettings    *llmSettingsSection `json:"llm_settings"`
	Templates      *templatesSection   `json:"templates"`
	Automation     *automationSection  `json:"automation"`
	ExecutionOrder []string            `json:"execution_order" validate:"omitempty,dive,min=1"`
	Agents         map[string]any      `json:"agents"`
	LogLevel       string              `json:"log_level" validate:"omitempty,oneof=debug info warning error critical"`
}

type projectSection struct {
	Name         string `json:"name"`
	Context      string `json:"context"`
	TechStack    string `json:"tech_stack"`
	Architecture string `json:"architecture"`
	TargetUsers  string `json:"target_users"`
	Constraints  string `json:"constraints"`
}

type githubSection struct {
	RepoOwner      string   `json:"repo_owner"`
	RepoName       string   `json:"repo_name"`
	DefaultProject string   `json:"default_project"`
	DefaultLabels  []string `json:"default_labels"`
}

type llmSettingsSection struct {
	DefaultProvider string   `json:"default_provider" validate:"omitempty,oneof=gemini claude"`
	Model           string   `json:"model"`
	Temperature     *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
	MaxTokens       *int     `json:"max_tokens" validate:"omitempty,gt=0"`
	TopP            *float64 `json:"top_p" validate:"omitempty,gte=0,lte=1"`
	TopK            *int     `json:"top_k" validate:"omitempty,gte=0"`
	OutputFormat    string   `json:"output_format" validate:"omitempty,oneof=markdown json text"`
	ResearchDepth   string   `json:"research_depth" validate:"omitempty,oneof=basic standard deep"`
}

type templatesSection struct {
	Directories []string `json:"directories" validate:"omitempty,dive,min=1"`
}

type automationSection struct {
	AutoCreateIssues bool `json:"auto_create_issues"`
	AutoAssign       bool `json:"auto_assign"`
}

// logLevels enumerates the accepted per-unit log_level values inside the
// agents section, which holds dynamic keys and is checked by hand.
var logLevels = map[string]bool{
	"debug":    true,
	"info":     true,
	"warning":  true,
	"error":    true,
	"critical": true,
}

// Schema validates configuration trees against the declared document shape:
// field types, enumerated values (e.g. the allowed provider set), and
// numeric ranges. A violation is terminal and carries the offending dotted
// path.
type Schema struct {
	validate *validator.Validate
}

// NewSchema builds the Schema. Field names in validation errors use the
// document's JSON tags so reported paths match what the user wrote.
func NewSchema() *Schema {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		tag := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if tag == "-" || tag == "" {
			return fld.Name
		}
		return tag
	})
	return &Schema{validate: v}
}

// Validate checks a configuration tree and returns a *ValidationError on the
// first violation found. A nil return means the tree conforms.
func (s *Schema) Validate(tree map[string]any) error {
	raw, err := json.Marshal(tree)
	if err != nil {
		return &ValidationError{FieldPath: "", Constraint: "json", Message: err.Error()}
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &ValidationError{
				FieldPath:  typeErr.Field,
				Constraint: "type",
				Message:    fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value),
			}
		}
		return &ValidationError{Constraint: "type", Message: err.Error()}
	}

	if err := s.validate.Struct(&doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &ValidationError{
				FieldPath:  trimNamespace(fe.Namespace()),
				Constraint: fe.Tag(),
				Message:    fmt.Sprintf("value %v rejected by %q", fe.Value(), fe.Tag()),
			}
		}
		return &ValidationError{Constraint: "struct", Message: err.Error()}
	}

	return s.validateAgentsSection(doc.Agents)
}

// validateAgentsSection checks the dynamic-keyed agents mapping: "directory"
// must be a string; every other entry must be a mapping whose optional
// log_level is one of the accepted levels.
func (s *Schema) validateAgentsSection(agents map[string]any) error {
	for key, value := range agents {
		if key == "directory" {
			if _, ok := value.(string); !ok {
				return &ValidationError{
					FieldPath:  "agents.directory",
					Constraint: "type",
					Message:    fmt.Sprintf("expected string, got %T", value),
				}
			}
			continue
		}

		section, ok := value.(map[string]any)
		if !ok {
			return &ValidationError{
				FieldPath:  "agents." + key,
				Constraint: "type",
				Message:    fmt.Sprintf("expected object, got %T", value),
			}
		}
		if level, present := section["log_level"]; present {
			str, isString := level.(string)
			if !isString || !logLevels[str] {
				return &ValidationError{
					FieldPath:  "agents." + key + ".log_level",
					Constraint: "oneof",
					Message:    fmt.Sprintf("value %v is not a recognized log level", level),
				}
			}
		}
	}
	return nil
}

// trimNamespace converts a validator namespace like
// "document.llm_settings.temperature" into the user-facing dotted path.
func trimNamespace(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
