// Package prompt builds the exact message sequence sent to the LLM
// provider. The estimator and the generation client both consume the
// same Build output, so the pre-flight token count and the real request
// can never diverge.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for template loading failures.
var (
	ErrTemplateMissing   = errors.New("prompt template missing")
	ErrTemplateMalformed = errors.New("prompt template malformed")
)

// ContentSlot is the substitution marker the user prompt must contain
// exactly once. The raw file content replaces it verbatim.
const ContentSlot = "{{content}}"

// ModeRewrite asks the model to return the whole file rewritten with
// documentation added.
const ModeRewrite = "rewrite"

//go:embed templates/docstring.yaml
var defaultTemplates []byte

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is a single chat message.
type Message struct {
	Role    Role
	Content string
}

// Template holds the prompt pair for one operation mode.
type Template struct {
	SystemPrompt string `yaml:"system_prompt"`
	UserPrompt   string `yaml:"user_prompt"`
}

// Set maps operation modes to their templates.
type Set map[string]Template

// LoadSet reads a YAML template file mapping mode names to prompt pairs.
func LoadSet(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateMissing, path)
		}
		return nil, fmt.Errorf("read template file %s: %w", path, err)
	}
	set, err := LoadSetFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("template file %s: %w", path, err)
	}
	return set, nil
}

// LoadSetFromBytes parses YAML template data from raw bytes.
func LoadSetFromBytes(data []byte) (Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateMalformed, err)
	}
	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no modes defined", ErrTemplateMalformed)
	}
	for mode, tpl := range set {
		if tpl.SystemPrompt == "" {
			return nil, fmt.Errorf("%w: mode %q has no system_prompt", ErrTemplateMalformed, mode)
		}
		if n := strings.Count(tpl.UserPrompt, ContentSlot); n != 1 {
			return nil, fmt.Errorf("%w: mode %q user_prompt must contain %s exactly once, found %d",
				ErrTemplateMalformed, mode, ContentSlot, n)
		}
	}
	return set, nil
}

// Default returns the packaged template set.
func Default() (Set, error) {
	return LoadSetFromBytes(defaultTemplates)
}

// Mode returns the template for the given mode.
func (s Set) Mode(name string) (Template, bool) {
	tpl, ok := s[name]
	return tpl, ok
}

// Build substitutes fileContent into the user prompt and returns the
// two-message sequence: system then user. It is pure and deterministic.
func (t Template) Build(fileContent string) []Message {
	return []Message{
		{Role: RoleSystem, Content: t.SystemPrompt},
		{Role: RoleUser, Content: strings.Replace(t.UserPrompt, ContentSlot, fileContent, 1)},
	}
}
