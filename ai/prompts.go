package ai

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var promptsYAML []byte

type promptDef struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type prompt struct {
	system string
	user   *template.Template
}

type promptCatalogue struct {
	Subtasks     promptDef `yaml:"subtasks"`
	Reprioritize promptDef `yaml:"reprioritize"`
}

var (
	subtasksPrompt     *prompt
	reprioritizePrompt *prompt
)

func init() {
	var cat promptCatalogue
	if err := yaml.Unmarshal(promptsYAML, &cat); err != nil {
		panic(fmt.Sprintf("ai: parse prompts.yaml: %v", err))
	}
	subtasksPrompt = mustPrompt("subtasks", cat.Subtasks)
	reprioritizePrompt = mustPrompt("reprioritize", cat.Reprioritize)
}

func mustPrompt(name string, def promptDef) *prompt {
	if strings.TrimSpace(def.User) == "" {
		panic(fmt.Sprintf("ai: prompt %q has no user template", name))
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(def.User)
	if err != nil {
		panic(fmt.Sprintf("ai: parse prompt %q: %v", name, err))
	}
	return &prompt{system: strings.TrimSpace(def.System), user: tmpl}
}

// render builds a Request from the template and its data.
func (p *prompt) render(data any, temperature float64) (Request, error) {
	var b strings.Builder
	if err := p.user.Execute(&b, data); err != nil {
		return Request{}, fmt.Errorf("render prompt %s: %w", p.user.Name(), err)
	}
	return Request{System: p.system, Prompt: b.String(), Temperature: temperature}, nil
}
