// Package prompts holds the system prompts used by every generation call.
// Prompts live in an embedded YAML catalog and are rendered with text/template.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var catalogFile []byte

// Name identifies a prompt in the catalog
type Name string

const (
	Interview           Name = "interview"
	ToolInstructions    Name = "tool_instructions"
	Coaching            Name = "coaching"
	Report              Name = "report"
	Plan                Name = "plan"
	PlanRequest         Name = "plan_request"
	AnalyzeRole         Name = "analyze_role"
	AnalyzeRoleRequest  Name = "analyze_role_request"
	CompareRoles        Name = "compare_roles"
	CompareRolesRequest Name = "compare_roles_request"
	Summarize           Name = "summarize"
	SummarizeRequest    Name = "summarize_request"
)

var required = []Name{
	Interview, ToolInstructions, Coaching, Report, Plan, PlanRequest,
	AnalyzeRole, AnalyzeRoleRequest, CompareRoles, CompareRolesRequest,
	Summarize, SummarizeRequest,
}

type catalogDoc struct {
	Version string          `yaml:"version"`
	Prompts map[Name]string `yaml:"prompts"`
}

// Catalog is a parsed, immutable set of prompt templates
type Catalog struct {
	version   string
	templates map[Name]*template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// Parse builds a catalog from YAML. Every known prompt must be present.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompt catalog: %w", err)
	}

	c := &Catalog{
		version:   doc.Version,
		templates: make(map[Name]*template.Template, len(doc.Prompts)),
	}
	for _, name := range required {
		text, ok := doc.Prompts[name]
		if !ok {
			return nil, fmt.Errorf("prompt %q missing from catalog", name)
		}
		tmpl, err := template.New(string(name)).Funcs(funcs).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse prompt %q: %w", name, err)
		}
		c.templates[name] = tmpl
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogFile)
	})
	return defaultCatalog, defaultErr
}

// Version returns the catalog version string
func (c *Catalog) Version() string {
	return c.version
}

// Render executes the named prompt with data. Static prompts accept nil.
func (c *Catalog) Render(name Name, data any) (string, error) {
	tmpl, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

// MustRender is Render for static prompts known to be valid
func (c *Catalog) MustRender(name Name) string {
	text, err := c.Render(name, nil)
	if err != nil {
		panic(err)
	}
	return text
}
