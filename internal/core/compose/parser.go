package compose

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Parser Functions
// =============================================================================

// ParseProject parses a rewritten compose document the way a compose
// invocation would see it, interpolating ${VAR} references against the
// tool's generated environment. Used for service discovery (the shell
// command) and as a sanity check after rewriting.
// This is a pure function - no I/O, no side effects.
func ParseProject(content []byte, env map[string]string) (*ParsedSpec, error) {
	if strings.TrimSpace(string(content)) == "" {
		return nil, ErrEmptyInput
	}

	project, err := loadProject(content, env)
	if err != nil {
		return nil, err
	}

	if len(project.Services) == 0 {
		return nil, ErrNoServices
	}

	spec := &ParsedSpec{
		Services: make([]Service, 0, len(project.Services)),
	}
	for _, svc := range project.Services {
		spec.Services = append(spec.Services, convertService(svc))
	}
	sort.Slice(spec.Services, func(i, j int) bool {
		return spec.Services[i].Name < spec.Services[j].Name
	})

	return spec, nil
}

// loadProject loads a compose document using compose-go.
func loadProject(content []byte, env map[string]string) (*types.Project, error) {
	// Parse YAML into a map first
	var dict map[string]interface{}
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}
	if dict == nil {
		return nil, NewParseError("", "invalid YAML syntax", ErrInvalidYAML)
	}

	project, err := loader.LoadWithContext(context.Background(), types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: content,
				Config:  dict,
			},
		},
		Environment: env,
	}, func(opts *loader.Options) {
		opts.SetProjectName("hpone-temp", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// Don't resolve paths since we're in-memory
		opts.SkipNormalization = true
		opts.SkipExtends = true // Don't try to load external files
	})
	if err != nil {
		return nil, NewParseError("", err.Error(), ErrInvalidYAML)
	}

	return project, nil
}

// convertService reduces a compose-go service to the fields the CLI needs.
func convertService(svc types.ServiceConfig) Service {
	service := Service{
		Name:        svc.Name,
		Image:       svc.Image,
		Environment: make(map[string]string, len(svc.Environment)),
	}
	for k, v := range svc.Environment {
		if v != nil {
			service.Environment[k] = *v
		}
	}
	return service
}

// =============================================================================
// Variable Extraction
// =============================================================================

// variablePlaceholderRegex matches ${VAR_NAME} or ${VAR_NAME:-default}
var variablePlaceholderRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-[^}]*)?\}`)

// ExtractVariablesFromYAML extracts environment variable placeholders from
// raw YAML content, before any interpolation. Returns unique variable names
// without the ${} wrapper, in first-seen order. The import pipeline compares
// this set against the generated .env to flag placeholders nothing defines.
func ExtractVariablesFromYAML(yamlContent string) []string {
	seen := make(map[string]bool)
	var vars []string

	matches := variablePlaceholderRegex.FindAllStringSubmatch(yamlContent, -1)
	for _, match := range matches {
		if len(match) >= 2 {
			varName := match[1]
			if !seen[varName] {
				seen[varName] = true
				vars = append(vars, varName)
			}
		}
	}

	return vars
}
