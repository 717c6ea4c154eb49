package compose

import "sort"

// =============================================================================
// ParsedSpec - Parser Output
// =============================================================================

// ParsedSpec is the service set a compose invocation would run, extracted
// from a tool's rewritten compose document after interpolating its
// generated environment.
type ParsedSpec struct {
	Services []Service `json:"services"`
}

// Service is one compose service, reduced to the fields the CLI surfaces.
type Service struct {
	Name        string            `json:"name"`
	Image       string            `json:"image,omitempty"`
	Environment map[string]string `json:"environment,omitempty"`
}

// ServiceNames returns the service names in deterministic (sorted) order.
func (s *ParsedSpec) ServiceNames() []string {
	names := make([]string, 0, len(s.Services))
	for _, svc := range s.Services {
		names = append(names, svc.Name)
	}
	sort.Strings(names)
	return names
}

// FindService looks up a service by name.
func (s *ParsedSpec) FindService(name string) (Service, bool) {
	for _, svc := range s.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}
