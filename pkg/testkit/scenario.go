package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scenario is one API test case loaded from a JSON file: the request to
// fire, the backend calls it may make, and what it must answer.
//
//	{
//	  "name": "list kitchen products",
//	  "method": "GET",
//	  "url": "/api/products?category=kitchen",
//	  "backend": [
//	    {"method": "GET", "matchUrl": "https://demo.supabase.co/rest/v1/products",
//	     "expectQuery": {"category": "eq.kitchen"}, "body": [{"id": 42}]}
//	  ],
//	  "expectedCode": 200,
//	  "expectedBody": {"data": [{"id": 42}]}
//	}
type Scenario struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Method      string            `json:"method"`
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers"`
	Body        json.RawMessage   `json:"body"`

	ExpectedCode int `json:"expectedCode"`
	// ExpectedBody is matched as a subset of the response: listed keys
	// must be equal, unlisted keys are ignored, arrays must match in length.
	ExpectedBody json.RawMessage `json:"expectedBody"`

	Backend []BackendStep `json:"backend"`
	// Strict turns any backend call without a matching step into a
	// transport error.
	Strict bool `json:"strict"`
}

// BackendStep is a canned answer for outgoing calls whose method and URL
// prefix match. Every step must be hit unless Optional is set.
type BackendStep struct {
	Method      string            `json:"method"`
	MatchURL    string            `json:"matchUrl"`
	Status      int               `json:"status"`
	Body        json.RawMessage   `json:"body"`
	ExpectQuery map[string]string `json:"expectQuery"`
	Optional    bool              `json:"optional"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", path, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", path, err)
	}
	return &s, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.URL == "" {
		return fmt.Errorf("url is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.Method == "" {
		s.Method = "GET"
	}
	for i, step := range s.Backend {
		if step.MatchURL == "" {
			return fmt.Errorf("backend[%d].matchUrl is required", i)
		}
		if step.Status == 0 {
			s.Backend[i].Status = 200
		}
	}
	return nil
}

// LoadDir loads every *.json file in dir. Files that fail to load are
// returned as errors alongside the good ones.
func LoadDir(dir string) ([]*Scenario, []error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(paths) == 0 {
		return nil, []error{fmt.Errorf("testkit: no scenario files in %q", dir)}
	}

	var (
		out  []*Scenario
		errs []error
	)
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, s)
	}
	return out, errs
}
