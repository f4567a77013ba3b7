// Package credentials resolves the Maps API key for a session.
//
// Sources are tried in a fixed order and the first non-empty value wins:
// explicit configuration, request header, the context.environment map of the
// request body, then the process environment.
package credentials

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"maps-mcp/internal/apperr"
)

// Names under which a key is looked up in headers, body and environment.
var Names = []string{"GOOGLE_MAPS_API_KEY", "apiKey"}

// Request carries everything a strategy may inspect. All fields are optional.
type Request struct {
	Header http.Header
	Body   []byte
	Getenv func(string) string
}

// Strategy looks up a key in one source.
type Strategy struct {
	Name   string
	Lookup func(Request) (string, bool)
}

// Resolver tries its strategies in order.
type Resolver struct {
	strategies []Strategy
}

// NewResolver returns the standard four-source resolver. configKey is the
// explicit configuration value and may be empty.
func NewResolver(configKey string) *Resolver {
	return &Resolver{strategies: []Strategy{
		FromConfig(configKey),
		FromHeader(),
		FromBodyEnvironment(),
		FromProcessEnvironment(),
	}}
}

// ForStdio returns a resolver that only consults configuration and the
// process environment.
func ForStdio(configKey string) *Resolver {
	return &Resolver{strategies: []Strategy{
		FromConfig(configKey),
		FromProcessEnvironment(),
	}}
}

// Resolve returns the first key found, or a configuration error naming the
// sources that were tried.
func (r *Resolver) Resolve(req Request) (string, string, error) {
	tried := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		if key, ok := s.Lookup(req); ok {
			return key, s.Name, nil
		}
		tried = append(tried, s.Name)
	}
	return "", "", apperr.Newf(apperr.Configuration, "resolve credential",
		"Google Maps API key not found (tried %s)", strings.Join(tried, ", "))
}

// FromConfig returns the explicit configuration value.
func FromConfig(key string) Strategy {
	return Strategy{Name: "config", Lookup: func(Request) (string, bool) {
		return nonEmpty(key)
	}}
}

// FromHeader matches header names case-insensitively.
func FromHeader() Strategy {
	return Strategy{Name: "header", Lookup: func(req Request) (string, bool) {
		for _, name := range Names {
			for h, values := range req.Header {
				if !strings.EqualFold(h, name) || len(values) == 0 {
					continue
				}
				if key, ok := nonEmpty(values[0]); ok {
					return key, true
				}
			}
		}
		return "", false
	}}
}

type bodyEnvelope struct {
	Context struct {
		Environment map[string]any `json:"environment"`
	} `json:"context"`
	Params struct {
		Context struct {
			Environment map[string]any `json:"environment"`
		} `json:"context"`
	} `json:"params"`
}

// FromBodyEnvironment reads context.environment from the JSON request body.
// The map is accepted at the top level or under params.
func FromBodyEnvironment() Strategy {
	return Strategy{Name: "body", Lookup: func(req Request) (string, bool) {
		if len(req.Body) == 0 {
			return "", false
		}
		var body bodyEnvelope
		if err := json.Unmarshal(req.Body, &body); err != nil {
			return "", false
		}
		for _, environment := range []map[string]any{body.Context.Environment, body.Params.Context.Environment} {
			for _, name := range Names {
				if s, ok := environment[name].(string); ok {
					if key, ok := nonEmpty(s); ok {
						return key, true
					}
				}
			}
		}
		return "", false
	}}
}

// FromProcessEnvironment reads the process environment, or req.Getenv when
// set.
func FromProcessEnvironment() Strategy {
	return Strategy{Name: "environment", Lookup: func(req Request) (string, bool) {
		getenv := req.Getenv
		if getenv == nil {
			getenv = os.Getenv
		}
		for _, name := range Names {
			if key, ok := nonEmpty(getenv(name)); ok {
				return key, true
			}
		}
		return "", false
	}}
}

func nonEmpty(v string) (string, bool) {
	v = strings.TrimSpace(v)
	return v, v != ""
}
