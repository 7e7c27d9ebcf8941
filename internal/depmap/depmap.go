package depmap

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Separates the dependency name from its address in a token.
const separator = "="

// Maps dependency names to the addresses of running upstream instances.
type Map map[string]string

// Records the address of a dependency. A later call for the same name
// replaces the earlier address.
func (m Map) Set(name, address string) {
	m[name] = address
}

// Returns the dependency names in lexical order.
func (m Map) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// Returns the map as "name=address" tokens, ordered by name.
//
// The output is accepted by [FromTokens].
func (m Map) Tokens() []string {
	tokens := make([]string, 0, len(m))
	for _, name := range m.Names() {
		tokens = append(tokens, name+separator+m[name])
	}
	return tokens
}

// Resolves a dependency map from either of its input forms.
//
// Tokens win whenever there is at least one; the JSON form is then ignored
// entirely, even if it is malformed. With no tokens, a non-empty runnerMap is
// decoded as a JSON object. With neither, the map is empty.
func Resolve(tokens []string, runnerMap string) (Map, error) {
	switch source(tokens, runnerMap) {
	case fromTokens:
		return FromTokens(tokens)
	case fromJSON:
		return FromJSON(runnerMap)
	default:
		return Map{}, nil
	}
}

type origin int

const (
	fromNothing origin = iota
	fromTokens
	fromJSON
)

// Picks the input form [Resolve] reads from.
func source(tokens []string, runnerMap string) origin {
	if len(tokens) > 0 {
		return fromTokens
	}
	if runnerMap != "" {
		return fromJSON
	}
	return fromNothing
}

// Builds a map from "name=address" tokens.
//
// Every token must contain exactly one "=" with a non-empty name, otherwise
// the whole input fails with [ErrToken]. Rejecting "=address" is stricter than
// the legacy form, which accepted an empty name. Names that repeat keep the
// address of their last occurrence.
func FromTokens(tokens []string) (Map, error) {
	m := make(Map, len(tokens))
	for _, token := range tokens {
		name, address, err := splitToken(token)
		if err != nil {
			return nil, err
		}
		m.Set(name, address)
	}
	return m, nil
}

// Splits a name=address token. An empty name is rejected, which is stricter
// than the legacy form that accepted "=address".
func splitToken(token string) (name, address string, err error) {
	parts := strings.Split(token, separator)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("%w: %q must be name=address", ErrToken, token)
	}
	if parts[0] == "" {
		return "", "", fmt.Errorf("%w: %q has an empty name", ErrToken, token)
	}
	return parts[0], parts[1], nil
}

// Builds a map from a JSON object of string values.
//
// Anything other than an object of strings fails with [ErrJSON].
func FromJSON(s string) (Map, error) {
	var raw map[string]string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSON, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an object, got %s", ErrJSON, strings.TrimSpace(s))
	}
	return Map(raw), nil
}
