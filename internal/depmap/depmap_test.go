package depmap

import (
	"errors"
	"maps"
	"slices"
	"testing"
)

func TestFromTokens(t *testing.T) {
	m, err := FromTokens([]string{"a=1.2.3.4:80", "b=5.6.7.8:81"})
	if err != nil {
		t.Fatal(err)
	}
	want := Map{"a": "1.2.3.4:80", "b": "5.6.7.8:81"}
	if !maps.Equal(m, want) {
		t.Fatalf("map = %v, want %v", m, want)
	}
}

func TestFromTokensLastWriteWins(t *testing.T) {
	m, err := FromTokens([]string{"a=first:1", "b=other:2", "a=second:3"})
	if err != nil {
		t.Fatal(err)
	}
	if m["a"] != "second:3" {
		t.Fatalf("m[a] = %q, want second:3", m["a"])
	}
	if len(m) != 2 {
		t.Fatalf("len = %d, want 2", len(m))
	}
}

func TestSetOverwrites(t *testing.T) {
	m := Map{}
	m.Set("runner", "x:1")
	m.Set("runner", "y:2")
	if m["runner"] != "y:2" {
		t.Fatalf("m[runner] = %q, want y:2", m["runner"])
	}
}

func TestFromTokensEmptyAddress(t *testing.T) {
	m, err := FromTokens([]string{"a="})
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := m["a"]; !ok || v != "" {
		t.Fatalf("m[a] = %q, %v, want empty, true", v, ok)
	}
}

func TestFromTokensMalformed(t *testing.T) {
	for _, token := range []string{"noequalsign", "a=b=c", "=1.2.3.4:80", ""} {
		_, err := FromTokens([]string{"ok=1:1", token})
		if !errors.Is(err, ErrToken) {
			t.Errorf("FromTokens(%q) error = %v, want ErrToken", token, err)
		}
	}
}

func TestFromJSON(t *testing.T) {
	m, err := FromJSON(`{"a":"x:1"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !maps.Equal(m, Map{"a": "x:1"}) {
		t.Fatalf("map = %v, want map[a:x:1]", m)
	}
}

func TestFromJSONMalformed(t *testing.T) {
	for _, s := range []string{`{bad`, `["a"]`, `"a"`, `null`, `{"a": 1}`, ``} {
		_, err := FromJSON(s)
		if !errors.Is(err, ErrJSON) {
			t.Errorf("FromJSON(%q) error = %v, want ErrJSON", s, err)
		}
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		tokens    []string
		runnerMap string
		want      Map
	}{
		{"tokens", []string{"a=1.2.3.4:80", "b=5.6.7.8:81"}, "", Map{"a": "1.2.3.4:80", "b": "5.6.7.8:81"}},
		{"json", nil, `{"a":"x:1"}`, Map{"a": "x:1"}},
		{"tokens beat json", []string{"b=y:2"}, `{"a":"x:1"}`, Map{"b": "y:2"}},
		{"tokens beat malformed json", []string{"b=y:2"}, `{bad`, Map{"b": "y:2"}},
		{"empty token list reads json", []string{}, `{"a":"x:1"}`, Map{"a": "x:1"}},
		{"neither", nil, "", Map{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.tokens, tt.runnerMap)
			if err != nil {
				t.Fatal(err)
			}
			if !maps.Equal(got, tt.want) {
				t.Fatalf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	if _, err := Resolve([]string{"noequalsign"}, ""); !errors.Is(err, ErrToken) {
		t.Fatalf("error = %v, want ErrToken", err)
	}
	if _, err := Resolve(nil, "{bad"); !errors.Is(err, ErrJSON) {
		t.Fatalf("error = %v, want ErrJSON", err)
	}
}

func TestSource(t *testing.T) {
	if got := source([]string{"a=1"}, `{"b":"2"}`); got != fromTokens {
		t.Fatalf("source = %v, want fromTokens", got)
	}
	if got := source(nil, `{"b":"2"}`); got != fromJSON {
		t.Fatalf("source = %v, want fromJSON", got)
	}
	if got := source(nil, ""); got != fromNothing {
		t.Fatalf("source = %v, want fromNothing", got)
	}
}

func TestTokensRoundTrip(t *testing.T) {
	m := Map{"b": "y:2", "a": "x:1"}
	tokens := m.Tokens()
	if !slices.Equal(tokens, []string{"a=x:1", "b=y:2"}) {
		t.Fatalf("Tokens() = %v", tokens)
	}
	back, err := FromTokens(tokens)
	if err != nil {
		t.Fatal(err)
	}
	if !maps.Equal(back, m) {
		t.Fatalf("FromTokens(Tokens()) = %v, want %v", back, m)
	}
}
