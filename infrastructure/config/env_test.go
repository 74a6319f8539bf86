package config

import (
	"errors"
	"testing"

	domainconfig "github.com/felixgeelhaar/pitchroom/domain/config"
)

func TestEnvExpander_Expand(t *testing.T) {
	t.Setenv("PR_TEST_VAR", "hello")
	t.Setenv("PR_EMPTY_VAR", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bracket syntax", "${PR_TEST_VAR}", "hello"},
		{"dollar syntax", "$PR_TEST_VAR", "hello"},
		{"embedded in text", "prefix-${PR_TEST_VAR}-suffix", "prefix-hello-suffix"},
		{"multiple variables", "${PR_TEST_VAR} ${PR_TEST_VAR}", "hello hello"},
		{"unset with default", "${PR_UNSET_VAR:-fallback}", "fallback"},
		{"empty with default", "${PR_EMPTY_VAR:-fallback}", "fallback"},
		{"set ignores default", "${PR_TEST_VAR:-fallback}", "hello"},
		{"unset lenient", "${PR_UNSET_VAR}", ""},
		{"no variables", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandEnv(tt.input); got != tt.want {
				t.Errorf("ExpandEnv(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEnvExpander_Required(t *testing.T) {
	_, err := ExpandEnvStrict("${PR_UNSET_REQUIRED:?api key needed}")
	if !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Fatalf("error = %v, want ErrMissingEnvVar", err)
	}
}

func TestEnvExpander_Strict(t *testing.T) {
	if _, err := ExpandEnvStrict("$PR_UNSET_STRICT"); !errors.Is(err, domainconfig.ErrMissingEnvVar) {
		t.Errorf("error = %v, want ErrMissingEnvVar", err)
	}
	if _, err := ExpandEnvStrict("${PR_UNSET_STRICT:-ok}"); err != nil {
		t.Errorf("default should satisfy strict mode: %v", err)
	}
}
