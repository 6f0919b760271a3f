package theme

import (
	"testing"

	"github.com/theirongolddev/cbudget/internal/model"
)

func TestForMode(t *testing.T) {
	tests := []struct {
		mode       model.ThemeMode
		configured string
		want       string
	}{
		{model.ThemeLight, "tokyo-night", "flexoki-light"},
		{model.ThemeDark, "tokyo-night", "tokyo-night"},
		{model.ThemeDark, "flexoki-light", "flexoki-dark"},
		{model.ThemeDark, "nope", "flexoki-dark"},
	}
	for _, tt := range tests {
		if got := ForMode(tt.mode, tt.configured).Name; got != tt.want {
			t.Errorf("ForMode(%s, %q) = %s, want %s", tt.mode, tt.configured, got, tt.want)
		}
	}
}

func TestNamesMatchesAll(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("Names() has %d entries, want %d", len(names), len(All))
	}
	for _, n := range names {
		if ByName(n).Name != n {
			t.Errorf("ByName(%q) did not round-trip", n)
		}
	}
}
