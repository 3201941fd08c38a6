package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestMatchesByCommandWord(t *testing.T) {
	t.Parallel()
	cases := []struct {
		input string
		want  []string
	}{
		{"", paletteHints},
		{"lo", []string{"load <tag> <path>...", "load-dir <tag> <pattern> [dir]"}},
		{"load spam a.csv", []string{"load <tag> <path>..."}},
		{"EXPORT ", []string{"export [csv|xlsx]"}},
		{"nope", nil},
	}
	for _, tc := range cases {
		got := Matches(tc.input)
		if len(got) != len(tc.want) {
			t.Fatalf("Matches(%q) = %v, want %v", tc.input, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("Matches(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
			}
		}
	}
}

func TestPaletteSubmitsTrimmedInput(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	for _, r := range "  reset " {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if p.Visible() {
		t.Fatalf("palette should close on enter")
	}
	msg, ok := cmd().(PaletteSubmitMsg)
	if !ok || msg.Input != "reset" {
		t.Fatalf("unexpected submit message %#v", msg)
	}
}

func TestPaletteTabCompletesCommand(t *testing.T) {
	t.Parallel()
	p := NewPalette()
	p.Open()
	for _, r := range "cla" {
		p, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	p, _ = p.Update(tea.KeyMsg{Type: tea.KeyTab})
	p, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := cmd().(PaletteSubmitMsg)
	if msg.Input != "classify" {
		t.Fatalf("expected completed command, got %q", msg.Input)
	}
	_ = p
}
