package cli

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/sdfexpand/pkg/hsdf"
	"github.com/matzehuels/sdfexpand/pkg/sdf"
)

func rateChangeModel(t *testing.T) FiringListModel {
	t.Helper()
	g := sdf.New(nil)
	for _, name := range []string{"A", "B"} {
		if _, err := g.AddActor(name); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.AddChannel("A", 2, "B", 3, 1); err != nil {
		t.Fatal(err)
	}
	h, err := hsdf.Expand(g)
	if err != nil {
		t.Fatal(err)
	}
	return NewFiringListModel(h, slices.Collect(h.Channels()))
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m FiringListModel, keys ...string) FiringListModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(FiringListModel)
	}
	return m
}

func TestNewFiringListModel(t *testing.T) {
	m := rateChangeModel(t)

	if len(m.Firings) != 5 {
		t.Fatalf("got %d firings, want 5", len(m.Firings))
	}
	a2 := hsdf.Actor{Index: 0, Name: "A", Firing: 2}
	b0 := hsdf.Actor{Index: 1, Name: "B", Firing: 0}

	if got := tokenCount(m.Outputs[a2]); got != "2" {
		t.Errorf("A(2) produces %s tokens, want 2", got)
	}
	if got := tokenCount(m.Inputs[b0]); got != "3" {
		t.Errorf("B(0) consumes %s tokens, want 3", got)
	}

	var delayed int
	for _, e := range m.Inputs[b0] {
		if e.Delay == 1 {
			delayed += e.Tokens
			if e.Source != a2 {
				t.Errorf("delayed token from %s, want A(2)", e.Source.Label())
			}
		}
	}
	if delayed != 1 {
		t.Errorf("B(0) has %d delayed tokens, want 1", delayed)
	}
}

func TestFiringListNavigation(t *testing.T) {
	m := rateChangeModel(t)

	tests := []struct {
		keys []string
		want int
	}{
		{[]string{"down", "down"}, 2},
		{[]string{"j", "k", "up", "up"}, 0},
		{[]string{"G"}, 4},
		{[]string{"G", "down"}, 4},
		{[]string{"G", "g"}, 0},
	}

	for _, tt := range tests {
		if got := press(m, tt.keys...).Cursor; got != tt.want {
			t.Errorf("keys %v: cursor = %d, want %d", tt.keys, got, tt.want)
		}
	}
}

func TestFiringListScroll(t *testing.T) {
	m := rateChangeModel(t)
	m.Height = 2

	m = press(m, "down", "down", "down")
	if m.Offset != 2 {
		t.Errorf("offset = %d, want 2", m.Offset)
	}
	m = press(m, "g")
	if m.Offset != 0 {
		t.Errorf("offset after home = %d, want 0", m.Offset)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 8})
	if h := next.(FiringListModel).Height; h != 5 {
		t.Errorf("height = %d, want minimum of 5", h)
	}
}

func TestFiringListQuit(t *testing.T) {
	m := rateChangeModel(t)
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should return a quit command")
	}
}

func TestFiringListView(t *testing.T) {
	m := press(rateChangeModel(t), "down", "down")
	view := m.View()

	for _, want := range []string{"HSDF Firings", "A(0)", "B(1)", "Consumes", "Produces", "delay 1", "[3/5]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}
