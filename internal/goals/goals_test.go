package goals

import (
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompare(t *testing.T) {
	tests := []struct {
		name      string
		goal      string
		spent     string
		remaining string
		status    Status
	}{
		{"within goal", "100", "80", "20", Surplus},
		{"exactly on goal", "50", "50", "0", Surplus},
		{"zero goal zero spend", "0", "0", "0", Surplus},
		{"exceeded", "100", "130.5", "-30.5", Deficit},
		{"no goal with spend", "0", "10", "-10", Deficit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(dec(tt.goal), dec(tt.spent))
			if !c.Remaining.Equal(dec(tt.remaining)) {
				t.Errorf("remaining = %s, want %s", c.Remaining, tt.remaining)
			}
			if c.Status != tt.status {
				t.Errorf("status = %v, want %v", c.Status, tt.status)
			}
			if c.Magnitude().IsNegative() {
				t.Errorf("magnitude must be non-negative: %s", c.Magnitude())
			}
		})
	}
}

func TestOverall(t *testing.T) {
	totals := map[string]decimal.Decimal{"Food": dec("80"), "Leisure": dec("40")}
	c := Overall(totals, core.Goals{"Food": dec("100"), "Leisure": dec("10"), "Ghost": dec("999")})
	if !c.Goal.Equal(dec("110")) || !c.Spent.Equal(dec("120")) || c.Status != Deficit {
		t.Fatalf("unexpected overall comparison: %+v", c)
	}
}

func TestApplyBulk(t *testing.T) {
	before := core.Goals{"Food": dec("10"), "Other": dec("5")}
	after := Apply(before, map[string]string{"Food": "75", "Leisure": "abc"})

	if !after["Food"].Equal(dec("75")) || !after["Leisure"].IsZero() {
		t.Fatalf("unexpected goals: %v", after)
	}
	if _, ok := after["Leisure"]; !ok {
		t.Fatalf("Leisure should be stored as 0")
	}
	if !after["Other"].Equal(dec("5")) {
		t.Fatalf("unsubmitted goal should be kept")
	}
	if !before["Food"].Equal(dec("10")) {
		t.Fatalf("input map must not be mutated")
	}
}

func TestSetAndParseInput(t *testing.T) {
	g := Set(nil, "Food", "12,5")
	if !g["Food"].Equal(dec("12.5")) {
		t.Fatalf("comma decimal not accepted: %v", g)
	}
	for _, in := range []string{"", "x", "-3"} {
		if !ParseInput(in).IsZero() {
			t.Fatalf("%q should coerce to 0", in)
		}
	}
	if !Current(core.Goals{}, "Missing").IsZero() {
		t.Fatalf("unset goal should default to 0")
	}
	fields := Fields(core.Goals{"A": dec("3")}, []string{"A", "B"})
	if len(fields) != 2 || !fields["A"].Equal(dec("3")) {
		t.Fatalf("unexpected fields %v", fields)
	}
}
