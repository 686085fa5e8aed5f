// Package valueobject contains domain value objects for the back-office system.
package valueobject

import "testing"

func TestRoundCents(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"-0.005", "-0.01"},
		{"150", "150"},
	}

	for _, tc := range cases {
		if got := RoundCents(dec(tc.in)); got.String() != tc.want {
			t.Errorf("RoundCents(%s): expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestWithinTolerance(t *testing.T) {
	tolerance := dec("0.10")

	t.Run("boundary is inclusive", func(t *testing.T) {
		if !WithinTolerance(dec("0.10"), tolerance) {
			t.Error("expected diff equal to tolerance to pass")
		}
		if !WithinTolerance(dec("-0.10"), tolerance) {
			t.Error("expected negative diff at tolerance to pass")
		}
	})

	t.Run("beyond the boundary fails", func(t *testing.T) {
		if WithinTolerance(dec("0.100001"), tolerance) {
			t.Error("expected diff just past tolerance to fail")
		}
	})
}

func TestAbsDiff(t *testing.T) {
	if got := AbsDiff(dec("4.40"), dec("4.60")); !got.Equal(dec("0.20")) {
		t.Errorf("expected 0.20, got %s", got)
	}
	if got := AbsDiff(dec("4.60"), dec("4.40")); !got.Equal(dec("0.20")) {
		t.Errorf("expected symmetric result 0.20, got %s", got)
	}
}
