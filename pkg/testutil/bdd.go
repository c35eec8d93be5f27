package testutil

import "testing"

// Given, When and Then nest subtests whose names read as a scenario, e.g.
// "Given_a_guest/When_browsing_listings/Then_prices_are_hidden".
func Given(t *testing.T, precondition string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Given", precondition, fn)
}

func When(t *testing.T, action string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "When", action, fn)
}

func Then(t *testing.T, outcome string, fn func(t *testing.T)) bool {
	t.Helper()
	return step(t, "Then", outcome, fn)
}

func step(t *testing.T, keyword, text string, fn func(t *testing.T)) bool {
	t.Helper()
	return t.Run(keyword+" "+text, fn)
}
