// Package difftest gives test files a readable failure message when a
// generated string doesn't match what was expected, instead of testify's
// raw side-by-side dump.
package difftest

import (
	"testing"

	"github.com/kylelemons/godebug/diff"
)

// Equal fails the test with a unified diff between want and got if they
// differ.
func Equal(t *testing.T, label, want, got string) {
	t.Helper()
	if patch := diff.Diff(want, got); patch != "" {
		t.Errorf("diff %s:\n%s\n", label, patch)
	}
}
