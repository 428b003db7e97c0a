package revet_test

import (
	"os/exec"
	"testing"
)

// runGit executes git in root, failing the test on error. Several
// engine tests need a real git history (Review/Diff shell out to
// `git diff`/`git show`), so this is the common fixture setup.
func runGit(t *testing.T, root string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
}
