package naming_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/webapp_updater/updater/naming"
)

func TestNamer_BranchName(t *testing.T) {
	t.Parallel()

	n := naming.Namer{App: "app"}

	assert.Equal(
		t,
		"update_app_abc123",
		n.BranchName("abc123"),
	)
}

func TestNamer_PRTitle(t *testing.T) {
	t.Parallel()

	n := naming.Namer{App: "jupyter-web-app"}

	assert.Equal(
		t,
		"[auto PR] Update the jupyter-web-app image to abc123",
		n.PRTitle("abc123"),
	)
}

func TestNamer_PRTitle_is_deterministic(t *testing.T) {
	t.Parallel()

	n := naming.Namer{App: "app"}

	assert.Equal(
		t, n.PRTitle("abc123"), n.PRTitle("abc123"),
	)
}

func TestNamer_CommitMessage(t *testing.T) {
	t.Parallel()

	n := naming.Namer{App: "app"}

	assert.Equal(
		t,
		"Update the app image to gcr.io/proj/app:abc123",
		n.CommitMessage("gcr.io/proj/app:abc123"),
	)
}
