// Package naming builds the deterministic branch names,
// commit messages, and pull request titles that tie one
// run to one source revision.
package naming

import "github.com/valyala/fasttemplate"

const (
	branchTemplate = "update_{app}_{commit}"
	titleTemplate  = "[auto PR] Update the {app} image to {commit}"
	commitTemplate = "Update the {app} image to {image}"
)

// Namer renders the run's deterministic names for one
// application.
type Namer struct {
	// App is the application name embedded in every
	// rendered string.
	App string
}

// BranchName returns the branch holding the update for
// commit.
func (n Namer) BranchName(commit string) string {
	return render(branchTemplate, map[string]any{
		"app":    n.App,
		"commit": commit,
	})
}

// PRTitle returns the pull request title for commit.
// Duplicate-PR detection matches on this exact string, so
// it must stay stable across runs.
func (n Namer) PRTitle(commit string) string {
	return render(titleTemplate, map[string]any{
		"app":    n.App,
		"commit": commit,
	})
}

// CommitMessage returns the commit message embedding the
// new image reference.
func (n Namer) CommitMessage(image string) string {
	return render(commitTemplate, map[string]any{
		"app":   n.App,
		"image": image,
	})
}

func render(template string, vars map[string]any) string {
	return fasttemplate.ExecuteStringStd(
		template, "{", "}", vars,
	)
}
