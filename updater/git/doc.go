// Package git performs version-control operations on the
// working repository via the git CLI.
//
// Repo wraps an existing local working tree with the
// operations one update run needs: querying the last
// commit touching a path, ensuring a fork remote exists,
// switching branches, committing a single file, and
// force-pushing. OwnerFromSSHURL and AddKnownHost cover
// the SSH plumbing around pushing to a fork.
package git
