// Package prhost abstracts the pull request hosting
// platform behind a strategy interface.
//
// Host lists open pull requests (for duplicate detection)
// and creates new ones. Implementations exist for the hub
// CLI (the default, driven through the working repository),
// the GitHub API, and the GitLab API.
package prhost
