// Package runner orchestrates one update pass over the
// configuration repository: resolve the component's image
// for the latest source revision, patch the prototype
// parameter file, gate on novelty, and publish the change
// as a pull request.
//
// The pipeline talks to its collaborators through small
// capability interfaces (Checker, Builder, VersionControl,
// prhost.Host) so it can be exercised with fakes.
package runner
