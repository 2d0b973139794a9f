// Package registry checks whether container images already
// exist in a remote registry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// ErrNotFound reports that the requested image is absent
// from the registry. Any other lookup failure is an
// infrastructure or auth error and must never be treated
// as absence.
var ErrNotFound = errors.New("image not found")

// Reference builds the fully qualified image reference
// <root>/<project>/<app>:<tag>.
func Reference(
	root string,
	project string,
	app string,
	tag string,
) string {
	return fmt.Sprintf(
		"%s/%s/%s:%s", root, project, app, tag,
	)
}

// RemoteChecker resolves image manifests against the live
// registry using the default credential keychain.
type RemoteChecker struct{}

// Exists fetches the manifest descriptor for ref. It
// returns the manifest digest when the image exists, and
// ErrNotFound when the registry reports 404.
func (RemoteChecker) Exists(
	ctx context.Context,
	ref string,
) (string, error) {
	const errCtx = "checking image manifest"

	parsed, err := name.ParseReference(ref)
	if err != nil {
		return "", fmt.Errorf(
			"%s: parse %q: %w", errCtx, ref, err,
		)
	}

	desc, err := remote.Head(
		parsed,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(
			authn.DefaultKeychain,
		),
	)
	if err != nil {
		return "", mapLookupError(ref, err)
	}

	return desc.Digest.String(), nil
}

// mapLookupError translates a registry 404 into
// ErrNotFound and leaves every other error intact.
func mapLookupError(ref string, err error) error {
	const errCtx = "checking image manifest"

	var terr *transport.Error
	if errors.As(err, &terr) &&
		terr.StatusCode == http.StatusNotFound {
		return fmt.Errorf(
			"%s: %s: %w", errCtx, ref, ErrNotFound,
		)
	}

	return fmt.Errorf("%s: %w", errCtx, err)
}
