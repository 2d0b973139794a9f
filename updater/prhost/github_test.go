package prhost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/webapp_updater/updater/prhost"
)

func TestNewGitHubHost_valid(t *testing.T) {
	t.Parallel()

	h, err := prhost.NewGitHubHost(prhost.GitHubConfig{
		RepoOwner:   "kubeflow",
		Repo:        "kubeflow",
		AccessToken: "tok",
	})

	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestNewGitHubHost_missing_owner(t *testing.T) {
	t.Parallel()

	h, err := prhost.NewGitHubHost(prhost.GitHubConfig{
		Repo:        "kubeflow",
		AccessToken: "tok",
	})

	assert.Nil(t, h)
	assert.ErrorContains(t, err, "repo owner")
}

func TestNewGitHubHost_missing_repo(t *testing.T) {
	t.Parallel()

	h, err := prhost.NewGitHubHost(prhost.GitHubConfig{
		RepoOwner:   "kubeflow",
		AccessToken: "tok",
	})

	assert.Nil(t, h)
	assert.ErrorContains(t, err, "repo must be set")
}

func TestNewGitHubHost_missing_token(t *testing.T) {
	t.Parallel()

	h, err := prhost.NewGitHubHost(prhost.GitHubConfig{
		RepoOwner: "kubeflow",
		Repo:      "kubeflow",
	})

	assert.Nil(t, h)
	assert.ErrorContains(t, err, "access token")
}

func TestNewGitHubHost_enterprise(t *testing.T) {
	t.Parallel()

	h, err := prhost.NewGitHubHost(prhost.GitHubConfig{
		RepoOwner:      "org",
		Repo:           "repo",
		AccessToken:    "tok",
		EnterpriseHost: "git.corp.example.com",
	})

	require.NoError(t, err)
	assert.NotNil(t, h)
}
