package prhost_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/byte4ever/webapp_updater/updater/prhost"
)

func TestHasTitle(t *testing.T) {
	t.Parallel()

	prs := []prhost.PullRequest{
		{
			ID:    "https://github.com/o/r/pull/1",
			Title: "[auto PR] Update the app image to abc123",
		},
		{
			ID:    "https://github.com/o/r/pull/2",
			Title: "Fix typo in docs",
		},
	}

	tests := []struct {
		name  string
		title string
		want  bool
	}{
		{
			name:  "exact match",
			title: "[auto PR] Update the app image to abc123",
			want:  true,
		},
		{
			name:  "different commit",
			title: "[auto PR] Update the app image to def456",
			want:  false,
		},
		{
			name:  "substring does not match",
			title: "Update the app image to abc123",
			want:  false,
		},
		{
			name:  "empty title",
			title: "",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := prhost.HasTitle(prs, tt.title)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHasTitle_empty_list(t *testing.T) {
	t.Parallel()

	assert.False(t, prhost.HasTitle(nil, "anything"))
}

func TestBranchOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "owner and branch",
			ref:  "kubeflow:master",
			want: "master",
		},
		{
			name: "plain branch",
			ref:  "master",
			want: "master",
		},
		{
			name: "fork head",
			ref:  "jlewi:update_app_abc123",
			want: "update_app_abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := prhost.BranchOfForTest(tt.ref)
			assert.Equal(t, tt.want, got)
		})
	}
}
