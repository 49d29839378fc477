package model_test

import (
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/lanchanto/pkg/domain/model"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		deploy  []model.Deploy
		wantErr bool
	}{
		{
			name:   "empty config",
			deploy: nil,
		},
		{
			name: "valid",
			deploy: []model.Deploy{
				{Repository: "owner/a", Artifact: []model.Artifact{{Name: "dist", Target: "/srv/a"}}},
				{Repository: "owner/b", Artifact: []model.Artifact{{Name: "dist", Target: "/srv/b"}}},
			},
		},
		{
			name:    "empty repository",
			deploy:  []model.Deploy{{Repository: ""}},
			wantErr: true,
		},
		{
			name: "duplicated repository",
			deploy: []model.Deploy{
				{Repository: "owner/a"},
				{Repository: "owner/a"},
			},
			wantErr: true,
		},
		{
			name: "artifact without name",
			deploy: []model.Deploy{
				{Repository: "owner/a", Artifact: []model.Artifact{{Target: "/srv/a"}}},
			},
			wantErr: true,
		},
		{
			name: "artifact without target",
			deploy: []model.Deploy{
				{Repository: "owner/a", Artifact: []model.Artifact{{Name: "dist"}}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &model.Config{Deploy: tt.deploy}
			err := cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, types.ErrTagInvalidConfig))
			} else {
				gt.NoError(t, err)
			}
		})
	}
}

func TestCredential_Merge(t *testing.T) {
	file := model.Credential{
		GitHubWebhookSecret: "from-file",
	}
	flags := model.Credential{
		GitHubWebhookSecret: "from-flag",
		GitHubToken:         "token-from-flag",
		GitHubAppID:         10,
	}

	merged := file.Merge(flags)
	gt.Value(t, merged.GitHubWebhookSecret).Equal("from-file")
	gt.Value(t, merged.GitHubToken).Equal("token-from-flag")
	gt.Value(t, merged.GitHubAppID).Equal(int64(10))

	// receiver is not modified
	gt.Value(t, file.GitHubToken).Equal("")
}

func TestCredential_HasApp(t *testing.T) {
	gt.False(t, model.Credential{}.HasApp())
	gt.False(t, model.Credential{GitHubAppID: 1, GitHubAppInstallationID: 2}.HasApp())
	gt.True(t, model.Credential{
		GitHubAppID:             1,
		GitHubAppInstallationID: 2,
		GitHubAppPrivateKey:     "pem",
	}.HasApp())
}
