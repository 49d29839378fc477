package http_test

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"slices"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/lanchanto/pkg/controller/http"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

func signatureHeader(name, value string) http.Header {
	h := http.Header{}
	if name != "" {
		h.Set(name, value)
	}
	return h
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("test-secret")
	body := []byte(`{"action":"completed","repository":{"full_name":"owner/repo"}}`)
	valid := generateSignature(string(secret), body)

	tests := []struct {
		name    string
		secret  []byte
		header  http.Header
		wantTag fmt.Stringer
	}{
		{
			name:   "valid X-Hub-Signature-256",
			secret: secret,
			header: signatureHeader("X-Hub-Signature-256", valid),
		},
		{
			name:   "valid X-Hub-Signature fallback",
			secret: secret,
			header: signatureHeader("X-Hub-Signature", valid),
		},
		{
			name:   "X-Hub-Signature-256 takes precedence",
			secret: secret,
			header: func() http.Header {
				h := signatureHeader("X-Hub-Signature-256", valid)
				h.Set("X-Hub-Signature", "sha1=0123")
				return h
			}(),
		},
		{
			name:    "empty secret is never valid",
			secret:  nil,
			header:  signatureHeader("X-Hub-Signature-256", generateSignature("", body)),
			wantTag: types.ErrTagEmptySecret,
		},
		{
			name:    "missing header",
			secret:  secret,
			header:  signatureHeader("", ""),
			wantTag: types.ErrTagMissingSignature,
		},
		{
			name:    "missing prefix",
			secret:  secret,
			header:  signatureHeader("X-Hub-Signature-256", valid[len("sha256="):]),
			wantTag: types.ErrTagMalformedSignature,
		},
		{
			name:    "sha1 signature",
			secret:  secret,
			header:  signatureHeader("X-Hub-Signature", "sha1=0123456789abcdef"),
			wantTag: types.ErrTagMalformedSignature,
		},
		{
			name:    "not hex",
			secret:  secret,
			header:  signatureHeader("X-Hub-Signature-256", "sha256=zzzz"),
			wantTag: types.ErrTagMalformedSignature,
		},
		{
			name:    "wrong secret",
			secret:  secret,
			header:  signatureHeader("X-Hub-Signature-256", generateSignature("other-secret", body)),
			wantTag: types.ErrTagSignatureMismatch,
		},
		{
			name:    "truncated signature",
			secret:  secret,
			header:  signatureHeader("X-Hub-Signature-256", valid[:len(valid)-2]),
			wantTag: types.ErrTagSignatureMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := controller.VerifySignature(tt.secret, tt.header, body)
			if tt.wantTag == nil {
				gt.NoError(t, err)
				return
			}

			gt.Error(t, err)
			gt.True(t, slices.Contains(goerr.Tags(err), tt.wantTag.String()))
		})
	}
}

func TestVerifySignature_BitFlip(t *testing.T) {
	secret := []byte("test-secret")
	body := []byte(`{"action":"completed","workflow_run":{"artifacts_url":"https://api.github.com/x"}}`)
	valid := generateSignature(string(secret), body)

	gt.NoError(t, controller.VerifySignature(secret, signatureHeader("X-Hub-Signature-256", valid), body))

	t.Run("any body bit", func(t *testing.T) {
		for i := range body {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte{}, body...)
				mutated[i] ^= 1 << bit

				err := controller.VerifySignature(secret, signatureHeader("X-Hub-Signature-256", valid), mutated)
				gt.Error(t, err)
			}
		}
	})

	t.Run("any signature bit", func(t *testing.T) {
		digest, err := hex.DecodeString(valid[len("sha256="):])
		gt.NoError(t, err)
		for i := range digest {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte{}, digest...)
				mutated[i] ^= 1 << bit

				sig := "sha256=" + hex.EncodeToString(mutated)
				err := controller.VerifySignature(secret, signatureHeader("X-Hub-Signature-256", sig), body)
				gt.Error(t, err)
			}
		}
	})
}
