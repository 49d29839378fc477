package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lanchanto/pkg/domain/types"
)

const (
	headerSignature256 = "X-Hub-Signature-256"
	headerSignature    = "X-Hub-Signature"
	signaturePrefix    = "sha256="
)

// VerifySignature checks the HMAC-SHA256 signature of a webhook body. body
// must be the raw request body as received, before any JSON decoding.
func VerifySignature(secret []byte, header http.Header, body []byte) error {
	if len(secret) == 0 {
		return goerr.New("webhook secret is empty", goerr.T(types.ErrTagEmptySecret))
	}

	signature := header.Get(headerSignature256)
	if signature == "" {
		signature = header.Get(headerSignature)
	}
	if signature == "" {
		return goerr.New("signature header is missing", goerr.T(types.ErrTagMissingSignature))
	}

	hexSig, ok := strings.CutPrefix(signature, signaturePrefix)
	if !ok {
		return goerr.New("signature has no sha256= prefix", goerr.T(types.ErrTagMalformedSignature))
	}
	received, err := hex.DecodeString(hexSig)
	if err != nil {
		return goerr.Wrap(err, "signature is not hex encoded", goerr.T(types.ErrTagMalformedSignature))
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(received, mac.Sum(nil)) {
		return goerr.New("signature mismatch", goerr.T(types.ErrTagSignatureMismatch))
	}

	return nil
}
