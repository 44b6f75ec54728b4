package webhook

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net/url"
	"sort"
)

var (
	ErrMissingSignature = errors.New("webhook: missing twilio signature")
	ErrInvalidSignature = errors.New("webhook: invalid twilio signature")
)

// VerifySignature validates a Twilio X-Twilio-Signature header: base64
// HMAC-SHA1 over the full request URL followed by the form parameters sorted
// by key, each appended as key+value.
func VerifySignature(authToken, requestURL string, form url.Values, signature string) error {
	if signature == "" {
		return ErrMissingSignature
	}

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(requestURL))
	for _, k := range keys {
		for _, v := range form[k] {
			mac.Write([]byte(k))
			mac.Write([]byte(v))
		}
	}
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}
