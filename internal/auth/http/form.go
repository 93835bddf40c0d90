package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tokenauth/pkg/authsdk"
)

// parseForm accepts an url-encoded body (or none) and writes the error
// response itself when it can't.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return false
	}

	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return false
	}
	return true
}
