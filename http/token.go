package http

import (
	"net/http"
	"strings"

	"github.com/Edgame2/castiel/kit/platform/errors"
)

const (
	tokenScheme  = "Token "
	bearerScheme = "Bearer "
)

// errTokenNotFound is returned when a request carries no usable credential.
var errTokenNotFound = &errors.Error{
	Code: errors.EUnauthorized,
	Msg:  "token required",
}

// GetToken returns the api token from the Authorization header. Both
// "Token <t>" and "Bearer <t>" schemes are accepted.
func GetToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errTokenNotFound
	}
	if strings.HasPrefix(header, tokenScheme) {
		return header[len(tokenScheme):], nil
	}
	if strings.HasPrefix(header, bearerScheme) {
		return header[len(bearerScheme):], nil
	}
	return "", errTokenNotFound
}
