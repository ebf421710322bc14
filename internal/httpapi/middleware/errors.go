package middleware

import "errors"

var errMalformedHeader = errors.New("invalid authorization header format")
