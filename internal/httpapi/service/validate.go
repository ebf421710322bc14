package service

import (
	"regexp"
	"strings"
	"time"

	"reviewhub/internal/httpapi/apperr"
)

var (
	usernameRE = regexp.MustCompile(`^[\w.@+-]+$`)
	slugRE     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// validateUsername is the single reserved-name check shared by the
// signup path and both profile-edit paths.
func validateUsername(username string) error {
	if strings.EqualFold(username, "me") {
		return apperr.Validationf("username %q is reserved", username)
	}
	if !usernameRE.MatchString(username) {
		return apperr.Validationf("username may only contain letters, digits and @/./+/-/_")
	}
	return nil
}

func validateSlug(slug string) error {
	if len(slug) > 50 || !slugRE.MatchString(slug) {
		return apperr.Validationf("slug %q must be URL-safe (letters, digits, hyphens, underscores)", slug)
	}
	return nil
}

func validateScore(score int) error {
	if score < 1 || score > 10 {
		return apperr.Validationf("score must be between 1 and 10, got %d", score)
	}
	return nil
}

func validateYear(year int) error {
	if year > time.Now().Year() {
		return apperr.Validationf("year %d is in the future", year)
	}
	return nil
}
