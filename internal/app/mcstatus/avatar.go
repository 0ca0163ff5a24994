package mcstatus

import (
	"net/url"
	"strings"
)

const (
	DefaultAvatarURLTemplate = "https://cravatar.eu/helmavatar/{username}/64.png"
	// FallbackAvatarURLTemplate points to an alternative avatar service.
	// It is never queried automatically.
	FallbackAvatarURLTemplate = "https://mc-heads.net/avatar/{username}/64"

	usernamePlaceholder = "{username}"
)

// AvatarURL returns the avatar image URL of a player.
func AvatarURL(username string) string {
	return AvatarURLFromTemplate(DefaultAvatarURLTemplate, username)
}

// AvatarURLFromTemplate replaces the {username} placeholder of tmpl with the
// path escaped username.
func AvatarURLFromTemplate(tmpl, username string) string {
	return strings.ReplaceAll(tmpl, usernamePlaceholder, url.PathEscape(username))
}
