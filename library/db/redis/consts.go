package redis

const (
	keyPrefix     = "files-manager/"
	keyPrefixTask = keyPrefix + "tasks/"

	// KeyPrefixAuth is the key prefix for session token mappings
	KeyPrefixAuth = keyPrefix + "auth/"
	// KeyTaskThumbnail is the list the thumbnail worker consumes
	KeyTaskThumbnail = keyPrefixTask + "thumbnail"
	// KeyTaskUserEmail is the list the welcome-email worker consumes
	KeyTaskUserEmail = keyPrefixTask + "user_email"
)
