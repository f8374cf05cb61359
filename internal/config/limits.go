package config

const (
	// MaxUserNameLength is the maximum length for display names.
	MaxUserNameLength = 255

	// MaxEmailLength follows the RFC 5321 path limit.
	MaxEmailLength = 254

	// MaxProjectNameLength is the maximum length for project names.
	// Limited to 255 so names stay short and descriptive.
	MaxProjectNameLength = 255

	// MaxBranchNameLength is the maximum length for branch names.
	// Same as project names for consistency.
	MaxBranchNameLength = 255

	// MaxDescriptionLength applies to project and branch descriptions.
	MaxDescriptionLength = 2000

	// MaxPostTitleLength is the maximum length for post titles.
	MaxPostTitleLength = 255

	// MaxPostContentLength bounds the stored post body.
	MaxPostContentLength = 50000

	// MaxMediaNameLength is the maximum length for media names.
	MaxMediaNameLength = 255

	// MaxURLLength bounds media URLs and pictures.
	MaxURLLength = 2048

	// MaxMediaPerPost is the number of media rows one post may carry.
	MaxMediaPerPost = 20

	// MaxAllowedUsers bounds the allow-list of a single permissions record.
	MaxAllowedUsers = 500

	// DefaultInteractionListLimit and MaxInteractionListLimit page
	// ListUserInteractions.
	DefaultInteractionListLimit = 50
	MaxInteractionListLimit     = 200
)
