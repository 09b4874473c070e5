// Package misc holds build time information.
package misc

// Set with -ldflags "-X h2docx/misc.version=... -X h2docx/misc.gitHash=..."
var (
	appName = "h2docx"
	version = "dev"
	gitHash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
