// Package misc holds build time information.
package misc

// Set with -ldflags "-X storyc/misc.version=... -X storyc/misc.gitHash=..."
var (
	version = "dev"
	gitHash = "unknown"
)

const appName = "storyc"

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return gitHash
}
