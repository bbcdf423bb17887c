// Package misc keeps build-time identification of the program.
package misc

// Set with -ldflags "-X stylec/misc.version=... -X stylec/misc.gitHash=..."
var (
	appName = "stylec"
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
