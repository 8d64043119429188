// Package version holds the CLI's build fingerprints. Release builds
// override the variables through -ldflags.
package version

import "github.com/fatih/color"

const (
	major = "0"
	minor = "1"
	patch = "0"
	pre   = "-dev"
)

var (
	// Version is the colored semantic version banner.
	Version = banner()

	// GitCommit is the commit the binary was built from, when recorded.
	GitCommit = ""
	// GitMessage is that commit's subject line, when recorded.
	GitMessage = ""
	// BuildDate is the build timestamp in ISO-8601, when recorded.
	BuildDate = ""
)

func banner() string {
	return color.New(color.FgYellow, color.Bold).Sprint(major) + "." +
		color.New(color.FgGreen, color.Bold).Sprint(minor) + "." +
		color.New(color.FgBlue, color.Bold).Sprint(patch) + pre
}
