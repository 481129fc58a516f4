package version

// Version is the release version, overridden at build time via
// -ldflags "-X github.com/apifuzz/apifuzz/pkg/version.Version=...".
var Version = "dev"
