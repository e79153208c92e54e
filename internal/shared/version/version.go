package version

// Version is overridden at build time with -ldflags "-X annotcheck/internal/shared/version.Version=...".
var Version = "0.3.0"
