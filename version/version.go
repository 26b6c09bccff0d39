package version

// Version is overwritten at link time with -ldflags "-X ...version.Version=...".
var Version = "0.3.0"
