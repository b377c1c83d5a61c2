package version

// Set through -ldflags "-X simple-shop/internal/version.Version=..." at build time.
var (
	Version   = "dev"
	Commit    = "none"
	BuildTime = "unknown"
)
