package cmd

// Exit codes for the apiprobe CLI
const (
	// ExitSuccess indicates all checks passed
	ExitSuccess = 0

	// ExitFailure covers failed checks as well as configuration and usage
	// errors; CI only distinguishes pass from fail.
	ExitFailure = 1
)
