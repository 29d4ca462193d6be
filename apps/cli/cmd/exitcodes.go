package cmd

// Exit codes for the fieldtimer CLI
const (
	// ExitSuccess indicates every flattened query succeeded
	ExitSuccess = 0

	// ExitQueryFailure indicates at least one query returned GraphQL errors
	ExitQueryFailure = 1

	// ExitParseError indicates the input document could not be parsed or flattened
	ExitParseError = 2

	// ExitConfigError indicates invalid endpoint, header or variable configuration
	ExitConfigError = 3

	// ExitNetworkError indicates a transport or protocol failure mid-run
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
