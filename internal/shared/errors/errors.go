package errors

import "errors"

// Domain errors
var (
	// Policy errors
	ErrPolicyRejected   = errors.New("scraping prohibited by site policy")
	ErrRobotsDisallowed = errors.New("robots.txt disallows scraping")
	ErrTermsRestricted  = errors.New("terms of service restrict automated access")

	// Input errors
	ErrMalformedInput    = errors.New("malformed input")
	ErrUnsupportedScheme = errors.New("only http and https URLs are supported")
	ErrURLTooLong        = errors.New("URL exceeds maximum length")
	ErrPrivateNetwork    = errors.New("target resolves to a private or loopback network")
	ErrEmptyTarget       = errors.New("target cannot be empty")

	// Fetch errors
	ErrFetchFailed  = errors.New("fetch failed")
	ErrFetchTimeout = errors.New("fetch timed out")

	// Scoring errors
	ErrUnknownSiteType = errors.New("unknown site type")

	// Persistence errors
	ErrResultNotFound      = errors.New("scan result not found")
	ErrSerializationFailed = errors.New("serialization failed")
)
