package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// ErrConfigurationGap marks an account pair with a missing username or password. It is skipped, never reported.
	ErrConfigurationGap = fmt.Errorf("incomplete account credentials")

	// Account processing errors
	ErrLoginFailed    = fmt.Errorf("login failed")
	ErrSignAttempt    = fmt.Errorf("sign-in attempt failed")
	ErrTaskExhausted  = fmt.Errorf("sign-in task retries exhausted")
	ErrCapacityQuery  = fmt.Errorf("capacity query failed")
	ErrFamilyNotFound = fmt.Errorf("no family available")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Notification errors
	ErrPushTransport   = fmt.Errorf("push transport failed")
	ErrPushPayload     = fmt.Errorf("push rejected by remote")
	ErrResponseInvalid = fmt.Errorf("response payload invalid")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
