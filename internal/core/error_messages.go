package core

// error_messages.go maps technical errors to user-friendly messages with codes for
// support reference. Codes are grouped by category:
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - Data file not found
//	          Patterns: "no such file", "cannot find the file"
//	DATA002 - Data file is empty
//	          Patterns: "empty file"
//	DATA003 - Required column missing from the header
//	          Patterns: "missing required column"
//	DATA004 - Coordinate is not a number or out of range
//	          Patterns: "invalid number", "out of range", "empty value"
//	DATA005 - File is not valid CSV
//	          Patterns: "malformed csv"
//	DATA006 - Row is shorter than the header
//	          Patterns: "row is shorter"
//	DATA007 - No data file configured
//	          Patterns: "no data file"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled ("context canceled")
//	REQ002 - Request timed out ("context deadline exceeded")
//	REQ003 - Resource not found ("not found")
//	REQ004 - Method not allowed ("method not allowed")
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests ("rate limit")
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// Data file errors
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "The provider data file was not found",
			Action:  "Check DATA_PATH points at the provider CSV",
			Code:    "DATA001",
		},
	},
	{
		pattern: "cannot find the file",
		msg: UserMessage{
			Message: "The provider data file was not found",
			Action:  "Check DATA_PATH points at the provider CSV",
			Code:    "DATA001",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The provider data file is empty",
			Action:  "Provide a CSV with a header row",
			Code:    "DATA002",
		},
	},
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A required column is missing from the provider file",
			Action:  "The header must include Organization Name, Street Address, City, State, Latitude and Longitude",
			Code:    "DATA003",
		},
	},
	{
		pattern: "row is shorter",
		msg: UserMessage{
			Message: "A row has fewer values than the header",
			Action:  "Check the reported line for missing commas",
			Code:    "DATA006",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "A coordinate is not a valid number",
			Action:  "Use decimal degrees such as 39.8283",
			Code:    "DATA004",
		},
	},
	{
		pattern: "out of range",
		msg: UserMessage{
			Message: "A coordinate is outside the valid range",
			Action:  "Latitude must be within -90..90 and longitude within -180..180",
			Code:    "DATA004",
		},
	},
	{
		pattern: "empty value",
		msg: UserMessage{
			Message: "A coordinate is missing",
			Action:  "Every provider needs a latitude and longitude",
			Code:    "DATA004",
		},
	},
	{
		pattern: "malformed csv",
		msg: UserMessage{
			Message: "The provider file is not valid CSV",
			Action:  "Ensure the file is comma-separated with balanced quotes",
			Code:    "DATA005",
		},
	},
	{
		pattern: "no data file",
		msg: UserMessage{
			Message: "No provider data file is configured",
			Action:  "Set DATA_PATH or pass --data",
			Code:    "DATA007",
		},
	},

	// Request errors
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again",
			Code:    "REQ002",
		},
	},
	{
		pattern: "not found",
		msg: UserMessage{
			Message: "The requested resource does not exist",
			Action:  "Check the URL",
			Code:    "REQ003",
		},
	},
	{
		pattern: "method not allowed",
		msg: UserMessage{
			Message: "This request method is not supported here",
			Action:  "Use GET to read dashboard data",
			Code:    "REQ004",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
