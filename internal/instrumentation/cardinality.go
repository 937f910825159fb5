package instrumentation

import "strconv"

// Result classes used as the "result" label of XML API metrics. The remote
// result code is free text in principle, so it is folded into this fixed set.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultOther     = "other"
	ResultHTTP      = "http_error"
	ResultNetwork   = "network_error"
	ResultMalformed = "malformed"
)

// ResultClass maps a Webex result code to a bounded label value.
//
//	ResultClass("SUCCESS")   // "success"
//	ResultClass("FAILURE")   // "failure"
//	ResultClass("WARNING")   // "other"
func ResultClass(result string) string {
	switch result {
	case "SUCCESS":
		return ResultSuccess
	case "FAILURE":
		return ResultFailure
	default:
		return ResultOther
	}
}

// StatusClass reduces an HTTP status code to its class ("2xx", "4xx", ...).
// Codes outside 100-599 are reported as "unknown".
func StatusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
