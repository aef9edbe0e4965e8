package backend

import (
	"encoding/json"
	"sort"
	"strings"
)

// envelope wraps every backend response
type envelope struct {
	IsSuccess bool         `json:"is_success"`
	Code      string       `json:"code,omitempty"`
	Result    *resultBlock `json:"result,omitempty"`
}

type resultBlock struct {
	Data         json.RawMessage     `json:"data,omitempty"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	Errors       map[string][]string `json:"errors,omitempty"`
}

func (e *envelope) hasData() bool {
	if e.Result == nil || len(e.Result.Data) == 0 {
		return false
	}
	return string(e.Result.Data) != "null"
}

// extractErrorMessage joins the result's error_message and its field errors
// with newlines, falling back when neither is present. Field errors are
// ordered by field name.
func extractErrorMessage(result *resultBlock, fallback string) string {
	if result == nil {
		return fallback
	}

	var primary string
	if result.ErrorMessage != nil {
		primary = strings.TrimSpace(*result.ErrorMessage)
	}

	fields := make([]string, 0, len(result.Errors))
	for field := range result.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var details []string
	for _, field := range fields {
		details = append(details, result.Errors[field]...)
	}
	detailed := strings.TrimSpace(strings.Join(details, "\n"))

	switch {
	case primary != "" && detailed != "":
		return primary + "\n" + detailed
	case primary != "":
		return primary
	case detailed != "":
		return detailed
	default:
		return fallback
	}
}
