package logging

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder is the string used to replace sensitive data
const RedactedPlaceholder = "[REDACTED]"

// secretPatterns match credentials that may appear in configuration dumps or
// request headers.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(bearer\s+[a-zA-Z0-9._-]{20,})`),            // Bearer tokens
	regexp.MustCompile(`(?i)(basic\s+[a-zA-Z0-9+/=]{16,})`),             // Basic auth headers
	regexp.MustCompile(`(?i)(password\s*[:=]\s*[^\s,;]{8,})`),           // password= or password:
	regexp.MustCompile(`(?i)(secret\s*[:=]\s*[^\s,;]{8,})`),             // secret= or secret:
	regexp.MustCompile(`(?i)(token\s*[:=]\s*[^\s,;]{8,})`),              // token= or token:
	regexp.MustCompile(`(?i)(api_?key\s*[:=]\s*[^\s,;]{8,})`),           // api_key= or apikey:
	regexp.MustCompile(`(?i)(DefaultEndpointsProtocol=[^;]+;[^"'\s]+)`), // Azure connection strings
}

// contactPatterns match personal contact details. Uploaded briefs name
// submitters and owners, and text previews are logged at debug level.
var contactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`),
	regexp.MustCompile(`\+?\d{1,3}[\s.-]?\(?\d{2,4}\)?[\s.-]\d{3,4}[\s.-]\d{3,4}\b`),
}

// sensitiveFieldNames are field or variable name fragments that indicate
// the whole value is sensitive.
var sensitiveFieldNames = []string{
	"PASSWORD",
	"SECRET",
	"TOKEN",
	"API_KEY",
	"APIKEY",
	"AUTHORIZATION",
	"COOKIE",
}

// RedactSensitiveData scans a string value and replaces credentials, e-mail
// addresses and phone numbers with RedactedPlaceholder.
//
// Example:
//
//	RedactSensitiveData("contact jane.doe@example.com")
//	// "contact [REDACTED]"
func RedactSensitiveData(value string) string {
	if value == "" {
		return value
	}

	result := value
	for _, pattern := range secretPatterns {
		result = pattern.ReplaceAllString(result, RedactedPlaceholder)
	}
	return RedactContactDetails(result)
}

// RedactContactDetails replaces e-mail addresses and phone numbers.
func RedactContactDetails(value string) string {
	for _, pattern := range contactPatterns {
		value = pattern.ReplaceAllString(value, RedactedPlaceholder)
	}
	return value
}

// RedactField redacts a field value if the field name indicates sensitive data.
// Otherwise the value itself is scanned.
//
// Example:
//
//	RedactField("AURA_API_TOKEN", "abc")  // "[REDACTED]"
//	RedactField("filename", "brief.pdf")  // "brief.pdf"
func RedactField(fieldName, fieldValue string) string {
	if IsSensitiveField(fieldName) {
		return RedactedPlaceholder
	}
	return RedactSensitiveData(fieldValue)
}

// IsSensitiveField returns true if the field name indicates sensitive data.
//
// Example:
//
//	IsSensitiveField("Authorization")  // true
//	IsSensitiveField("filename")       // false
func IsSensitiveField(fieldName string) bool {
	upperName := strings.ToUpper(fieldName)
	for _, fragment := range sensitiveFieldNames {
		if strings.Contains(upperName, fragment) {
			return true
		}
	}
	return false
}

// ContainsSensitiveData returns true if the value contains any sensitive data patterns.
func ContainsSensitiveData(value string) bool {
	if value == "" {
		return false
	}
	for _, pattern := range secretPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	for _, pattern := range contactPatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}
