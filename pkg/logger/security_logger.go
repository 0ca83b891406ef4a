package logger

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"seo-cluster/pkg/utils"
)

var (
	basicAuthHeader = regexp.MustCompile(`(?i)(basic)\s+[a-z0-9+/=]+`)
	secretAssign    = regexp.MustCompile(`(?i)(password|passwd|secret|token|key)(["']?\s*[=:]\s*["']?)[^\s"'&,]+`)
	urlPattern      = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+.-]*://[^\s"']+`)
)

// SecurityLogger masks credentials and endpoint details before logging.
type SecurityLogger struct {
	*Logger
}

func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{Logger: GetLogger()}
}

// GetSecurityLogger wraps an existing logger.
func GetSecurityLogger(l *Logger) *SecurityLogger {
	if l == nil {
		l = GetLogger()
	}
	return &SecurityLogger{Logger: l}
}

// MaskCredential keeps the first two characters of a login and replaces
// the rest with a short hash, e.g. "ab***#1a2b3c4d".
func (sl *SecurityLogger) MaskCredential(value string) string {
	if value == "" {
		return ""
	}
	prefix := value
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return fmt.Sprintf("%s***#%s", prefix, utils.HashShort(value))
}

// MaskAPIEndpoint drops user info and query string, keeping host and path.
func (sl *SecurityLogger) MaskAPIEndpoint(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "endpoint#" + utils.HashShort(rawURL)
	}
	return u.Host + u.Path
}

// MaskKeywords summarises a keyword list instead of logging it whole.
func (sl *SecurityLogger) MaskKeywords(keywords []string) string {
	switch {
	case len(keywords) == 0:
		return "no_keywords"
	case len(keywords) <= 3:
		return fmt.Sprintf("keywords_count=%d,sample=[%s]", len(keywords), strings.Join(keywords, ","))
	default:
		return fmt.Sprintf("keywords_count=%d,sample=[%s,%s,...]", len(keywords), keywords[0], keywords[1])
	}
}

// MaskSensitiveData returns a copy of data with credentials, URLs and
// keyword lists masked.
func (sl *SecurityLogger) MaskSensitiveData(data map[string]interface{}) map[string]interface{} {
	masked := make(map[string]interface{}, len(data))
	for key, value := range data {
		lowerKey := strings.ToLower(key)
		switch {
		case strings.Contains(lowerKey, "password") || strings.Contains(lowerKey, "secret") ||
			strings.Contains(lowerKey, "token") || strings.Contains(lowerKey, "authorization"):
			masked[key] = "***"
		case strings.Contains(lowerKey, "login") || strings.Contains(lowerKey, "user"):
			masked[key] = sl.MaskCredential(fmt.Sprint(value))
		case strings.Contains(lowerKey, "url") || strings.Contains(lowerKey, "endpoint"):
			if s, ok := value.(string); ok {
				masked[key] = sl.MaskAPIEndpoint(s)
			} else {
				masked[key] = value
			}
		case strings.Contains(lowerKey, "keywords"):
			if kws, ok := value.([]string); ok {
				masked[key] = sl.MaskKeywords(kws)
			} else {
				masked[key] = value
			}
		case strings.Contains(lowerKey, "dsn"):
			masked[key] = sl.MaskLogMessage(fmt.Sprint(value))
		default:
			masked[key] = value
		}
	}
	return masked
}

// MaskLogMessage redacts inline secrets and URL user info from free text.
func (sl *SecurityLogger) MaskLogMessage(message string) string {
	masked := urlPattern.ReplaceAllStringFunc(message, func(raw string) string {
		u, err := url.Parse(raw)
		if err != nil || u.User == nil {
			return raw
		}
		u.User = url.User("redacted")
		return u.String()
	})
	masked = basicAuthHeader.ReplaceAllString(masked, "${1} ***")
	return secretAssign.ReplaceAllString(masked, "${1}${2}***")
}

func (sl *SecurityLogger) SafeInfo(msg string, fields map[string]interface{}) {
	sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Info(sl.MaskLogMessage(msg))
}

func (sl *SecurityLogger) SafeWarn(msg string, fields map[string]interface{}) {
	sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Warn(sl.MaskLogMessage(msg))
}

func (sl *SecurityLogger) SafeDebug(msg string, fields map[string]interface{}) {
	sl.Logger.WithFields(sl.MaskSensitiveData(fields)).Debug(sl.MaskLogMessage(msg))
}

func (sl *SecurityLogger) SafeError(msg string, err error, fields map[string]interface{}) {
	l := sl.Logger.WithFields(sl.MaskSensitiveData(fields))
	if err != nil {
		l = l.WithField("error", sl.MaskLogMessage(err.Error()))
	}
	l.Error(sl.MaskLogMessage(msg))
}
