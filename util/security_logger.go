package util

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SecurityEventType represents different types of security events
type SecurityEventType string

const (
	EventLoginSuccess       SecurityEventType = "LOGIN_SUCCESS"
	EventLoginFailure       SecurityEventType = "LOGIN_FAILURE"
	EventSignupSuccess      SecurityEventType = "SIGNUP_SUCCESS"
	EventLogout             SecurityEventType = "LOGOUT"
	EventSessionsRevoked    SecurityEventType = "SESSIONS_REVOKED"
	EventUnauthorizedAccess SecurityEventType = "UNAUTHORIZED_ACCESS"
	EventRateLimitExceeded  SecurityEventType = "RATE_LIMIT_EXCEEDED"
	EventSuspiciousActivity SecurityEventType = "SUSPICIOUS_ACTIVITY"
)

// SecurityEvent represents a security event to be logged
type SecurityEvent struct {
	EventType SecurityEventType
	Principal string
	Email     string
	IP        string
	UserAgent string
	Message   string
	Details   map[string]interface{}
}

var (
	securityMu sync.RWMutex
	securityDB *gorm.DB
)

// SetSecurityLoggerDB sets the gorm DB security events are persisted to.
// Call this during startup after DB initialization; nil disables persistence.
func SetSecurityLoggerDB(db *gorm.DB) {
	securityMu.Lock()
	defer securityMu.Unlock()
	securityDB = db
}

func getSecurityDB() *gorm.DB {
	securityMu.RLock()
	defer securityMu.RUnlock()
	return securityDB
}

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if len(value) > 200 {
		value = value[:200] + "..."
	}
	return value
}

func formatLocation(city, country string) string {
	switch {
	case city != "" && country != "":
		return fmt.Sprintf("%s/%s", city, country)
	case country != "":
		return country
	default:
		return city
	}
}

// LogSecurityEvent writes the event to the process logger and, when a DB is set, to security_logs.
func LogSecurityEvent(event SecurityEvent) {
	var evt *zerolog.Event
	switch event.EventType {
	case EventLoginSuccess, EventSignupSuccess, EventLogout:
		evt = Logger().Info()
	default:
		evt = Logger().Warn()
	}
	evt.Str("component", "security").
		Str("event", string(event.EventType)).
		Str("principal", sanitizeLogValue(event.Principal)).
		Str("email", sanitizeLogValue(event.Email)).
		Str("ip", sanitizeLogValue(event.IP)).
		Str("user_agent", sanitizeLogValue(event.UserAgent)).
		Int("details", len(event.Details)).
		Msg(sanitizeLogValue(event.Message))

	db := getSecurityDB()
	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	loc := GetIPLocation(event.IP)
	entry := model.SecurityLog{
		EventType: string(event.EventType),
		Principal: sanitizeLogValue(event.Principal),
		Email:     sanitizeLogValue(event.Email),
		IP:        sanitizeLogValue(event.IP),
		Location:  sanitizeLogValue(formatLocation(loc.City, loc.Country)),
		UserAgent: sanitizeLogValue(event.UserAgent),
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	// best-effort write
	if err := db.Create(&entry).Error; err != nil {
		Logger().Error().Err(err).Msg("failed to persist security event")
	}
}

// LogLoginSuccess logs a successful login of any console
func LogLoginSuccess(p model.Principal, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginSuccess,
		Principal: p.Key(),
		Email:     p.Email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("%s logged in successfully", p.Role),
	})
}

// LogLoginFailure logs a failed login attempt
func LogLoginFailure(role model.Role, email, ip, userAgent, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLoginFailure,
		Principal: string(role),
		Email:     email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("Login failed: %s", reason),
	})
}

// LogSignup logs a new patient registration
func LogSignup(p model.Principal, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSignupSuccess,
		Principal: p.Key(),
		Email:     p.Email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   "Patient registered",
	})
}

// LogLogout logs a logout event
func LogLogout(p model.Principal, ip, userAgent string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventLogout,
		Principal: p.Key(),
		Email:     p.Email,
		IP:        ip,
		UserAgent: userAgent,
		Message:   fmt.Sprintf("%s logged out", p.Role),
	})
}

// LogSessionsRevoked logs that every session of a principal was dropped
func LogSessionsRevoked(principalKey, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventSessionsRevoked,
		Principal: principalKey,
		Message:   fmt.Sprintf("Sessions revoked: %s", reason),
	})
}

// LogUnauthorizedAccess logs unauthorized access attempts
func LogUnauthorizedAccess(principal, ip, resource, reason string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventUnauthorizedAccess,
		Principal: principal,
		IP:        ip,
		Message:   fmt.Sprintf("Unauthorized access to %s: %s", resource, reason),
	})
}

// LogRateLimitExceeded logs when rate limit is exceeded
func LogRateLimitExceeded(ip, endpoint string) {
	LogSecurityEvent(SecurityEvent{
		EventType: EventRateLimitExceeded,
		IP:        ip,
		Message:   fmt.Sprintf("Rate limit exceeded for endpoint: %s", endpoint),
	})
}
