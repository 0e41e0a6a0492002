package util

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestLogger captures the process logger output and returns it for assertions
func setupTestLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	SetLogger(zerolog.New(buf))
	t.Cleanup(func() { SetLogger(zerolog.Nop()) })
	return buf
}

func TestSanitizeLogValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "removes newlines", input: "hello\nworld", expected: "hello world"},
		{name: "removes carriage returns", input: "hello\rworld", expected: "hello world"},
		{name: "removes tabs", input: "hello\tworld", expected: "hello world"},
		{name: "truncates long values", input: strings.Repeat("a", 250), expected: strings.Repeat("a", 200) + "..."},
		{name: "handles empty string", input: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeLogValue(tt.input))
		})
	}
}

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "Pune/India", formatLocation("Pune", "India"))
	assert.Equal(t, "India", formatLocation("", "India"))
	assert.Equal(t, "Pune", formatLocation("Pune", ""))
	assert.Equal(t, "", formatLocation("", ""))
}

func TestLogLoginFailure_WritesStructuredLine(t *testing.T) {
	buf := setupTestLogger(t)

	LogLoginFailure(model.RoleDoctor, "doc@example.com", "10.0.0.1", "curl", "invalid\npassword")

	out := buf.String()
	assert.Contains(t, out, `"event":"LOGIN_FAILURE"`)
	assert.Contains(t, out, `"email":"doc@example.com"`)
	assert.Contains(t, out, "Login failed: invalid password")
	assert.Contains(t, out, `"level":"warn"`)
}

func TestLogSecurityEvent_PersistsToDB(t *testing.T) {
	setupTestLogger(t)
	dsn := fmt.Sprintf("file:security_log_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.SecurityLog{}))

	SetSecurityLoggerDB(db)
	t.Cleanup(func() { SetSecurityLoggerDB(nil) })

	p := model.Principal{Role: model.RolePatient, SubjectID: 9, Email: "jane@example.com"}
	LogLoginSuccess(p, "127.0.0.1", "test-agent")
	LogSecurityEvent(SecurityEvent{EventType: EventSuspiciousActivity, Message: "odd", Details: map[string]interface{}{"k": "v"}})

	var logs []model.SecurityLog
	require.NoError(t, db.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	assert.Equal(t, string(EventLoginSuccess), logs[0].EventType)
	assert.Equal(t, "patient:9", logs[0].Principal)
	assert.Empty(t, logs[0].Location)
	assert.JSONEq(t, `{"k":"v"}`, string(logs[1].Details))
}
