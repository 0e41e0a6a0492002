package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityLogModel_AllFields(t *testing.T) {
	db := setupTestDB(t, "security_log", &SecurityLog{})

	log := SecurityLog{
		EventType: "UNAUTHORIZED_ACCESS",
		Principal: "doctor:12",
		Email:     "richard@example.com",
		IP:        "203.0.113.7",
		Location:  "Pune/India",
		UserAgent: "Mozilla/5.0",
		Message:   "Unauthorized access to /api/admin/dashboard: token role not allowed on this route",
		Details:   []byte(`{"route":"/api/admin/dashboard"}`),
	}
	require.NoError(t, db.Create(&log).Error)

	var found SecurityLog
	require.NoError(t, db.First(&found, log.ID).Error)
	assert.Equal(t, "doctor:12", found.Principal)
	assert.Equal(t, "Pune/India", found.Location)
	assert.JSONEq(t, `{"route":"/api/admin/dashboard"}`, string(found.Details))
	assert.False(t, found.CreatedAt.IsZero())
}

func TestSecurityLogModel_FilterByPrincipalAndType(t *testing.T) {
	db := setupTestDB(t, "security_log_filter", &SecurityLog{})

	rows := []SecurityLog{
		{EventType: "LOGIN_SUCCESS", Principal: "patient:3"},
		{EventType: "LOGIN_FAILURE", Principal: "patient"},
		{EventType: "LOGOUT", Principal: "patient:3"},
		{EventType: "RATE_LIMIT_EXCEEDED", IP: "198.51.100.2"},
	}
	require.NoError(t, db.Create(&rows).Error)

	var byPrincipal []SecurityLog
	require.NoError(t, db.Where("principal = ?", "patient:3").Order("id").Find(&byPrincipal).Error)
	require.Len(t, byPrincipal, 2)
	assert.Equal(t, "LOGIN_SUCCESS", byPrincipal[0].EventType)

	var count int64
	require.NoError(t, db.Model(&SecurityLog{}).Where("event_type = ?", "RATE_LIMIT_EXCEEDED").Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
