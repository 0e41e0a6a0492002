package util

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func withRedisMock(t *testing.T) redismock.ClientMock {
	t.Helper()
	db, mock := redismock.NewClientMock()
	config.SetRedisClientForTest(db)
	t.Cleanup(func() {
		config.SetRedisClientForTest(nil)
		_ = db.Close()
	})
	return mock
}

var testPrincipal = model.Principal{Role: model.RoleDoctor, SubjectID: 123, SessionID: "sess-1"}

func TestRegisterSession(t *testing.T) {
	mock := withRedisMock(t)
	ttl := 24 * time.Hour

	mock.ExpectSet("session:sess-1", "doctor:123", ttl).SetVal("OK")
	mock.ExpectSAdd("principal_sessions:doctor:123", "sess-1").SetVal(1)
	mock.ExpectExpire("principal_sessions:doctor:123", ttl).SetVal(true)

	assert.NoError(t, RegisterSession(context.Background(), testPrincipal, ttl))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterSession_SAddError(t *testing.T) {
	mock := withRedisMock(t)
	ttl := time.Hour

	mock.ExpectSet("session:sess-1", "doctor:123", ttl).SetVal("OK")
	mock.ExpectSAdd("principal_sessions:doctor:123", "sess-1").SetErr(errors.New("redis connection error"))

	assert.Error(t, RegisterSession(context.Background(), testPrincipal, ttl))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionActive(t *testing.T) {
	mock := withRedisMock(t)

	mock.ExpectExists("session:sess-1").SetVal(1)
	mock.ExpectExists("session:gone").SetVal(0)

	active, err := SessionActive(context.Background(), "sess-1")
	assert.NoError(t, err)
	assert.True(t, active)

	active, err = SessionActive(context.Background(), "gone")
	assert.NoError(t, err)
	assert.False(t, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeSession(t *testing.T) {
	mock := withRedisMock(t)

	mock.ExpectDel("session:sess-1").SetVal(1)
	mock.ExpectEval(removeSessionScript, []string{"principal_sessions:doctor:123"}, "sess-1").SetVal(int64(1))

	assert.NoError(t, RevokeSession(context.Background(), testPrincipal))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvalidatePrincipalSessions(t *testing.T) {
	mock := withRedisMock(t)

	mock.ExpectSMembers("principal_sessions:doctor:123").SetVal([]string{"a", "b"})
	mock.ExpectDel("session:a").SetVal(1)
	mock.ExpectDel("session:b").SetVal(1)
	mock.ExpectDel("principal_sessions:doctor:123").SetVal(1)

	assert.NoError(t, InvalidatePrincipalSessions(context.Background(), "doctor:123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionsWithoutRedis(t *testing.T) {
	config.SetRedisClientForTest(nil)
	ctx := context.Background()

	assert.NoError(t, RegisterSession(ctx, testPrincipal, time.Hour))
	active, err := SessionActive(ctx, "anything")
	assert.NoError(t, err)
	assert.True(t, active)
	assert.NoError(t, RevokeSession(ctx, testPrincipal))
	assert.NoError(t, InvalidatePrincipalSessions(ctx, "doctor:123"))
}
