package middleware

import (
	"errors"
	"strings"

	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
)

const principalContextKey = "principal"

// NotAuthorizedMessage is what every console shows before sending the user back to login.
const NotAuthorizedMessage = "Not Authorized Login Again"

var (
	errMissingToken   = errors.New("missing token")
	errRoleMismatch   = errors.New("token role not allowed on this route")
	errSessionRevoked = errors.New("session revoked or expired")
)

// tokenFromRequest reads the role-scoped headers of the accepted roles first and
// falls back to Authorization: Bearer.
func tokenFromRequest(c *gin.Context, roles []model.Role) string {
	for _, r := range roles {
		if t := strings.TrimSpace(c.GetHeader(r.TokenHeader())); t != "" {
			return t
		}
	}
	auth := c.GetHeader("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func authenticate(c *gin.Context, roles []model.Role) (model.Principal, error) {
	raw := tokenFromRequest(c, roles)
	if raw == "" {
		return model.Principal{}, errMissingToken
	}
	p, err := util.ParsePrincipalToken(raw)
	if err != nil {
		return model.Principal{}, err
	}

	allowed := false
	for _, r := range roles {
		if p.Role == r {
			allowed = true
			break
		}
	}
	if !allowed {
		return p, errRoleMismatch
	}

	active, err := util.SessionActive(c.Request.Context(), p.SessionID)
	if err != nil {
		return p, err
	}
	if !active {
		return p, errSessionRevoked
	}
	return p, nil
}

// RequireRole admits requests carrying a valid token of one of the given roles.
// With no roles every role is accepted.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	if len(roles) == 0 {
		roles = model.Roles
	}
	return func(c *gin.Context) {
		p, err := authenticate(c, roles)
		if err != nil {
			principal := ""
			if p.SubjectID != 0 {
				principal = p.Key()
			}
			util.LogUnauthorizedAccess(principal, c.ClientIP(), c.Request.URL.Path, err.Error())
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: NotAuthorizedMessage, Err: err})
			return
		}
		c.Set(principalContextKey, p)
		c.Next()
	}
}

// GetPrincipal returns the principal set by RequireRole.
func GetPrincipal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(principalContextKey)
	if !ok {
		return model.Principal{}, false
	}
	p, ok := v.(model.Principal)
	return p, ok
}
