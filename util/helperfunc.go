package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// APIResponse is the envelope every endpoint answers with. Failures are reported through
// Success=false rather than the HTTP status code, so consoles only ever branch on the body.
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Message string      `json:"message" example:"Appointment Booked"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

var emailValidator = validator.New()

// Contains function is to check item whether is exist or not in a list and will return bool
func Contains(d string, dl []string) bool {
	for _, v := range dl {
		if v == d {
			return true
		}
	}
	return false
}

func errorResponse(params APIErrorParams) APIResponse {
	response := APIResponse{Success: false, Message: params.Msg}
	if params.Err != nil {
		response.Error = params.Err.Error()
	}
	return response
}

// CallErrorNotFound is for return API response when the requested record does not exist
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusOK, errorResponse(params))
}

// CallUserError is for return error from user side: validation and business rule failures
func CallUserError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusOK, errorResponse(params))
}

// CallServerError is for return API response server error. The error is logged with the request path.
func CallServerError(c *gin.Context, params APIErrorParams) {
	Logger().Error().
		Err(params.Err).
		Str("path", c.Request.URL.Path).
		Str("request_id", c.GetString("request_id")).
		Msg(params.Msg)
	c.JSON(http.StatusOK, errorResponse(params))
}

// CallUserNotAuthorized is for return API response when the caller has no valid token for the route
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusOK, errorResponse(params))
}

// CallTooManyRequests is the one failure that keeps a distinct status code, so proxies can back off.
func CallTooManyRequests(c *gin.Context, params APIErrorParams) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse(params))
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Message: params.Msg,
		Data:    params.Data,
	})
}

// NormalizeName normalizes a name by trimming leading/trailing whitespace
// and collapsing multiple internal spaces into single spaces.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	return strings.Join(strings.Fields(name), " ")
}

// NormalizeEmail lowercases and trims an email so uniqueness checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail reports whether s is a syntactically valid email address.
func IsValidEmail(s string) bool {
	return emailValidator.Var(s, "required,email") == nil
}
