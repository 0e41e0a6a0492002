package endpoint

import (
	"errors"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const msgInvalidCredentials = "Invalid Credentials"

var errBadCredentials = errors.New("email or password mismatch")

type loginRequest struct {
	Email    string `json:"email" binding:"required" example:"admin@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// loginResponse is what every login answers with.
type loginResponse struct {
	Token     string          `json:"token"`
	Principal model.Principal `json:"principal"`
}

func rejectLogin(c *gin.Context, role model.Role, email, reason string) {
	util.LogLoginFailure(role, email, c.ClientIP(), c.Request.UserAgent(), reason)
	util.CallUserError(c, util.APIErrorParams{Msg: msgInvalidCredentials, Err: errBadCredentials})
}

func completeLogin(c *gin.Context, p model.Principal, msg string) {
	issued, err := openSession(c, p)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to open session", Err: err})
		return
	}
	util.LogLoginSuccess(issued.Principal, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  msg,
		Data: loginResponse{Token: issued.Token, Principal: issued.Principal},
	})
}

// AdminLogin godoc
// @Summary      Admin login
// @Description  Compare the credentials with ADMIN_EMAIL and ADMIN_PASSWORD and issue an admin token
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest  true  "Admin credentials"
// @Success      200      {object}  util.APIResponse{data=loginResponse}
// @Router       /api/admin/login [post]
func AdminLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSONOrRespond(c, &req, msgMissingDetails) {
		return
	}

	cfg := config.LoadConfig()
	email := util.NormalizeEmail(req.Email)
	// Both comparisons run so timing does not reveal which one failed.
	emailOK := util.ConstantTimeEqual(email, util.NormalizeEmail(cfg.AdminEmail))
	passOK := util.ConstantTimeEqual(req.Password, cfg.AdminPassword)
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" || !emailOK || !passOK {
		rejectLogin(c, model.RoleAdmin, email, "admin credentials mismatch")
		return
	}

	completeLogin(c, model.Principal{Role: model.RoleAdmin, Email: email}, "Admin logged in")
}

// DoctorLogin godoc
// @Summary      Doctor login
// @Description  Verify a doctor's bcrypt password and issue a dtoken
// @Tags         Doctor
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest  true  "Doctor credentials"
// @Success      200      {object}  util.APIResponse{data=loginResponse}
// @Router       /api/doctor/login [post]
func DoctorLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSONOrRespond(c, &req, msgMissingDetails) {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	email := util.NormalizeEmail(req.Email)
	var doctor model.Doctor
	if err := db.WithContext(c.Request.Context()).Where("email = ?", email).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rejectLogin(c, model.RoleDoctor, email, "unknown email")
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load doctor", Err: err})
		return
	}
	if !util.VerifyPassword(req.Password, doctor.Password) {
		rejectLogin(c, model.RoleDoctor, email, "wrong password")
		return
	}

	completeLogin(c, model.Principal{Role: model.RoleDoctor, SubjectID: doctor.ID, Email: doctor.Email}, "Doctor logged in")
}

// UserLogin godoc
// @Summary      Patient login
// @Description  Verify a patient's bcrypt password and issue a token
// @Tags         User
// @Accept       json
// @Produce      json
// @Param        request  body      loginRequest  true  "Patient credentials"
// @Success      200      {object}  util.APIResponse{data=loginResponse}
// @Router       /api/user/login [post]
func UserLogin(c *gin.Context) {
	var req loginRequest
	if !bindJSONOrRespond(c, &req, msgMissingDetails) {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	email := util.NormalizeEmail(req.Email)
	var user model.User
	if err := db.WithContext(c.Request.Context()).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.LogLoginFailure(model.RolePatient, email, c.ClientIP(), c.Request.UserAgent(), "unknown email")
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: "User does not exist", Err: err})
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to load user", Err: err})
		return
	}
	if !util.VerifyPassword(req.Password, user.Password) {
		rejectLogin(c, model.RolePatient, email, "wrong password")
		return
	}

	completeLogin(c, model.Principal{Role: model.RolePatient, SubjectID: user.ID, Email: user.Email}, "Logged in")
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the session of the calling token
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  util.APIResponse
// @Router       /api/logout [delete]
func Logout(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	if err := util.RevokeSession(c.Request.Context(), p); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to logout", Err: err})
		return
	}
	util.LogLogout(p, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Logged out"})
}

// ValidateToken godoc
// @Summary      Validate token
// @Description  Report the principal behind the presented token
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  util.APIResponse{data=model.Principal}
// @Router       /api/token/validate [get]
func ValidateToken(c *gin.Context) {
	p, ok := principalOrRespond(c)
	if !ok {
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Token is valid", Data: p})
}
