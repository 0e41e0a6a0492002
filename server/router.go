package server

import (
	"fmt"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/docs"
	"github.com/ariebrainware/physiofriend-api/endpoint"
	"github.com/ariebrainware/physiofriend-api/middleware"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/obs"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// loginRateLimit guards every credential endpoint.
var loginRateLimit = middleware.RateLimitConfig{Limit: 5, Window: 15 * time.Minute}

// NewRouter builds the engine with the middleware chain and every route. Handler
// collaborators are installed separately through endpoint.Configure.
func NewRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		obs.GinMiddleware(),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		middleware.DatabaseMiddleware(db),
		middleware.EndpointCallLogger(),
	)

	router.GET("/", func(c *gin.Context) {
		util.CallSuccessOK(c, util.APISuccessParams{
			Msg: fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})

	docs.SwaggerInfo.Title = fmt.Sprintf("%s API", cfg.AppName)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limited := middleware.RateLimiter(loginRateLimit)
	admin := middleware.RequireRole(model.RoleAdmin)
	doctor := middleware.RequireRole(model.RoleDoctor)
	patient := middleware.RequireRole(model.RolePatient)

	api := router.Group("/api")
	api.DELETE("/logout", middleware.RequireRole(), endpoint.Logout)
	api.GET("/token/validate", middleware.RequireRole(), endpoint.ValidateToken)

	adminGroup := api.Group("/admin")
	{
		adminGroup.POST("/login", limited, endpoint.AdminLogin)
		adminGroup.GET("/list-doctors", endpoint.ListDoctors(true))
		adminGroup.POST("/add-doctor", admin, endpoint.AddDoctor)
		adminGroup.POST("/all-doctors", admin, endpoint.AllDoctors)
		adminGroup.POST("/change-availability", admin, endpoint.AdminChangeAvailability)
		adminGroup.POST("/appointments", admin, endpoint.AdminAppointments)
		adminGroup.POST("/cancel-appointment", admin, endpoint.AdminCancelAppointment)
		adminGroup.POST("/complete-appointment", admin, endpoint.AdminCompleteAppointment)
		adminGroup.POST("/delete-doctor", admin, endpoint.DeleteDoctor)
		adminGroup.POST("/update-doctor", admin, endpoint.UpdateDoctor)
		adminGroup.GET("/dashboard", admin, endpoint.AdminDashboard)
		adminGroup.GET("/notifications", admin, endpoint.AdminNotifications)
	}

	doctorGroup := api.Group("/doctor")
	{
		doctorGroup.GET("/list", endpoint.ListDoctors(false))
		doctorGroup.POST("/login", limited, endpoint.DoctorLogin)
		doctorGroup.GET("/appointments", doctor, endpoint.DoctorAppointments)
		doctorGroup.GET("/dashboard", doctor, endpoint.DoctorDashboard)
		doctorGroup.GET("/profile", doctor, endpoint.DoctorProfile)
		doctorGroup.POST("/cancel-appointment", doctor, endpoint.DoctorCancelAppointment)
		doctorGroup.POST("/complete-appointment", doctor, endpoint.DoctorCompleteAppointment)
		doctorGroup.POST("/update-profile", doctor, endpoint.DoctorUpdateProfile)
		doctorGroup.POST("/change-availability", doctor, endpoint.DoctorChangeAvailability)
	}

	userGroup := api.Group("/user")
	{
		userGroup.POST("/register", limited, endpoint.RegisterUser)
		userGroup.POST("/login", limited, endpoint.UserLogin)
		userGroup.GET("/get-profile", patient, endpoint.GetProfile)
		userGroup.POST("/update-profile", patient, endpoint.UpdateProfile)
		userGroup.POST("/book-appointment", patient, endpoint.BookAppointment)
		userGroup.GET("/appointments", patient, endpoint.ListAppointments)
		userGroup.POST("/cancel-appointment", patient, endpoint.UserCancelAppointment)
		userGroup.POST("/reschedule-appointment", patient, endpoint.RescheduleAppointment)
		userGroup.POST("/payment-razorpay", patient, endpoint.PaymentRazorpay)
		userGroup.POST("/verify-razorpay", patient, endpoint.VerifyRazorpay)
	}

	return router
}
