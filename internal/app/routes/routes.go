package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/gradebook/internal/app/controllers"
	"github.com/yigit/gradebook/internal/middleware"
	"github.com/yigit/gradebook/internal/web"
)

// Controllers groups every handler the router mounts
type Controllers struct {
	Auth    *controllers.AuthController
	Account *controllers.AccountController
	Student *controllers.StudentController
	Stats   *controllers.StatsController
	Health  *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, sessionAuth *middleware.SessionAuth) {
	router.StaticFS("/static", web.Static())

	// --- Public pages ---
	router.GET("/", c.Auth.Home)
	router.GET("/login", c.Auth.ShowLogin)
	router.POST("/login", c.Auth.Login)
	for _, path := range []string{"/signup", "/register"} {
		router.GET(path, c.Auth.ShowSignup)
		router.POST(path, c.Auth.Signup)
	}
	router.GET("/logout", c.Auth.Logout)

	// --- Public JSON ---
	router.GET("/health", c.Health.Health)
	for _, path := range []string{"/stats", "/stats/", "/api/stats"} {
		router.GET(path, c.Stats.Stats)
	}

	api := router.Group("/api")
	{
		api.POST("/register", c.Auth.APIRegister)
		api.POST("/login", c.Auth.APILogin)
	}

	// --- Authenticated pages ---
	authenticated := router.Group("")
	authenticated.Use(sessionAuth.RequireLogin())
	{
		authenticated.GET("/dashboard", c.Stats.Dashboard)

		authenticated.GET("/account", c.Account.Show)
		authenticated.POST("/account", c.Account.Update)
		authenticated.POST("/account/delete", c.Account.Delete)

		authenticated.GET("/add", c.Student.ShowAdd)
		authenticated.POST("/add", c.Student.Add)
		authenticated.GET("/edit/:id", c.Student.ShowEdit)
		authenticated.POST("/edit/:id", c.Student.Edit)
		authenticated.POST("/delete/:id", c.Student.Delete)
	}
}
