package echoServer

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	authctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/auth"
	bookctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/book"
	catalogctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/catalog"
	readerctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/reader"
	rentalctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/rental"
	uploadctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/upload"
)

type C struct {
	Auth      *authctrl.Controller
	Book      *bookctrl.Controller
	Catalog   *catalogctrl.Controller
	Reader    *readerctrl.Controller
	Rental    *rentalctrl.Controller
	Upload    *uploadctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	e.GET("/health", func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/uploads/*", c.Upload.Serve)

	// Public
	pub := e.Group("/api")
	pub.POST("/auth/signup", c.Auth.Signup)
	pub.POST("/auth/login", c.Auth.Login)

	pub.GET("/books", c.Book.List)
	pub.GET("/books/filters", c.Book.Filters)
	pub.GET("/books/:id", c.Book.Detail)
	pub.GET("/books/:id/media", c.Book.ListMedia)

	pub.GET("/categories", c.Catalog.ListCategories)
	pub.GET("/series", c.Catalog.ListSeries)
	pub.GET("/publishers", c.Catalog.ListPublishers)

	pub.POST("/rentals", c.Rental.Create)
	pub.GET("/rentals", c.Rental.List)
	pub.GET("/rentals/queue/:book_id", c.Rental.Queue)

	pub.POST("/readers", c.Reader.Create)

	// Authenticated
	authed := e.Group("/api")
	authed.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(ctx echo.Context) jwt.Claims { return jwt.MapClaims{} },
		TokenLookup:   "header:Authorization",
	}))
	authed.Use(ExtractClaims())

	authed.GET("/auth/me", c.Auth.Me)
	authed.POST("/auth/reset-password", c.Auth.ResetPassword)

	// Admin
	admin := authed.Group("", AdminOnly())

	admin.POST("/books", c.Book.Create)
	admin.PUT("/books/:id", c.Book.Update)
	admin.DELETE("/books/:id", c.Book.Delete)
	admin.POST("/books/:id/duplicate", c.Book.Duplicate)
	admin.POST("/books/:id/force-available", c.Book.ForceAvailable)
	admin.POST("/books/import", c.Book.Import)
	admin.DELETE("/books/media/:media_id", c.Book.DeleteMedia)

	admin.POST("/categories", c.Catalog.CreateCategory)
	admin.PUT("/categories/:id", c.Catalog.UpdateCategory)
	admin.DELETE("/categories/:id", c.Catalog.DeleteCategory)
	admin.POST("/series", c.Catalog.CreateSeries)
	admin.PUT("/series/:id", c.Catalog.UpdateSeries)
	admin.DELETE("/series/:id", c.Catalog.DeleteSeries)
	admin.POST("/publishers", c.Catalog.CreatePublisher)
	admin.PUT("/publishers/:id", c.Catalog.UpdatePublisher)
	admin.DELETE("/publishers/:id", c.Catalog.DeletePublisher)

	admin.PUT("/rentals/:id/status", c.Rental.SetStatus)

	admin.GET("/readers", c.Reader.List)
	admin.GET("/readers/:id", c.Reader.Detail)
	admin.PUT("/readers/:id", c.Reader.Update)
	admin.DELETE("/readers/:id", c.Reader.Delete)
	admin.POST("/readers/:id/merge", c.Reader.Merge)
	admin.POST("/readers/:id/convert-to-child", c.Reader.ConvertToChild)
	admin.POST("/readers/:id/children", c.Reader.AddChild)
	admin.PUT("/readers/:id/children/:child_id", c.Reader.UpdateChild)
	admin.DELETE("/readers/:id/children/:child_id", c.Reader.DeleteChild)
	admin.PUT("/children/:id/reassign", c.Reader.ReassignChild)

	admin.POST("/upload/cover", c.Upload.Cover)
	admin.POST("/upload/media", c.Upload.Media)

	admin.GET("/users", c.Auth.ListUsers)
	admin.PUT("/users/:id/role", c.Auth.UpdateRole)
}
