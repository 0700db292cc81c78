package echoServer

import (
	"libms/app/echoServer/controller/academic"
	"libms/app/echoServer/controller/auth"
	"libms/app/echoServer/controller/book"
	"libms/app/echoServer/controller/transaction"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth        *auth.Controller
	Book        *book.Controller
	Transaction *transaction.Controller
	Academic    *academic.Controller
	JWTSecret   string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/api/auth")
	pub.POST("/register", c.Auth.Register)
	pub.POST("/login", c.Auth.Login)

	// Authenticated
	api := e.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(c.JWTSecret),
		TokenLookup: "header:Authorization:Bearer ",
	}))
	api.Use(ResolveIdentity())
	admin := RequireRole("admin")

	// Profile
	api.GET("/auth/profile", c.Auth.Profile)
	api.PUT("/auth/profile", c.Auth.UpdateProfile)

	// Books
	api.GET("/books", c.Book.List)
	api.GET("/books/barcode/:barcode", c.Book.DetailByBarcode)
	api.GET("/books/:id", c.Book.Detail)
	api.POST("/books", c.Book.Create, admin)
	api.PUT("/books/:id", c.Book.Update, admin)

	// Lifecycle
	api.POST("/books/allot", c.Book.Allot, admin)
	api.POST("/books/return", c.Book.Return)
	api.POST("/books/preorder", c.Book.Preorder)

	// Transactions
	api.GET("/transactions", c.Transaction.List)
	api.GET("/transactions/user/:id", c.Transaction.ByUser)
	api.GET("/transactions/stats", c.Transaction.Stats, admin)
	api.GET("/transactions/overdue", c.Transaction.Overdue, admin)
	api.GET("/transactions/export", c.Transaction.Export, admin)

	// Academic hierarchy
	api.GET("/academic/streams", c.Academic.Streams)
	api.POST("/academic/streams", c.Academic.AddStream, admin)
	api.GET("/academic/courses", c.Academic.Courses)
	api.POST("/academic/courses", c.Academic.AddCourse, admin)
	api.GET("/academic/subjects", c.Academic.Subjects)
	api.POST("/academic/subjects", c.Academic.AddSubject, admin)
	api.GET("/academic/subjects/:id/books", c.Academic.SubjectBooks)
	api.GET("/academic/hierarchy", c.Academic.Hierarchy)
}
