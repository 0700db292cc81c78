// Package main library management API.
//
// @title           Library Management API
// @version         1.0
// @description     Catalog, circulation and preorder service for the campus library.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"log/slog"
	"os"

	"libms/app/echoServer"
	academicctrl "libms/app/echoServer/controller/academic"
	authctrl "libms/app/echoServer/controller/auth"
	bookctrl "libms/app/echoServer/controller/book"
	txctrl "libms/app/echoServer/controller/transaction"
	"libms/app/echoServer/validation"
	"libms/config"
	academicrepo "libms/repository/academic"
	bookrepo "libms/repository/book"
	preorderrepo "libms/repository/preorder"
	txrepo "libms/repository/transaction"
	userrepo "libms/repository/user"
	academicsvc "libms/service/academic"
	authsvc "libms/service/auth"
	booksvc "libms/service/book"
	"libms/service/lifecycle"
	txsvc "libms/service/transaction"
	"libms/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB: *sql.DB over a single-file store
	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		log.Error("db open failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// repos
	ur := userrepo.New(db)
	br := bookrepo.New(db)
	tr := txrepo.New(db)
	pr := preorderrepo.New(db)
	ar := academicrepo.New(db)

	// services
	as := authsvc.New(ur, cfg.JWTSecret)
	bs := booksvc.New(br)
	ls := lifecycle.New(db, br, tr, pr)
	ts := txsvc.New(tr)
	acs := academicsvc.New(ar)

	// expired preorders lapse on a schedule; reads in between are handled
	// lazily by the coordinator
	sweeper := lifecycle.NewSweeper(ls, log)
	if err := sweeper.Start(); err != nil {
		log.Error("sweeper start failed", "err", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Lifecycle: ls, V: v, Log: log}
	txC := &txctrl.Controller{Svc: ts, Log: log}
	academicC := &academicctrl.Controller{Svc: acs, Books: bs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{"status": "healthy"})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:        authC,
		Book:        bookC,
		Transaction: txC,
		Academic:    academicC,
		JWTSecret:   cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
