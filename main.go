// Package main ukrlibrary API.
//
// @title           ukrlibrary API
// @version         1.0
// @description     Library catalog and lending administration service: books, readers, rental requests with a per-book waitlist.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/SenyaGur/ukrlibrary/app/echoServer"
	authctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/auth"
	bookctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/book"
	catalogctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/catalog"
	readerctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/reader"
	rentalctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/rental"
	uploadctrl "github.com/SenyaGur/ukrlibrary/app/echoServer/controller/upload"
	"github.com/SenyaGur/ukrlibrary/app/echoServer/validation"
	"github.com/SenyaGur/ukrlibrary/config"
	authrepo "github.com/SenyaGur/ukrlibrary/repository/auth"
	bookrepo "github.com/SenyaGur/ukrlibrary/repository/book"
	catalogrepo "github.com/SenyaGur/ukrlibrary/repository/catalog"
	readerrepo "github.com/SenyaGur/ukrlibrary/repository/reader"
	rentalrepo "github.com/SenyaGur/ukrlibrary/repository/rental"
	authsvc "github.com/SenyaGur/ukrlibrary/service/auth"
	booksvc "github.com/SenyaGur/ukrlibrary/service/book"
	catalogsvc "github.com/SenyaGur/ukrlibrary/service/catalog"
	readersvc "github.com/SenyaGur/ukrlibrary/service/reader"
	rentalsvc "github.com/SenyaGur/ukrlibrary/service/rental"
	uploadsvc "github.com/SenyaGur/ukrlibrary/service/upload"
	"github.com/SenyaGur/ukrlibrary/util/blob"
	"github.com/SenyaGur/ukrlibrary/util/database"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db); err != nil {
		log.Error("schema apply failed", "err", err)
		os.Exit(1)
	}

	// upload storage
	store, err := blob.Open(ctx, blob.Options{
		Driver:          blob.Driver(cfg.UploadDriver),
		Root:            cfg.UploadDir,
		Bucket:          cfg.S3Bucket,
		Region:          cfg.S3Region,
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		PathStyle:       cfg.S3PathStyle,
	})
	if err != nil {
		log.Error("upload storage init failed", "err", err)
		os.Exit(1)
	}

	// repos
	ar := authrepo.New(db)
	br := bookrepo.New(db)
	cr := catalogrepo.New(db)
	rdr := readerrepo.New(db)
	rr := rentalrepo.New(db)

	// services
	as := authsvc.New(ar, cfg.JWTSecret, log)
	cs := catalogsvc.New(cr)
	bs := booksvc.New(br, rr, cr, log)
	rds := readersvc.New(rdr, rr, log)
	rs := rentalsvc.New(rr, rdr, log)
	us := uploadsvc.New(store, bs, log)

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, V: v, Log: log}
	catalogC := &catalogctrl.Controller{Svc: cs, V: v, Log: log}
	readerC := &readerctrl.Controller{Svc: rds, V: v, Log: log}
	rentalC := &rentalctrl.Controller{Svc: rs, V: v, Log: log}
	uploadC := &uploadctrl.Controller{Svc: us, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	echoServer.Register(e, echoServer.C{
		Auth:    authC,
		Book:    bookC,
		Catalog: catalogC,
		Reader:  readerC,
		Rental:  rentalC,
		Upload:  uploadC,

		JWTSecret: cfg.JWTSecret,
	})

	log.Info("starting server", "port", cfg.Port, "env", cfg.Env, "upload_driver", store.Driver())

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
