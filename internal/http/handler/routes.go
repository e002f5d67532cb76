package handler

import (
	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/http/middleware"
	"catalogapi/internal/model"
	"catalogapi/internal/service"
)

// Services are the use cases the HTTP layer exposes.
type Services struct {
	Auth       service.AuthService
	Regions    service.CatalogService[model.Region]
	Patrons    service.CatalogService[model.Patron]
	Publishers service.CatalogService[model.Publisher]
	Books      service.BookService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Routes that
// need an authenticated caller get the RequireAuth guard explicitly.
func RegisterRoutes(app *fiber.App, db Pinger, svc Services) {
	authed := middleware.RequireAuth(svc.Auth)

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	auth := app.Group("/auth")
	auth.Post("/register", Register(svc.Auth))
	auth.Post("/login", Login(svc.Auth))
	auth.Post("/logout", authed, Logout(svc.Auth))
	auth.Post("/changepassword", authed, ChangePassword(svc.Auth))

	regions := app.Group("/regions")
	regions.Get("/", ListRecords(svc.Regions))
	regions.Post("/", CreateRecord(svc.Regions))
	regions.Get("/:id", authed, GetRecord(svc.Regions))
	regions.Put("/:id", authed, UpdateRecord(svc.Regions))
	regions.Delete("/:id", authed, DeleteRecord(svc.Regions))

	patrons := app.Group("/booklovers")
	patrons.Get("/", ListRecords(svc.Patrons))
	patrons.Post("/", authed, CreateRecord(svc.Patrons))
	patrons.Get("/:id", authed, GetRecord(svc.Patrons))
	patrons.Put("/:id", authed, UpdateRecord(svc.Patrons))
	patrons.Delete("/:id", authed, DeleteRecord(svc.Patrons))

	publishers := app.Group("/publishers")
	publishers.Get("/", ListRecords(svc.Publishers))
	publishers.Post("/", authed, CreateRecord(svc.Publishers))
	publishers.Get("/:id", GetRecord(svc.Publishers))
	publishers.Put("/:id", authed, UpdateRecord(svc.Publishers))
	publishers.Delete("/:id", authed, DeleteRecord(svc.Publishers))

	books := app.Group("/books")
	books.Get("/", ListRecords[model.Book](svc.Books))
	books.Post("/", authed, CreateRecord[model.Book](svc.Books))
	books.Get("/:id", GetRecord[model.Book](svc.Books))
	books.Put("/:id", authed, UpdateRecord[model.Book](svc.Books))
	books.Delete("/:id", authed, DeleteRecord[model.Book](svc.Books))
	books.Post("/:id/cover", authed, UploadCover(svc.Books))
	books.Get("/:id/cover", GetCover(svc.Books))
}
