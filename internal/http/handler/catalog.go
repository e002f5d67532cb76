package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"catalogapi/internal/query"
	"catalogapi/internal/service"
)

// parseID reads the :id route parameter as a positive integer.
func parseID(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx) error {
	return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
}

// ListRecords serves a filtered, ordered and paginated listing. Every query
// string parameter is handed to the service untouched.
func ListRecords[T any](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := svc.List(c.UserContext(), query.Params(c.Queries()))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(page)
	}
}

func GetRecord[T any](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		out, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(out)
	}
}

func CreateRecord[T any](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := new(T)
		if err := c.BodyParser(in); err != nil {
			return respondError(c, malformedBody())
		}
		out, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(out)
	}
}

// UpdateRecord replaces the record; the id in the path wins over any id in the body.
func UpdateRecord[T any](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		in := new(T)
		if err := c.BodyParser(in); err != nil {
			return respondError(c, malformedBody())
		}
		out, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(out)
	}
}

func DeleteRecord[T any](svc service.CatalogService[T]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c)
		if !ok {
			return invalidID(c)
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
