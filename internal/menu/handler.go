package menu

import (
	"encoding/json"

	"resto-backend/internal/auth"
	"resto-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type MenuItemResponse struct {
	ID          uint        `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category"`
	ImageURL    string      `json:"image_url"`
	DietaryInfo []string    `json:"dietary_info"`
	Available   *bool       `json:"available,omitempty"`
}

// MenuItemRequest is accepted as JSON or as an HTML form. Price is a
// json.Number so both 80 and "80.00" decode.
type MenuItemRequest struct {
	Name        *string      `json:"name" form:"name"`
	Description *string      `json:"description" form:"description"`
	Price       *json.Number `json:"price" form:"price"`
	Category    *string      `json:"category" form:"category"`
	ImageURL    *string      `json:"image_url" form:"image_url"`
	DietaryInfo []string     `json:"dietary_info" form:"dietary_info"`
	Available   *bool        `json:"available" form:"available"`
}

func (r MenuItemRequest) input() Input {
	in := Input{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		DietaryInfo: r.DietaryInfo,
		Available:   r.Available,
	}
	if r.Price != nil {
		p := r.Price.String()
		in.Price = &p
	}
	return in
}

func toResponse(item models.MenuItem, withAvailability bool) MenuItemResponse {
	tags := []string(item.DietaryInfo)
	if tags == nil {
		tags = []string{}
	}
	res := MenuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Price:       json.Number(item.Price.StringFixed(2)),
		Category:    item.Category,
		ImageURL:    item.ImageURL,
		DietaryInfo: tags,
	}
	if withAvailability {
		available := item.Available
		res.Available = &available
	}
	return res
}

func toResponses(items []models.MenuItem, withAvailability bool) []MenuItemResponse {
	res := make([]MenuItemResponse, 0, len(items))
	for _, it := range items {
		res = append(res, toResponse(it, withAvailability))
	}
	return res
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid menu item id")
	}
	return uint(id), nil
}

// GET /api/menu
func PublicMenuHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListAvailable(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toResponses(items, false))
	}
}

// GET /admin/menu, GET /api/admin/menu
func ListAllHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListAll(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(toResponses(items, true))
	}
}

// GET /api/admin/menu/:id
func GetHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		item, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*item, true))
	}
}

// POST /api/admin/menu
func CreateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body, price must be numeric")
		}

		item, err := svc.Create(c.UserContext(), auth.ActorFrom(c), body.input())
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*item, true))
	}
}

// PUT /api/admin/menu/:id
func UpdateHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		var body MenuItemRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body, price must be numeric")
		}

		item, err := svc.Update(c.UserContext(), auth.ActorFrom(c), id, body.input())
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*item, true))
	}
}

// DELETE /api/admin/menu/:id
func DeleteHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseID(c)
		if err != nil {
			return err
		}
		if err := svc.Delete(c.UserContext(), auth.ActorFrom(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// POST /api/admin/menu/import (multipart, field "file")
func ImportHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "an .xlsx file is required in field \"file\"")
		}
		file, err := fh.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "could not open uploaded file")
		}
		defer file.Close()

		items, err := svc.Import(c.UserContext(), auth.ActorFrom(c), file)
		if err != nil {
			return err
		}

		res := make([]MenuItemResponse, 0, len(items))
		for _, it := range items {
			res = append(res, toResponse(*it, true))
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":  true,
			"imported": len(items),
			"items":    res,
		})
	}
}
