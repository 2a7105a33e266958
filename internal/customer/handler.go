package customer

import (
	"time"

	"resto-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type ReviewRequest struct {
	Email   string `json:"email" form:"email"`
	Rating  int    `json:"rating" form:"rating"`
	Comment string `json:"comment" form:"comment"`
}

type ReviewResponse struct {
	ID           uint   `json:"id"`
	CustomerName string `json:"customer_name"`
	Rating       int    `json:"rating"`
	Comment      string `json:"comment"`
	DatePosted   string `json:"date_posted"`
}

type CustomerResponse struct {
	ID            uint   `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	LoyaltyPoints int64  `json:"loyalty_points"`
	Since         string `json:"since"`
}

func toReviewResponse(r models.Review) ReviewResponse {
	return ReviewResponse{
		ID:           r.ID,
		CustomerName: r.Customer.Name,
		Rating:       r.Rating,
		Comment:      r.Comment,
		DatePosted:   r.DatePosted.UTC().Format(time.RFC3339),
	}
}

// GET /api/reviews?limit=20
func ListReviewsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reviews, err := svc.ListReviews(c.UserContext(), c.QueryInt("limit", 20))
		if err != nil {
			return err
		}
		res := make([]ReviewResponse, 0, len(reviews))
		for _, r := range reviews {
			res = append(res, toReviewResponse(r))
		}
		return c.JSON(res)
	}
}

// POST /api/reviews
func PostReviewHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ReviewRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		review, err := svc.PostReview(c.UserContext(), body.Email, body.Rating, body.Comment)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success": true,
			"review":  toReviewResponse(*review),
		})
	}
}

// GET /admin/customers
func ListCustomersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customers, err := svc.ListCustomers(c.UserContext())
		if err != nil {
			return err
		}
		res := make([]CustomerResponse, 0, len(customers))
		for _, cu := range customers {
			res = append(res, CustomerResponse{
				ID:            cu.ID,
				Name:          cu.Name,
				Email:         cu.Email,
				Phone:         cu.Phone,
				LoyaltyPoints: cu.LoyaltyPoints,
				Since:         cu.CreatedAt.UTC().Format("2006-01-02"),
			})
		}
		return c.JSON(fiber.Map{"customers": res, "total": len(res)})
	}
}
