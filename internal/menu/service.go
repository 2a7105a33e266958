package menu

import (
	"context"
	"io"
	"sort"
	"strconv"
	"strings"

	"resto-backend/internal/apperr"
	"resto-backend/internal/audit"
	"resto-backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Input carries the editable fields of a menu item. Nil pointers leave the
// current value unchanged on update; on create they take the zero value,
// except Available which defaults to true.
type Input struct {
	Name        *string
	Description *string
	Price       *string
	Category    *string
	ImageURL    *string
	DietaryInfo []string
	Available   *bool
}

type Service struct {
	repo Repository
	log  *logrus.Entry
}

func NewService(repo Repository, log logrus.FieldLogger) *Service {
	return &Service{repo: repo, log: log.WithField("component", "menu")}
}

func (s *Service) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.ListAvailable(ctx)
}

func (s *Service) ListAll(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) Get(ctx context.Context, id uint) (*models.MenuItem, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in Input) (*models.MenuItem, error) {
	item := &models.MenuItem{Available: true, DietaryInfo: pq.StringArray{}}
	if err := apply(item, in); err != nil {
		return nil, err
	}
	if err := validate(item); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, actor, item); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"menu_item_id": item.ID, "user_id": actor.UserID}).Info("menu item created")
	return item, nil
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in Input) (*models.MenuItem, error) {
	item, err := s.repo.Update(ctx, actor, id, func(item *models.MenuItem) error {
		if err := apply(item, in); err != nil {
			return err
		}
		return validate(item)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"menu_item_id": id, "user_id": actor.UserID}).Info("menu item updated")
	return item, nil
}

// Delete removes the catalog entry. Order lines sold from it keep their
// snapshot and lose only the reference.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	if err := s.repo.Delete(ctx, actor, id); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"menu_item_id": id, "user_id": actor.UserID}).Info("menu item deleted")
	return nil
}

// Import creates every row of the spreadsheet or none of them.
func (s *Service) Import(ctx context.Context, actor audit.Actor, r io.Reader) ([]*models.MenuItem, error) {
	inputs, err := ParseSpreadsheet(r)
	if err != nil {
		return nil, err
	}

	items := make([]*models.MenuItem, 0, len(inputs))
	for _, row := range inputs {
		item := &models.MenuItem{Available: true, DietaryInfo: pq.StringArray{}}
		if err := apply(item, row.Input); err != nil {
			return nil, apperr.Validation("row "+strconv.Itoa(row.Line), "%s", err.Error())
		}
		if err := validate(item); err != nil {
			return nil, apperr.Validation("row "+strconv.Itoa(row.Line), "%s", err.Error())
		}
		items = append(items, item)
	}

	if err := s.repo.Create(ctx, actor, items...); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"count": len(items), "user_id": actor.UserID}).Info("menu imported")
	return items, nil
}

func apply(item *models.MenuItem, in Input) error {
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		price, err := ParsePrice(*in.Price)
		if err != nil {
			return err
		}
		item.Price = price
	}
	if in.Category != nil {
		item.Category = strings.ToLower(strings.TrimSpace(*in.Category))
	}
	if in.ImageURL != nil {
		item.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.DietaryInfo != nil {
		item.DietaryInfo = NormalizeTags(in.DietaryInfo)
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	return nil
}

func validate(item *models.MenuItem) error {
	if item.Name == "" {
		return apperr.Validation("name", "must not be empty")
	}
	if item.Category == "" {
		return apperr.Validation("category", "must not be empty")
	}
	if item.Price.IsNegative() {
		return apperr.Validation("price", "must not be negative")
	}
	return nil
}

// ParsePrice accepts a decimal string such as "80" or "12.50".
func ParsePrice(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, apperr.Validation("price", "is required")
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, apperr.Validation("price", "must be numeric")
	}
	if price.IsNegative() {
		return decimal.Zero, apperr.Validation("price", "must not be negative")
	}
	return price.Round(2), nil
}

// NormalizeTags turns free-form dietary labels into a set: trimmed, lower
// case, without duplicates and sorted. Comma separated entries are split.
func NormalizeTags(raw []string) pq.StringArray {
	seen := make(map[string]struct{}, len(raw))
	out := pq.StringArray{}
	for _, entry := range raw {
		for _, tag := range strings.Split(entry, ",") {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}
