package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxPrice caps a menu price in minor units.
const MaxPrice = 1_000_000_000_000

// MenuItem represents a sellable product
type MenuItem struct {
	ID          int64
	Name        string
	Category    string
	Price       Money
	IsAvailable bool
	PhotoURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type MenuItemInput struct {
	Name        string
	Category    string
	Price       int64
	IsAvailable *bool
	PhotoURL    string
}

// NewMenuItem validates input. Availability defaults to true.
func NewMenuItem(in MenuItemInput) (*MenuItem, error) {
	var errs ValidationErrors

	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 2 {
		errs.add("name", CodeTooShort, "menu name must be at least 2 characters")
	}
	category := strings.TrimSpace(in.Category)
	if utf8.RuneCountInString(category) < 2 {
		errs.add("category", CodeTooShort, "category must be at least 2 characters")
	}
	if in.Price < 0 {
		errs.add("price", CodeOutOfRange, "price must not be negative")
	} else if in.Price > MaxPrice {
		errs.add("price", CodeOutOfRange, fmt.Sprintf("price must not exceed %d", int64(MaxPrice)))
	}

	item := &MenuItem{
		Name:        name,
		Category:    category,
		Price:       Money(in.Price),
		IsAvailable: true,
	}
	if in.IsAvailable != nil {
		item.IsAvailable = *in.IsAvailable
	}

	if photo := strings.TrimSpace(in.PhotoURL); photo != "" {
		u, err := url.ParseRequestURI(photo)
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs.add("photo_url", CodeInvalidValue, "photo url must be an absolute http(s) url")
		}
		item.PhotoURL = &photo
	}

	if err := errs.orNil(); err != nil {
		return nil, err
	}
	return item, nil
}
