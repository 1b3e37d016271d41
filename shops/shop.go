package shops

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/zeptools/gw-cardpress/nullable"
)

var (
	ErrNotFound      = errors.New("shop not found")
	ErrDuplicateSlug = errors.New("shop slug already taken")
)

type Shop struct {
	ID            int64           `json:"id"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	LogoURL       nullable.String `json:"logo_url"`
	IsActive      bool            `json:"is_active"`
	ShowNameOnPDF bool            `json:"show_name_on_pdf"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (s *Shop) GetID() int64 { return s.ID }

// TargetFields follows the column order of every shops select statement
func (s *Shop) TargetFields() []any {
	return []any{&s.ID, &s.Slug, &s.Name, &s.Email, &s.LogoURL, &s.IsActive, &s.ShowNameOnPDF, &s.CreatedAt, &s.UpdatedAt}
}

// PublicView hides the contact email from the card builder
type PublicView struct {
	ID            int64           `json:"id"`
	Slug          string          `json:"slug"`
	Name          string          `json:"name"`
	LogoURL       nullable.String `json:"logo_url"`
	ShowNameOnPDF bool            `json:"show_name_on_pdf"`
}

func (s *Shop) Public() PublicView {
	return PublicView{ID: s.ID, Slug: s.Slug, Name: s.Name, LogoURL: s.LogoURL, ShowNameOnPDF: s.ShowNameOnPDF}
}

// Input is the admin create/update payload. Nil flags keep their current (or default) value.
type Input struct {
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	LogoURL       string `json:"logo_url"`
	IsActive      *bool  `json:"is_active"`
	ShowNameOnPDF *bool  `json:"show_name_on_pdf"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]{0,62}[a-z0-9])?$`)

// Normalize trims and lowercases the input, then validates it.
func (in *Input) Normalize() error {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.LogoURL = strings.TrimSpace(in.LogoURL)
	if !slugPattern.MatchString(in.Slug) {
		return &ValidationError{Field: "slug", Reason: "use 1-64 lowercase letters, digits or inner hyphens"}
	}
	if in.Name == "" || len([]rune(in.Name)) > 120 {
		return &ValidationError{Field: "name", Reason: "required, at most 120 characters"}
	}
	addr, err := mail.ParseAddress(in.Email)
	if err != nil {
		return &ValidationError{Field: "email", Reason: "invalid address"}
	}
	in.Email = addr.Address
	return nil
}

// Apply copies the input onto s
func (in *Input) Apply(s *Shop) {
	s.Slug = in.Slug
	s.Name = in.Name
	s.Email = in.Email
	s.LogoURL = nullable.StringFromEmpty(in.LogoURL)
	if in.IsActive != nil {
		s.IsActive = *in.IsActive
	}
	if in.ShowNameOnPDF != nil {
		s.ShowNameOnPDF = *in.ShowNameOnPDF
	}
}

// New builds a shop from a normalized input. Shops start active and show their name.
func (in *Input) New() *Shop {
	s := &Shop{IsActive: true, ShowNameOnPDF: true}
	in.Apply(s)
	return s
}
