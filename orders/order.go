package orders

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/zeptools/gw-cardpress/cards/typefaces"
	"github.com/zeptools/gw-cardpress/nullable"
	"github.com/zeptools/gw-cardpress/shops"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

var (
	ErrNotFound           = errors.New("order not found")
	ErrShopNotFound       = errors.New("shop not found")
	ErrDeliveryInProgress = errors.New("order delivery already in progress")
	ErrShortIDExhausted   = errors.New("no free short id")
)

type Order struct {
	ID           int64           `json:"id"`
	ShopID       int64           `json:"shop_id"`
	ShortID      string          `json:"short_id"`
	CustomerText string          `json:"customer_text"`
	CustomerSign nullable.String `json:"customer_sign"`
	PhoneLast4   string          `json:"customer_phone_last4"`
	DesignID     string          `json:"design_id"`
	FontID       string          `json:"font_id"`
	Status       Status          `json:"status"`
	Attempts     int             `json:"attempts"`
	PDFURL       nullable.String `json:"pdf_url"`
	SentAt       nullable.Time   `json:"sent_at"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Shop *shops.Shop `json:"shop,omitempty"` // belongs-to, loaded on demand
}

func (o *Order) GetID() int64 { return o.ID }

func (o *Order) TargetFields() []any {
	return []any{
		&o.ID, &o.ShopID, &o.ShortID, &o.CustomerText, &o.CustomerSign, &o.PhoneLast4,
		&o.DesignID, &o.FontID, &o.Status, &o.Attempts, &o.PDFURL, &o.SentAt, &o.CreatedAt, &o.UpdatedAt,
	}
}

// Limits bound customer input in runes after NFC normalization
type Limits struct {
	MaxText      int `json:"max_text"`
	MaxSignature int `json:"max_signature"`
}

func DefaultLimits() Limits {
	return Limits{MaxText: 200, MaxSignature: 20}
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Submission is the card builder payload
type Submission struct {
	ShopID     int64  `json:"shop_id"`
	ShopSlug   string `json:"shop_slug"`
	Text       string `json:"text"`
	Signature  string `json:"signature"`
	DesignID   string `json:"design_id"`
	FontID     string `json:"font_id"`
	PhoneLast4 string `json:"phone_last4"`
}

// Normalize trims and NFC-normalizes the card text fields and checks them against l.
func (s *Submission) Normalize(l Limits) error {
	s.Text = norm.NFC.String(strings.TrimSpace(s.Text))
	s.Signature = norm.NFC.String(strings.TrimSpace(s.Signature))
	s.ShopSlug = strings.ToLower(strings.TrimSpace(s.ShopSlug))
	s.DesignID = strings.TrimSpace(s.DesignID)
	s.FontID = strings.TrimSpace(s.FontID)
	s.PhoneLast4 = strings.TrimSpace(s.PhoneLast4)

	if s.Text == "" {
		return &ValidationError{Field: "text", Reason: "required"}
	}
	if n := utf8.RuneCountInString(s.Text); n > l.MaxText {
		return &ValidationError{Field: "text", Reason: fmt.Sprintf("too long (%d > %d characters)", n, l.MaxText)}
	}
	if n := utf8.RuneCountInString(s.Signature); n > l.MaxSignature {
		return &ValidationError{Field: "signature", Reason: fmt.Sprintf("too long (%d > %d characters)", n, l.MaxSignature)}
	}
	if s.PhoneLast4 != "" && !fourDigits(s.PhoneLast4) {
		return &ValidationError{Field: "phone_last4", Reason: "must be exactly 4 digits"}
	}
	if s.FontID == "" {
		s.FontID = typefaces.DefaultChoice
	}
	return nil
}

func (s *Submission) HasShop() bool {
	return s.ShopID > 0 || s.ShopSlug != ""
}

func fourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < 4; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NewShortID builds "<first 3 slug chars upper>-<1000..9999>". intN must return [0, n).
func NewShortID(slug string, intN func(n int) int) string {
	prefix := strings.ToUpper(slug)
	if utf8.RuneCountInString(prefix) > 3 {
		prefix = string([]rune(prefix)[:3])
	}
	if prefix == "" {
		prefix = "CRD"
	}
	if intN == nil {
		intN = rand.IntN
	}
	return prefix + "-" + strconv.Itoa(1000+intN(9000))
}
