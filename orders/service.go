package orders

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/zeptools/gw-cardpress/apis/mailer"
	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/render"
	"github.com/zeptools/gw-cardpress/locks/keyonlylocks"
	"github.com/zeptools/gw-cardpress/nullable"
	"github.com/zeptools/gw-cardpress/schedjobs"
	"github.com/zeptools/gw-cardpress/shops"
)

const (
	EmailTemplateKey = "email/order"

	DefaultRedeliverAfter = 5 * time.Minute
	DefaultMaxAttempts    = 3
	DefaultDeliverTimeout = 2 * time.Minute
	StaleAfter            = time.Hour

	StaleSweepJobID = "orders-stale-sweep"
	RetryJobID      = "orders-redeliver"

	retryBatch = 20
)

type Renderer interface {
	Render(ctx context.Context, content compose.CardContent, opts render.Options) ([]byte, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
}

type TemplateStore interface {
	Render(w io.Writer, key string, data any) error
}

// Scheduler takes one-time redelivery jobs
type Scheduler interface {
	AddOneTimeJob(job *schedjobs.OneTimeJob) error
	HasOneTimeJob(jobID string) bool
	DeleteOneTimeJob(jobID string)
}

type CronRegistrar interface {
	AddCronJob(job *schedjobs.CronJob)
}

// Service runs the order pipeline: validate, store, render, mail.
type Service struct {
	Shops     shops.Store
	Orders    Store
	Renderer  Renderer
	Mail      Mailer
	Templates TemplateStore
	Scheduler Scheduler // nil disables one-time redelivery
	Locks     *keyonlylocks.Store
	Limits    Limits
	Now       func() time.Time

	RedeliverAfter time.Duration
	MaxAttempts    int
	DeliverTimeout time.Duration // bounds one send and status update, 0 = none
}

func NewService(shopStore shops.Store, orderStore Store, renderer Renderer, mail Mailer, templates TemplateStore) *Service {
	return &Service{
		Shops:          shopStore,
		Orders:         orderStore,
		Renderer:       renderer,
		Mail:           mail,
		Templates:      templates,
		Locks:          &keyonlylocks.Store{},
		Limits:         DefaultLimits(),
		Now:            time.Now,
		RedeliverAfter: DefaultRedeliverAfter,
		MaxAttempts:    DefaultMaxAttempts,
		DeliverTimeout: DefaultDeliverTimeout,
	}
}

// EmailData feeds the order notification template
type EmailData struct {
	ShopName   string
	ShortID    string
	PhoneLast4 string
	Text       string
	Signature  string
}

// Submit stores a new order and tries to deliver it right away.
// A failed delivery is not an error here: the order comes back with status failed.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Order, error) {
	if err := sub.Normalize(s.Limits); err != nil {
		return nil, err
	}
	shop, err := s.findShop(ctx, sub)
	if err != nil {
		return nil, err
	}
	o := &Order{
		ShopID:       shop.ID,
		CustomerText: sub.Text,
		CustomerSign: nullable.StringFromEmpty(sub.Signature),
		PhoneLast4:   sub.PhoneLast4,
		DesignID:     sub.DesignID,
		FontID:       sub.FontID,
	}
	if err = s.Orders.Create(ctx, o, shop.Slug); err != nil {
		return nil, err
	}
	o.Shop = shop
	log.Printf("[INFO][ORDERS] order %s created for shop %q", o.ShortID, shop.Slug)
	if err = s.deliver(ctx, o, shop, true); err != nil {
		log.Printf("[WARN][ORDERS] order %s delivery failed: %v", o.ShortID, err)
	}
	return o, nil
}

func (s *Service) findShop(ctx context.Context, sub Submission) (*shops.Shop, error) {
	var shop *shops.Shop
	var err error
	switch {
	case sub.ShopID > 0:
		shop, err = s.Shops.FindByID(ctx, sub.ShopID)
	case sub.ShopSlug != "":
		shop, err = s.Shops.FindBySlug(ctx, sub.ShopSlug)
	default:
		return nil, &ValidationError{Field: "shop_id", Reason: "required"}
	}
	if errors.Is(err, shops.ErrNotFound) || (err == nil && !shop.IsActive) {
		return nil, ErrShopNotFound
	}
	return shop, err
}

// CardContent maps an order to the compositor input.
// The footer carries the shop name only when the shop opted in.
func CardContent(o *Order, shop *shops.Shop) compose.CardContent {
	c := compose.CardContent{
		Message:    o.CustomerText,
		Signature:  o.CustomerSign.ForceValue(),
		ThemeKey:   o.DesignID,
		FontChoice: o.FontID,
	}
	if shop != nil && shop.ShowNameOnPDF {
		c.FooterLabel = shop.Name
	}
	return c
}

func attachmentName(o *Order) string {
	return "card-" + o.ShortID + ".pdf"
}

// RenderPDF renders the order card. The bytes depend only on the order and shop.
func (s *Service) RenderPDF(ctx context.Context, o *Order, shop *shops.Shop) ([]byte, string, error) {
	pdf, err := s.Renderer.Render(ctx, CardContent(o, shop), render.Options{
		JobTicket: o.ShortID,
		Title:     "Card " + o.ShortID,
	})
	if err != nil {
		return nil, "", err
	}
	return pdf, attachmentName(o), nil
}

// RenderByID loads the order with its shop and renders it
func (s *Service) RenderByID(ctx context.Context, id int64) ([]byte, string, error) {
	o, err := s.Orders.FindByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	shop, err := s.Shops.FindByID(ctx, o.ShopID)
	if err != nil && !errors.Is(err, shops.ErrNotFound) {
		return nil, "", err
	}
	return s.RenderPDF(ctx, o, shop)
}

// Preview renders a submission without storing it. The shop is optional.
func (s *Service) Preview(ctx context.Context, sub Submission) ([]byte, error) {
	if err := sub.Normalize(s.Limits); err != nil {
		return nil, err
	}
	var shop *shops.Shop
	if sub.HasShop() {
		var err error
		if shop, err = s.findShop(ctx, sub); err != nil {
			return nil, err
		}
	}
	o := &Order{
		CustomerText: sub.Text,
		CustomerSign: nullable.StringFromEmpty(sub.Signature),
		DesignID:     sub.DesignID,
		FontID:       sub.FontID,
	}
	return s.Renderer.Render(ctx, CardContent(o, shop), render.Options{Title: "Preview"})
}

func lockKey(id int64) string {
	return "order:" + strconv.FormatInt(id, 10)
}

// deliver sends the card and records the attempt. Only one delivery per order runs at a time.
// It outlives a cancelled caller so the attempt is always recorded.
func (s *Service) deliver(ctx context.Context, o *Order, shop *shops.Shop, reschedule bool) error {
	release, ok := s.Locks.TryAcquire(lockKey(o.ID))
	if !ok {
		return ErrDeliveryInProgress
	}
	defer release()

	ctx = context.WithoutCancel(ctx)
	if s.DeliverTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.DeliverTimeout)
		defer cancel()
	}

	sendErr := s.send(ctx, o, shop)
	status, sentAt := StatusSent, nullable.TimeFrom(s.Now().UTC())
	if sendErr != nil {
		status, sentAt = StatusFailed, nullable.Time{}
	}
	if err := s.Orders.SetStatus(ctx, o.ID, status, sentAt); err != nil {
		return errors.Join(sendErr, fmt.Errorf("orders: set status %s: %w", status, err))
	}
	o.Status = status
	o.Attempts++
	if !sentAt.IsNil() {
		o.SentAt = sentAt
	}
	if sendErr != nil {
		if reschedule {
			s.scheduleRedelivery(o)
		}
		return sendErr
	}
	if s.Scheduler != nil {
		s.Scheduler.DeleteOneTimeJob(redeliveryJobID(o.ID))
	}
	log.Printf("[INFO][ORDERS] order %s sent to %s", o.ShortID, shop.Email)
	return nil
}

func (s *Service) send(ctx context.Context, o *Order, shop *shops.Shop) error {
	pdf, filename, err := s.RenderPDF(ctx, o, shop)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	err = s.Templates.Render(&body, EmailTemplateKey, EmailData{
		ShopName:   shop.Name,
		ShortID:    o.ShortID,
		PhoneLast4: o.PhoneLast4,
		Text:       o.CustomerText,
		Signature:  o.CustomerSign.ForceValue(),
	})
	if err != nil {
		return fmt.Errorf("orders: email body: %w", err)
	}
	_, err = s.Mail.Send(ctx, mailer.Message{
		To:          []string{shop.Email},
		Subject:     "Листівка до замовлення #" + o.ShortID,
		HTML:        body.String(),
		Attachments: []mailer.Attachment{{Filename: filename, Content: pdf}},
	})
	return err
}

func redeliveryJobID(id int64) string {
	return "order-redeliver:" + strconv.FormatInt(id, 10)
}

func (s *Service) scheduleRedelivery(o *Order) {
	if s.Scheduler == nil || o.Attempts >= s.MaxAttempts {
		return
	}
	jobID := redeliveryJobID(o.ID)
	if s.Scheduler.HasOneTimeJob(jobID) {
		return
	}
	id := o.ID
	err := s.Scheduler.AddOneTimeJob(&schedjobs.OneTimeJob{
		ID:       jobID,
		ExecTime: s.Now().Add(s.RedeliverAfter),
		Task: func(ctx context.Context) error {
			o, err := s.Orders.FindByID(ctx, id)
			if err != nil {
				return err
			}
			if o.Status == StatusSent {
				return nil
			}
			return s.Redeliver(ctx, o)
		},
	})
	if err != nil {
		log.Printf("[WARN][ORDERS] order %s: redelivery not scheduled: %v", o.ShortID, err)
	}
}

// Redeliver sends o again whatever its status
func (s *Service) Redeliver(ctx context.Context, o *Order) error {
	shop, err := s.Shops.FindByID(ctx, o.ShopID)
	if errors.Is(err, shops.ErrNotFound) {
		return ErrShopNotFound
	}
	if err != nil {
		return err
	}
	o.Shop = shop
	return s.deliver(ctx, o, shop, true)
}

func (s *Service) RedeliverShortID(ctx context.Context, shortID string) (*Order, error) {
	o, err := s.Orders.FindByShortID(ctx, shortID)
	if err != nil {
		return nil, err
	}
	return o, s.Redeliver(ctx, o)
}

// SweepStale fails orders that stayed pending past StaleAfter
func (s *Service) SweepStale(ctx context.Context) error {
	n, err := s.Orders.FailStalePending(ctx, s.Now().Add(-StaleAfter))
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[INFO][ORDERS] %d stale pending orders marked failed", n)
	}
	return nil
}

// RetryFailed redelivers failed orders that still have attempts left
func (s *Service) RetryFailed(ctx context.Context) error {
	list, err := s.Orders.ListRetryable(ctx, s.MaxAttempts, retryBatch)
	if err != nil {
		return err
	}
	var errs []error
	sent := 0
	for _, o := range list.Items() {
		shop, err := s.Shops.FindByID(ctx, o.ShopID)
		if err != nil {
			errs = append(errs, fmt.Errorf("order %s: %w", o.ShortID, err))
			continue
		}
		err = s.deliver(ctx, o, shop, false)
		switch {
		case errors.Is(err, ErrDeliveryInProgress):
		case err != nil:
			errs = append(errs, fmt.Errorf("order %s: %w", o.ShortID, err))
		default:
			sent++
		}
	}
	if list.Len() > 0 {
		log.Printf("[INFO][ORDERS] retry: %d/%d failed orders sent", sent, list.Len())
	}
	return errors.Join(errs...)
}

// RegisterJobs adds the hourly stale sweep and the 15-minute retry
func (s *Service) RegisterJobs(r CronRegistrar) {
	r.AddCronJob(schedjobs.NewCronJob(StaleSweepJobID, s.SweepStale).Hourly(0))
	r.AddCronJob(schedjobs.NewCronJob(RetryJobID, s.RetryFailed).EveryMinutes(15))
}
