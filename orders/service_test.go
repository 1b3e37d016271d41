package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeptools/gw-cardpress/apis/mailer"
	"github.com/zeptools/gw-cardpress/cards/compose"
	"github.com/zeptools/gw-cardpress/cards/render"
	"github.com/zeptools/gw-cardpress/nullable"
	"github.com/zeptools/gw-cardpress/orm"
	"github.com/zeptools/gw-cardpress/schedjobs"
	"github.com/zeptools/gw-cardpress/shops"
	"github.com/zeptools/gw-cardpress/tpl"
)

type memShops struct {
	shops.Store
	byID map[int64]*shops.Shop
}

func (m *memShops) FindByID(_ context.Context, id int64) (*shops.Shop, error) {
	if s, ok := m.byID[id]; ok {
		return s, nil
	}
	return nil, shops.ErrNotFound
}

func (m *memShops) FindBySlug(_ context.Context, slug string) (*shops.Shop, error) {
	for _, s := range m.byID {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, shops.ErrNotFound
}

type memOrders struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Order
}

var _ Store = (*memOrders)(nil)

func newMemOrders() *memOrders { return &memOrders{byID: map[int64]*Order{}} }

func (m *memOrders) Create(_ context.Context, o *Order, slug string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	o.ID = m.nextID
	o.ShortID = NewShortID(slug, func(int) int { return int(o.ID) })
	o.Status = StatusPending
	o.CreatedAt = created
	cp := *o
	m.byID[o.ID] = &cp
	return nil
}

func (m *memOrders) get(id int64) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) FindByID(_ context.Context, id int64) (*Order, error) { return m.get(id) }

func (m *memOrders) FindByShortID(_ context.Context, short string) (*Order, error) {
	m.mu.Lock()
	var id int64
	for _, o := range m.byID {
		if o.ShortID == short {
			id = o.ID
		}
	}
	m.mu.Unlock()
	return m.get(id)
}

func (m *memOrders) SetStatus(_ context.Context, id int64, status Status, sentAt nullable.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = status
	o.Attempts++
	if !sentAt.IsNil() {
		o.SentAt = sentAt
	}
	return nil
}

func (m *memOrders) all(keep func(*Order) bool) *orm.Collection[*Order, int64] {
	m.mu.Lock()
	defer m.mu.Unlock()
	coll := orm.NewEmptyOrderedCollection[*Order, int64]()
	for id := int64(1); id <= m.nextID; id++ {
		if o, ok := m.byID[id]; ok && keep(o) {
			cp := *o
			coll.Add(&cp)
		}
	}
	return coll
}

func (m *memOrders) ListPage(_ context.Context, _, _ int) (*orm.Collection[*Order, int64], error) {
	return m.all(func(*Order) bool { return true }), nil
}

func (m *memOrders) Count(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.byID)), nil
}

func (m *memOrders) ListRetryable(_ context.Context, maxAttempts, _ int) (*orm.Collection[*Order, int64], error) {
	return m.all(func(o *Order) bool { return o.Status == StatusFailed && o.Attempts < maxAttempts }), nil
}

func (m *memOrders) FailStalePending(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, o := range m.byID {
		if o.Status == StatusPending && o.CreatedAt.Before(before) {
			o.Status = StatusFailed
			n++
		}
	}
	return n, nil
}

type fakeRenderer struct {
	got []compose.CardContent
}

func (f *fakeRenderer) Render(_ context.Context, c compose.CardContent, opts render.Options) ([]byte, error) {
	f.got = append(f.got, c)
	return []byte("%PDF-" + c.Message + "|" + opts.JobTicket), nil
}

type fakeMailer struct {
	err  error
	sent []mailer.Message
}

func (f *fakeMailer) Send(ctx context.Context, msg mailer.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return "msg-1", nil
}

type fakeScheduler struct {
	jobs map[string]*schedjobs.OneTimeJob
	cron []*schedjobs.CronJob
}

func (f *fakeScheduler) AddOneTimeJob(job *schedjobs.OneTimeJob) error {
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeScheduler) HasOneTimeJob(id string) bool {
	_, ok := f.jobs[id]
	return ok
}

func (f *fakeScheduler) DeleteOneTimeJob(id string) { delete(f.jobs, id) }

func (f *fakeScheduler) AddCronJob(job *schedjobs.CronJob) { f.cron = append(f.cron, job) }

type fixture struct {
	svc    *Service
	orders *memOrders
	render *fakeRenderer
	mail   *fakeMailer
	sched  *fakeScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	templates := tpl.NewHTMLTemplateStore()
	require.NoError(t, templates.LoadFS(fstest.MapFS{
		"email/order.gohtml": {Data: []byte(`<p>{{.ShopName}} #{{.ShortID}} {{.PhoneLast4}}</p>`)},
	}))
	f := &fixture{
		orders: newMemOrders(),
		render: &fakeRenderer{},
		mail:   &fakeMailer{},
		sched:  &fakeScheduler{jobs: map[string]*schedjobs.OneTimeJob{}},
	}
	shopStore := &memShops{byID: map[int64]*shops.Shop{
		3: {ID: 3, Slug: "rose-studio", Name: "Rose Studio", Email: "rose@example.com", IsActive: true, ShowNameOnPDF: true},
		4: {ID: 4, Slug: "closed", Name: "Closed", Email: "c@example.com"},
		5: {ID: 5, Slug: "quiet", Name: "Quiet", Email: "q@example.com", IsActive: true},
	}}
	f.svc = NewService(shopStore, f.orders, f.render, f.mail, templates)
	f.svc.Scheduler = f.sched
	f.svc.Now = func() time.Time { return created.Add(2 * time.Hour) }
	return f
}

func TestSubmitSendsCard(t *testing.T) {
	f := newFixture(t)
	o, err := f.svc.Submit(context.Background(), Submission{
		ShopSlug: "rose-studio", Text: "З днем народження!", Signature: "Оля", DesignID: "fun_2", PhoneLast4: "0042",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, o.Status)
	assert.Equal(t, "ROS-1001", o.ShortID)

	require.Len(t, f.mail.sent, 1)
	msg := f.mail.sent[0]
	assert.Equal(t, []string{"rose@example.com"}, msg.To)
	assert.Equal(t, "Листівка до замовлення #ROS-1001", msg.Subject)
	assert.Equal(t, "<p>Rose Studio #ROS-1001 0042</p>", msg.HTML)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "card-ROS-1001.pdf", msg.Attachments[0].Filename)
	assert.Equal(t, "%PDF-З днем народження!|ROS-1001", string(msg.Attachments[0].Content))

	assert.Equal(t, "Rose Studio", f.render.got[0].FooterLabel)
	assert.Equal(t, "fun_2", f.render.got[0].ThemeKey)

	stored, _ := f.orders.get(o.ID)
	assert.Equal(t, StatusSent, stored.Status)
	assert.Equal(t, 1, stored.Attempts)
	assert.False(t, stored.SentAt.IsNil())
}

func TestSubmitHidesFooterWhenShopOptsOut(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Submit(context.Background(), Submission{ShopID: 5, Text: "hi"})
	require.NoError(t, err)
	assert.Empty(t, f.render.got[0].FooterLabel)
}

func TestSubmitRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, Submission{ShopID: 4, Text: "hi"})
	assert.ErrorIs(t, err, ErrShopNotFound)
	_, err = f.svc.Submit(ctx, Submission{ShopSlug: "nope", Text: "hi"})
	assert.ErrorIs(t, err, ErrShopNotFound)

	var verr *ValidationError
	_, err = f.svc.Submit(ctx, Submission{Text: "hi"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "shop_id", verr.Field)
	assert.Empty(t, f.orders.byID)
}

func TestFailedDeliverySchedulesRedelivery(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("mail api down")
	ctx := context.Background()

	o, err := f.svc.Submit(ctx, Submission{ShopID: 3, Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, o.Status)

	job, ok := f.sched.jobs[redeliveryJobID(o.ID)]
	require.True(t, ok)
	assert.Equal(t, f.svc.Now().Add(DefaultRedeliverAfter), job.ExecTime)

	f.mail.err = nil
	require.NoError(t, job.Task(ctx))
	stored, _ := f.orders.get(o.ID)
	assert.Equal(t, StatusSent, stored.Status)
	assert.Equal(t, 2, stored.Attempts)

	assert.False(t, f.sched.HasOneTimeJob(redeliveryJobID(o.ID)))

	// already sent: the job is a no-op
	require.NoError(t, job.Task(ctx))
	assert.Len(t, f.mail.sent, 1)
}

func TestManualResendCancelsPendingRedelivery(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("mail api down")
	ctx := context.Background()

	o, err := f.svc.Submit(ctx, Submission{ShopID: 3, Text: "hi"})
	require.NoError(t, err)
	require.True(t, f.sched.HasOneTimeJob(redeliveryJobID(o.ID)))

	f.mail.err = nil
	_, err = f.svc.RedeliverShortID(ctx, o.ShortID)
	require.NoError(t, err)
	assert.False(t, f.sched.HasOneTimeJob(redeliveryJobID(o.ID)))
}

func TestDeliveryIsExclusivePerOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o, err := f.svc.Submit(ctx, Submission{ShopID: 3, Text: "hi"})
	require.NoError(t, err)

	release, ok := f.svc.Locks.TryAcquire(lockKey(o.ID))
	require.True(t, ok)
	assert.ErrorIs(t, f.svc.Redeliver(ctx, o), ErrDeliveryInProgress)
	release()
	assert.NoError(t, f.svc.Redeliver(ctx, o))
}

func TestSweepAndRetry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mail.err = errors.New("down")
	o, _ := f.svc.Submit(ctx, Submission{ShopID: 3, Text: "one"})
	f.mail.err = nil

	pending := &Order{ShopID: 3, CustomerText: "two"}
	require.NoError(t, f.orders.Create(ctx, pending, "rose"))

	require.NoError(t, f.svc.SweepStale(ctx))
	p, _ := f.orders.get(pending.ID)
	assert.Equal(t, StatusFailed, p.Status)

	require.NoError(t, f.svc.RetryFailed(ctx))
	for _, id := range []int64{o.ID, pending.ID} {
		got, _ := f.orders.get(id)
		assert.Equal(t, StatusSent, got.Status, "order %d", id)
	}

	f.svc.RegisterJobs(f.sched)
	require.Len(t, f.sched.cron, 2)
	assert.Equal(t, StaleSweepJobID, f.sched.cron[0].ID)
	assert.True(t, f.sched.cron[1].Matches(time.Date(2024, 3, 1, 10, 45, 0, 0, time.UTC)))
	assert.False(t, f.sched.cron[1].Matches(time.Date(2024, 3, 1, 10, 46, 0, 0, time.UTC)))
}

func TestRetrySkipsExhaustedOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.mail.err = errors.New("down")
	o, _ := f.svc.Submit(ctx, Submission{ShopID: 3, Text: "x"})
	require.NoError(t, f.orders.SetStatus(ctx, o.ID, StatusFailed, nullable.Time{}))
	require.NoError(t, f.orders.SetStatus(ctx, o.ID, StatusFailed, nullable.Time{}))

	f.mail.err = nil
	require.NoError(t, f.svc.RetryFailed(ctx))
	assert.Empty(t, f.mail.sent)
}

func serve(h http.HandlerFunc, method, target string, body io.Reader, pattern string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(method+" "+pattern, h)
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSubmitHandler(t *testing.T) {
	f := newFixture(t)
	h := &Handlers{Service: f.svc}

	rec := serve(h.Submit, http.MethodPost, "/api/orders",
		strings.NewReader(`{"shop_slug":"rose-studio","text":"Привіт","design_id":"gentle_1"}`), "/api/orders")
	require.Equal(t, http.StatusCreated, rec.Code)
	var got submitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Success)
	assert.Equal(t, "ROS-1001", got.ShortID)
	assert.Equal(t, StatusSent, got.Status)

	rec = serve(h.Submit, http.MethodPost, "/api/orders", strings.NewReader(`{"shop_id":3,"text":""}`), "/api/orders")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h.Submit, http.MethodPost, "/api/orders", strings.NewReader(`{"shop_id":4,"text":"hi"}`), "/api/orders")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListAndDownload(t *testing.T) {
	f := newFixture(t)
	h := &Handlers{Service: f.svc}
	o, err := f.svc.Submit(context.Background(), Submission{ShopID: 3, Text: "hi"})
	require.NoError(t, err)

	rec := serve(h.AdminList, http.MethodGet, "/api/admin/orders?page=1", nil, "/api/admin/orders")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Orders     []Order `json:"orders"`
		Total      int64   `json:"total"`
		TotalPages int64   `json:"total_pages"`
		PageSize   int     `json:"page_size"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Len(t, page.Orders, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, int64(1), page.TotalPages)
	assert.Equal(t, AdminPageSize, page.PageSize)

	rec = serve(h.AdminList, http.MethodGet, "/api/admin/orders?page=zero", nil, "/api/admin/orders")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	pattern := "/api/admin/orders/{id}/download"
	rec = serve(h.Download, http.MethodGet, "/api/admin/orders/1/download", nil, pattern)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "card-"+o.ShortID+".pdf")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-hi")))

	rec = serve(h.Download, http.MethodGet, "/api/admin/orders/9/download", nil, pattern)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewHandler(t *testing.T) {
	f := newFixture(t)
	h := &Handlers{Service: f.svc}
	rec := serve(h.Preview, http.MethodPost, "/api/preview", strings.NewReader(`{"text":"hi","font_id":"font-vibes"}`), "/api/preview")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-hi|", rec.Body.String())
	assert.Empty(t, f.orders.byID)
	assert.Equal(t, "font-vibes", f.render.got[0].FontChoice)
}

func TestSubmitDeliversAfterClientCancels(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o, err := f.svc.Submit(ctx, Submission{ShopID: 3, Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, StatusSent, o.Status)
	require.Len(t, f.mail.sent, 1)
	stored, _ := f.orders.get(o.ID)
	assert.Equal(t, StatusSent, stored.Status)
}
