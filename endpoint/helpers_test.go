package endpoint_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/endpoint"
	"github.com/ariebrainware/physiofriend-api/events"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/ariebrainware/physiofriend-api/notification"
	"github.com/ariebrainware/physiofriend-api/payment"
	"github.com/ariebrainware/physiofriend-api/server"
	"github.com/ariebrainware/physiofriend-api/util"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	timeout = 2 * time.Second
	tick    = 10 * time.Millisecond
)

type apiResp struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type requestSpec struct {
	method  string
	path    string
	body    interface{}
	headers map[string]string
}

// testEnv is one router over a fresh database with recording collaborators.
type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	notifier  *stubNotifier
	publisher *recordingPublisher
	gateway   *fakeGateway
}

func setupEndpointTest(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:endpoint_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	env := &testEnv{
		db:        db,
		notifier:  &stubNotifier{},
		publisher: &recordingPublisher{},
		gateway:   newFakeGateway(),
	}
	endpoint.Configure(endpoint.Deps{
		Notifier:    env.notifier,
		Publisher:   env.publisher,
		Gateway:     env.gateway,
		DoctorCache: util.NewDoctorListCache(time.Minute),
	})
	t.Cleanup(func() { endpoint.Configure(endpoint.Deps{}) })

	env.router = server.NewRouter(config.LoadConfig(), db)
	return env
}

func performRequest(t *testing.T, r *gin.Engine, spec requestSpec) (*httptest.ResponseRecorder, apiResp) {
	t.Helper()

	var reader *strings.Reader
	switch v := spec.body.(type) {
	case nil:
		reader = strings.NewReader("")
	case string:
		reader = strings.NewReader(v)
	default:
		b, err := json.Marshal(spec.body)
		require.NoError(t, err)
		reader = strings.NewReader(string(b))
	}

	req := httptest.NewRequest(spec.method, spec.path, reader)
	req.Header.Set("Content-Type", "application/json")
	for key, value := range spec.headers {
		req.Header.Set(key, value)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResp
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func decodeData(t *testing.T, resp apiResp, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, out), string(resp.Data))
}

// tokenHeader signs a token for p and returns it in the role's own header.
func tokenHeader(t *testing.T, p model.Principal) map[string]string {
	t.Helper()
	issued, err := util.IssuePrincipalToken(p, time.Hour)
	require.NoError(t, err)
	return map[string]string{p.Role.TokenHeader(): issued.Token}
}

func adminHeader(t *testing.T) map[string]string {
	return tokenHeader(t, model.Principal{Role: model.RoleAdmin, Email: testAdminEmail})
}

func doctorHeader(t *testing.T, d model.Doctor) map[string]string {
	return tokenHeader(t, model.Principal{Role: model.RoleDoctor, SubjectID: d.ID, Email: d.Email})
}

func userHeader(t *testing.T, u model.User) map[string]string {
	return tokenHeader(t, model.Principal{Role: model.RolePatient, SubjectID: u.ID, Email: u.Email})
}

func seedDoctor(t *testing.T, db *gorm.DB, email string, available bool) model.Doctor {
	t.Helper()
	hashed, err := util.HashPassword("doctor-pass-1")
	require.NoError(t, err)
	d := model.Doctor{
		Name:       "Dr. Richard James",
		Email:      email,
		Password:   hashed,
		Speciality: "General physician",
		Degree:     "MBBS",
		Experience: "4 Years",
		About:      "Focused on preventive care.",
		Fees:       50,
		Address:    datatypes.NewJSONType(model.Address{Line1: "17th Cross, Richmond", Line2: "Circle, Ring Road"}),
		Available:  true,
	}
	require.NoError(t, db.Create(&d).Error)
	if !available {
		require.NoError(t, db.Model(&d).Update("available", false).Error)
		d.Available = false
	}
	return d
}

func seedUser(t *testing.T, db *gorm.DB, email string) model.User {
	t.Helper()
	hashed, err := util.HashPassword("patient-pass-1")
	require.NoError(t, err)
	u := model.User{Name: "Jane Doe", Email: email, Password: hashed, Phone: "+919876543210"}
	require.NoError(t, db.Create(&u).Error)
	return u
}

// bookFor books through the HTTP surface and returns the stored appointment.
func bookFor(t *testing.T, env *testEnv, u model.User, d model.Doctor, date, clock string) model.Appointment {
	t.Helper()
	_, resp := performRequest(t, env.router, requestSpec{
		method:  "POST",
		path:    "/api/user/book-appointment",
		body:    map[string]interface{}{"docId": d.ID, "slotDate": date, "slotTime": clock},
		headers: userHeader(t, u),
	})
	require.True(t, resp.Success, resp.Message)

	var out struct {
		Appointment model.Appointment `json:"appointment"`
	}
	decodeData(t, resp, &out)
	return out.Appointment
}

type stubNotifier struct {
	mu       sync.Mutex
	bookings []notification.Booking
	result   notification.Result
}

func (s *stubNotifier) Notify(_ context.Context, b notification.Booking) notification.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, b)
	r := s.result
	if r.Outcome == "" {
		r = notification.Result{
			Outcome:     notification.OutcomeDegraded,
			Channel:     "log",
			Recipient:   "+919138136007",
			DeepLinkURL: "https://wa.me/919138136007?text=booked",
		}
	}
	return r
}

func (s *stubNotifier) calls() []notification.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]notification.Booking(nil), s.bookings...)
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ events.AppointmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type fakeGateway struct {
	mu     sync.Mutex
	orders map[string]payment.Order
	seq    int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{orders: map[string]payment.Order{}}
}

func (g *fakeGateway) CreateOrder(_ context.Context, amountMinor int64, currency, receipt string) (payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	o := payment.Order{
		ID:       fmt.Sprintf("order_test_%d", g.seq),
		Amount:   amountMinor,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	g.orders[o.ID] = o
	return o, nil
}

func (g *fakeGateway) FetchOrder(_ context.Context, id string) (payment.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o, ok := g.orders[id]
	if !ok {
		return payment.Order{}, fmt.Errorf("order %s not found", id)
	}
	return o, nil
}

func (g *fakeGateway) markPaid(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	o := g.orders[id]
	o.Status = "paid"
	g.orders[id] = o
}
