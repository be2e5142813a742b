package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/placeboard/placeboard/internal/config"
	"github.com/placeboard/placeboard/internal/models"
)

const (
	adminEmail     = "admin@placeboard.dev"
	officerEmail   = "officer@placeboard.dev"
	recruiterEmail = "recruiter@northwind.example.com"
)

// testClock is a settable time source shared by the server and its tokens
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	server *Server
	clock  *testClock
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := OpenDatabase(filepath.Join(t.TempDir(), "mockapi.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := openTestDB(t)

	clock := &testClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	cfg := config.MockAPIConfig{
		Addr:       "127.0.0.1:0",
		JWTSecret:  "test-secret",
		CORSOrigin: "http://localhost:5173",
	}

	server, err := New(cfg, db, zerolog.Nop(), WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, server.Seed())

	return &testEnv{server: server, clock: clock}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) login(t *testing.T, email, password string) AuthResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: email, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func (e *testEnv) token(t *testing.T, email string) string {
	t.Helper()

	passwords := map[string]string{
		adminEmail:     "admin123",
		officerEmail:   "officer123",
		recruiterEmail: "recruiter123",
	}
	return e.login(t, email, passwords[email]).AccessToken
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}

func (e *testEnv) companyID(t *testing.T, name string) string {
	t.Helper()
	var company models.Company
	require.NoError(t, e.server.DB().Where("name = ?", name).First(&company).Error)
	return company.ID
}

func (e *testEnv) jobID(t *testing.T, title string) string {
	t.Helper()
	var job models.Job
	require.NoError(t, e.server.DB().Where("title = ?", title).First(&job).Error)
	return job.ID
}

func TestNew_CORS(t *testing.T) {
	preflight := func(server *Server) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/jobs", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		return rec
	}

	t.Run("zero config serves without CORS", func(t *testing.T) {
		server, err := New(config.MockAPIConfig{}, openTestDB(t), zerolog.Nop())
		require.NoError(t, err)

		assert.Empty(t, preflight(server).Header().Get("Access-Control-Allow-Origin"))

		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("configured origin is allowed", func(t *testing.T) {
		server, err := New(config.MockAPIConfig{CORSOrigin: "http://localhost:5173"}, openTestDB(t), zerolog.Nop())
		require.NoError(t, err)

		assert.Equal(t, "http://localhost:5173", preflight(server).Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("malformed origin is an error", func(t *testing.T) {
		_, err := New(config.MockAPIConfig{CORSOrigin: "localhost:5173"}, openTestDB(t), zerolog.Nop())
		assert.ErrorContains(t, err, "invalid CORS origin")
	})
}

func TestHealthAndNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "online", decode[map[string]any](t, rec)["status"])

	rec = env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not found", message(t, rec))
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		resp := env.login(t, "Officer@Placeboard.dev", "officer123")
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Equal(t, models.RolePlacementOfficer, resp.Role)
		require.NotNil(t, resp.User)
		assert.Equal(t, officerEmail, resp.User.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: officerEmail, Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid email or password", message(t, rec))
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "ghost@placeboard.dev", Password: "x"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Email and password are required", message(t, rec))
	})

	t.Run("password hash is never serialised", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/auth/login", "", LoginRequest{Email: adminEmail, Password: "admin123"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "password")
	})
}

func TestAuthMiddleware(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Missing authorization header", message(t, rec))

	rec = env.do(t, http.MethodGet, "/api/auth/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", message(t, rec))

	pair := env.login(t, officerEmail, "officer123")

	rec = env.do(t, http.MethodGet, "/api/auth/me", pair.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, officerEmail, decode[models.User](t, rec).Email)

	// Refresh tokens cannot authenticate API calls
	rec = env.do(t, http.MethodGet, "/api/auth/me", pair.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	env.clock.Advance(16 * time.Minute)
	rec = env.do(t, http.MethodGet, "/api/auth/me", pair.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	env := newTestEnv(t)
	pair := env.login(t, officerEmail, "officer123")

	rec := env.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: pair.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decode[AuthResponse](t, rec)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, models.RolePlacementOfficer, rotated.Role)

	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: rotated.AccessToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	pair := env.login(t, officerEmail, "officer123")

	rec := env.do(t, http.MethodPost, "/api/auth/logout", pair.AccessToken, LogoutRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCompanies(t *testing.T) {
	env := newTestEnv(t)
	officer := env.token(t, officerEmail)
	recruiter := env.token(t, recruiterEmail)

	rec := env.do(t, http.MethodGet, "/api/companies?q=north", recruiter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	companies := decode[[]models.Company](t, rec)
	require.Len(t, companies, 1)
	assert.Equal(t, "Northwind Analytics", companies[0].Name)

	rec = env.do(t, http.MethodPost, "/api/companies", recruiter, CompanyRequest{Name: "Acme"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/companies", officer, CompanyRequest{Name: "Acme", Website: "not a url"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Website must be a valid URL", message(t, rec))

	rec = env.do(t, http.MethodPost, "/api/companies", officer, CompanyRequest{Name: "Acme", Industry: "Tools"})
	require.Equal(t, http.StatusCreated, rec.Code)
	acme := decode[models.Company](t, rec)
	assert.NotEmpty(t, acme.ID)

	rec = env.do(t, http.MethodPost, "/api/companies", officer, CompanyRequest{Name: "Acme"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	industry := "Hardware"
	rec = env.do(t, http.MethodPatch, "/api/companies/"+acme.ID, officer, CompanyUpdate{Industry: &industry})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hardware", decode[models.Company](t, rec).Industry)
	assert.Equal(t, "Acme", decode[models.Company](t, rec).Name)

	rec = env.do(t, http.MethodDelete, "/api/companies/"+env.companyID(t, "Helios Infrastructure"), officer, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Company has open jobs; close them first", message(t, rec))

	rec = env.do(t, http.MethodDelete, "/api/companies/"+acme.ID, officer, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/companies/"+acme.ID, officer, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Company not found", message(t, rec))
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t)
	officer := env.token(t, officerEmail)
	recruiter := env.token(t, recruiterEmail)

	northwind := env.companyID(t, "Northwind Analytics")
	helios := env.companyID(t, "Helios Infrastructure")
	deadline := env.clock.Now().Add(7 * 24 * time.Hour)

	t.Run("recruiter posts for own company", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/jobs", recruiter, JobRequest{
			CompanyID: northwind,
			Title:     "Backend Engineer",
			Deadline:  &deadline,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		job := decode[models.Job](t, rec)
		assert.Equal(t, models.JobOpen, job.Status)
		assert.Equal(t, models.EmploymentFullTime, job.EmploymentType)
		assert.Equal(t, 1, job.Openings)
		require.NotNil(t, job.Company)
		assert.Equal(t, "Northwind Analytics", job.Company.Name)
	})

	t.Run("recruiter cannot post for another company", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/jobs", recruiter, JobRequest{CompanyID: helios, Title: "Sneaky"})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("inconsistent salary", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/jobs", officer, JobRequest{
			CompanyID: helios, Title: "Analyst", SalaryMin: 10, SalaryMax: 5,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Minimum salary cannot exceed maximum salary", message(t, rec))
	})

	t.Run("past deadline", func(t *testing.T) {
		past := env.clock.Now().Add(-time.Hour)
		rec := env.do(t, http.MethodPost, "/api/jobs", officer, JobRequest{
			CompanyID: helios, Title: "Analyst", Deadline: &past,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Deadline must be in the future", message(t, rec))
	})

	t.Run("filter and close", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/jobs?company_id="+helios, officer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		jobs := decode[[]models.Job](t, rec)
		require.Len(t, jobs, 1)

		rec = env.do(t, http.MethodPost, "/api/jobs/"+jobs[0].ID+"/close", recruiter, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodPost, "/api/jobs/"+jobs[0].ID+"/close", officer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.JobClosed, decode[models.Job](t, rec).Status)

		rec = env.do(t, http.MethodGet, "/api/jobs?status=closed&company_id="+helios, officer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.Job](t, rec), 1)
	})

	t.Run("update", func(t *testing.T) {
		id := env.jobID(t, "Data Analyst")
		openings := 6
		rec := env.do(t, http.MethodPatch, "/api/jobs/"+id, recruiter, JobUpdate{Openings: &openings})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 6, decode[models.Job](t, rec).Openings)
	})

	t.Run("delete is staff only", func(t *testing.T) {
		id := env.jobID(t, "Data Analyst")
		rec := env.do(t, http.MethodDelete, "/api/jobs/"+id, recruiter, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = env.do(t, http.MethodDelete, "/api/jobs/"+id, officer, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/jobs/"+id, officer, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestApplications(t *testing.T) {
	env := newTestEnv(t)
	officer := env.token(t, officerEmail)
	recruiter := env.token(t, recruiterEmail)

	analyst := env.jobID(t, "Data Analyst")
	apply := ApplicationRequest{
		JobID:        analyst,
		StudentName:  "Kiran Rao",
		StudentEmail: "Kiran.Rao@students.example.edu",
		Department:   "Computer Science",
		CGPA:         8.2,
	}

	rec := env.do(t, http.MethodGet, "/api/notifications/unread-count", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	before := decode[map[string]int64](t, rec)["count"]

	rec = env.do(t, http.MethodPost, "/api/applications", officer, apply)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Application](t, rec)
	assert.Equal(t, models.ApplicationApplied, created.Status)
	assert.Equal(t, "kiran.rao@students.example.edu", created.StudentEmail)

	rec = env.do(t, http.MethodPost, "/api/applications", officer, apply)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Student already applied to this job", message(t, rec))

	// Staff and the company's recruiter are told about the new application
	rec = env.do(t, http.MethodGet, "/api/notifications/unread-count", officer, nil)
	assert.Equal(t, before+1, decode[map[string]int64](t, rec)["count"])
	rec = env.do(t, http.MethodGet, "/api/notifications?unread=true", recruiter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)

	t.Run("expired job rejects applications", func(t *testing.T) {
		apply := apply
		apply.JobID = env.jobID(t, "Machine Learning Intern")
		rec := env.do(t, http.MethodPost, "/api/applications", officer, apply)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("status pipeline", func(t *testing.T) {
		path := "/api/applications/" + created.ID + "/status"

		rec := env.do(t, http.MethodPatch, path, officer, StatusRequest{Status: "hired"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Status is not a valid application status", message(t, rec))

		rec = env.do(t, http.MethodPatch, path, recruiter, StatusRequest{Status: models.ApplicationShortlisted})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.ApplicationShortlisted, decode[models.Application](t, rec).Status)

		rec = env.do(t, http.MethodPatch, path, officer, StatusRequest{Status: models.ApplicationRejected})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodPatch, path, officer, StatusRequest{Status: models.ApplicationOffered})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("recruiter sees only own company's applications", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/applications", recruiter, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		for _, a := range decode[[]models.Application](t, rec) {
			require.NotNil(t, a.Job)
			assert.Equal(t, env.companyID(t, "Northwind Analytics"), a.Job.CompanyID)
		}

		rec = env.do(t, http.MethodGet, "/api/applications?status=offered", officer, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		offered := decode[[]models.Application](t, rec)
		require.Len(t, offered, 1)
		assert.Equal(t, "Rahul Verma", offered[0].StudentName)
	})
}

func TestNotifications(t *testing.T) {
	env := newTestEnv(t)
	officer := env.token(t, officerEmail)
	admin := env.token(t, adminEmail)

	rec := env.do(t, http.MethodGet, "/api/notifications", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]models.Notification](t, rec)
	require.Len(t, all, 2)

	var unread models.Notification
	for _, n := range all {
		if n.ReadAt == nil {
			unread = n
		}
	}
	require.NotEmpty(t, unread.ID)

	rec = env.do(t, http.MethodPost, "/api/notifications/"+unread.ID+"/read", admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/notifications/"+unread.ID+"/read", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotNil(t, decode[models.Notification](t, rec).ReadAt)

	rec = env.do(t, http.MethodGet, "/api/notifications/unread-count", officer, nil)
	assert.Equal(t, int64(0), decode[map[string]int64](t, rec)["count"])

	require.NoError(t, env.server.DB().Create(&models.Notification{UserID: unread.UserID, Title: "a"}).Error)
	require.NoError(t, env.server.DB().Create(&models.Notification{UserID: unread.UserID, Title: "b"}).Error)

	rec = env.do(t, http.MethodPost, "/api/notifications/read-all", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(2), decode[map[string]int64](t, rec)["updated"])
}

func TestTickets(t *testing.T) {
	env := newTestEnv(t)
	officer := env.token(t, officerEmail)
	recruiter := env.token(t, recruiterEmail)

	rec := env.do(t, http.MethodPost, "/api/tickets", officer, TicketRequest{Subject: "Export fails", Priority: "urgent"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/tickets", officer, TicketRequest{Subject: "Export fails"})
	require.Equal(t, http.StatusCreated, rec.Code)
	own := decode[models.Ticket](t, rec)
	assert.Equal(t, models.PriorityMedium, own.Priority)
	assert.Equal(t, models.TicketOpen, own.Status)

	rec = env.do(t, http.MethodGet, "/api/tickets", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Ticket](t, rec), 2)

	rec = env.do(t, http.MethodGet, "/api/tickets", recruiter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	recruiterTickets := decode[[]models.Ticket](t, rec)
	require.Len(t, recruiterTickets, 1)
	seeded := recruiterTickets[0]

	rec = env.do(t, http.MethodGet, "/api/tickets/"+own.ID, recruiter, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tickets/"+seeded.ID, officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	thread := decode[models.Ticket](t, rec)
	require.Len(t, thread.Messages, 2)
	assert.Equal(t, "Northwind Recruiting", thread.Messages[0].AuthorName)

	rec = env.do(t, http.MethodPost, "/api/tickets/"+seeded.ID+"/messages", officer, ReplyRequest{Body: "Fixed in the next release"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/tickets/"+seeded.ID, recruiter, nil)
	assert.Equal(t, models.TicketPending, decode[models.Ticket](t, rec).Status)

	rec = env.do(t, http.MethodGet, "/api/notifications?unread=true", recruiter, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Notification](t, rec), 1)

	rec = env.do(t, http.MethodPatch, "/api/tickets/"+seeded.ID+"/status", officer, TicketStatusRequest{Status: models.TicketClosed})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/tickets/"+seeded.ID+"/messages", recruiter, ReplyRequest{Body: "thanks"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Ticket is closed", message(t, rec))

	rec = env.do(t, http.MethodGet, "/api/tickets?status=closed", officer, nil)
	assert.Len(t, decode[[]models.Ticket](t, rec), 1)
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)
	officer := env.token(t, officerEmail)

	rec := env.do(t, http.MethodGet, "/api/dashboard/summary", officer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	summary := decode[models.Summary](t, rec)
	assert.Equal(t, int64(2), summary.Companies)
	assert.Equal(t, int64(3), summary.OpenJobs)
	assert.Equal(t, int64(5), summary.TotalApplications)
	assert.Equal(t, int64(1), summary.UnreadNotifications)
	assert.Equal(t, int64(1), summary.OpenTickets)
	assert.Equal(t, int64(1), summary.ApplicationsByStatus[models.ApplicationOffered])
	assert.Equal(t, int64(0), summary.ApplicationsByStatus[models.ApplicationWithdrawn])
	assert.Len(t, summary.ApplicationsByStatus, len(models.ApplicationStatuses))
}

func TestCloseExpiredJobs(t *testing.T) {
	env := newTestEnv(t)

	closed, err := env.server.CloseExpiredJobs(env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), closed)

	var job models.Job
	require.NoError(t, env.server.DB().Where("title = ?", "Machine Learning Intern").First(&job).Error)
	assert.Equal(t, models.JobClosed, job.Status)

	var notices int64
	require.NoError(t, env.server.DB().Model(&models.Notification{}).Where("kind = ?", "job").Count(&notices).Error)
	assert.Equal(t, int64(3), notices, "admin, officer and the company's recruiter")

	closed, err = env.server.CloseExpiredJobs(env.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, closed)

	// A month later every seeded posting has expired
	closed, err = env.server.CloseExpiredJobs(env.clock.Now().AddDate(0, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), closed)
}

func TestScheduler(t *testing.T) {
	env := newTestEnv(t)

	env.server.config.CloseSchedule = "not a schedule"
	assert.Error(t, env.server.StartScheduler())

	env.server.config.CloseSchedule = ""
	require.NoError(t, env.server.StartScheduler())
	env.server.StopScheduler()

	env.server.config.CloseSchedule = "@every 1h"
	require.NoError(t, env.server.StartScheduler())
	assert.Len(t, env.server.cron.Entries(), 1)
	env.server.StopScheduler()
	assert.Nil(t, env.server.cron)
}

func TestRunStopsOnCancel(t *testing.T) {
	env := newTestEnv(t)
	env.server.config.CloseSchedule = "@every 1h"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.server.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Nil(t, env.server.cron)
}

func TestSeedIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.server.Seed())

	var users, companies int64
	require.NoError(t, env.server.DB().Model(&models.User{}).Count(&users).Error)
	require.NoError(t, env.server.DB().Model(&models.Company{}).Count(&companies).Error)
	assert.Equal(t, int64(3), users)
	assert.Equal(t, int64(2), companies)

	var recruiter models.User
	require.NoError(t, env.server.DB().Where("email = ?", recruiterEmail).First(&recruiter).Error)
	require.NotNil(t, recruiter.CompanyID)
	assert.Equal(t, env.companyID(t, "Northwind Analytics"), *recruiter.CompanyID)
}

func TestParseFixture(t *testing.T) {
	fx, err := DefaultFixture()
	require.NoError(t, err)
	assert.Len(t, fx.Users, 3)
	require.NotEmpty(t, fx.Companies)
	require.NotNil(t, fx.Companies[0].Jobs[0].DeadlineDays)

	_, err = ParseFixture([]byte("users: [unterminated"))
	assert.Error(t, err)
}

func TestSeedRejectsUnknownReferences(t *testing.T) {
	db := openTestDB(t)

	server, err := New(config.MockAPIConfig{JWTSecret: "x"}, db, zerolog.Nop())
	require.NoError(t, err)

	fx := &Fixture{Users: []UserFixture{{Email: "r@x.dev", Password: "pw", Role: models.RoleRecruiter, Company: "Missing"}}}
	assert.ErrorContains(t, server.SeedFixture(fx), "unknown company")

	var users int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	assert.Zero(t, users, "failed seed rolls back")
}
