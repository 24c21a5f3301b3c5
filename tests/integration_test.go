package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"jobboard/internal/app/dto"
	httpapi "jobboard/internal/app/http"
	"jobboard/internal/app/http/handler"
	"jobboard/internal/domain"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/identity"
	"jobboard/internal/domain/job"
	"jobboard/internal/infrastructure/async"
	"jobboard/internal/infrastructure/broker"
	"jobboard/internal/infrastructure/db/pg"
	"jobboard/internal/infrastructure/logging"
	"jobboard/internal/notify"
)

// verifierStub resolves fixed tokens so the full HTTP stack runs without an
// auth service.
type verifierStub struct {
	callers map[string]identity.Caller
}

func (v verifierStub) CurrentUser(_ context.Context, token string) (identity.Caller, error) {
	c, ok := v.callers[token]
	if !ok {
		return identity.Caller{}, domain.NewAuthenticationError("invalid or expired credential")
	}
	return c, nil
}

type subscriptionsStub struct{}

func (subscriptionsStub) SubscribedUsers(context.Context, string) ([]identity.Subscriber, error) {
	return []identity.Subscriber{
		{UserID: "sub-1", Username: "carol", Email: "carol@test"},
	}, nil
}

var (
	employerCaller = identity.Caller{ID: "emp-1", Username: "acme-hr", Email: "hr@acme.test", Role: identity.RoleEmployer}
	seekerCaller   = identity.Caller{ID: "user-1", Username: "alice", Email: "alice@test", Role: identity.RoleJobSeeker}
)

const (
	employerToken = "employer-token"
	seekerToken   = "seeker-token"
)

var migrateOnce sync.Once

func ensureMigrations(t *testing.T, db *sql.DB) {
	t.Helper()

	migrateOnce.Do(func() {
		if err := goose.SetDialect("postgres"); err != nil {
			t.Fatalf("goose.SetDialect: %v", err)
		}

		dir := "migrations"
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			alt := filepath.Join("..", "migrations")
			if _, err2 := os.Stat(alt); err2 == nil {
				dir = alt
			} else {
				t.Fatalf("migrations directory not found: tried %q (%v) and %q (%v)", dir, err, alt, err2)
			}
		}

		if err := goose.Up(db, dir); err != nil {
			t.Fatalf("goose.Up: %v", err)
		}
	})
}

func resetDB(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, `
		TRUNCATE TABLE job_applications, jobs RESTART IDENTITY CASCADE;
	`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		host := getenvDefault("POSTGRES_HOST", "localhost")
		user := getenvDefault("POSTGRES_USER", "jobboard")
		pass := getenvDefault("POSTGRES_PASSWORD", "jobboard")
		port := getenvDefault("POSTGRES_PORT", "5432")
		dbname := getenvDefault("POSTGRES_DB", "jobboard")

		dsn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			user, pass, host, port, dbname)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		t.Skipf("postgres unavailable, skipping: %v", err)
	}

	ensureMigrations(t, db)
	resetDB(t, db)

	return db
}

func setupTestServer(t *testing.T) (*httptest.Server, func()) {
	t.Helper()

	db := getTestDB(t)

	log, err := logging.NewLogger()
	if err != nil {
		_ = db.Close()
		t.Fatalf("create logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	exchange := broker.NewExchange(ctx, "job.board.exchange", broker.RetryPolicy{
		MaxAttempts: 2,
		Backoff:     10 * time.Millisecond,
	}, log)
	publisher := async.NewPublisher(ctx, exchange, 2, time.Second, log)

	consumer := notify.NewConsumer(notify.NewLogMailer(log), time.Second, log)
	if err := consumer.Bind(exchange, 2); err != nil {
		t.Fatalf("bind consumer: %v", err)
	}

	uow := pg.NewTxManager(db)
	jobRepo := pg.NewJobRepository(db)
	appRepo := pg.NewApplicationRepository(db)

	jobSvc := job.NewService(uow, jobRepo, subscriptionsStub{}, publisher, log)
	appSvc := application.NewService(uow, appRepo, jobRepo, publisher)

	h := handler.New(jobSvc, appSvc, log)
	router := httpapi.NewRouter(h, verifierStub{callers: map[string]identity.Caller{
		employerToken: employerCaller,
		seekerToken:   seekerCaller,
	}}, log)

	ts := httptest.NewServer(router)

	cleanup := func() {
		ts.Close()
		publisher.Close()
		exchange.Close()
		cancel()
		_ = log.Sync()
		_ = db.Close()
	}

	return ts, cleanup
}

func doJSON(t *testing.T, client *http.Client, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var errBody map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		t.Fatalf("unexpected status %d, want %d, body=%v", resp.StatusCode, wantStatus, errBody)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

// doStatus sends a request and returns only the response status, for
// scenarios where several outcomes are acceptable per request.
func doStatus(t *testing.T, client *http.Client, method, url, token string, body any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Errorf("encode body: %v", err)
			return 0
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Errorf("new request: %v", err)
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Errorf("do %s %s: %v", method, url, err)
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode
}

func validJobRequest() dto.JobRequest {
	return dto.JobRequest{
		Title:           "Backend Engineer",
		Description:     "Build and operate the job board services.",
		CompanyName:     "Acme",
		Location:        "Remote",
		JobType:         "FULL_TIME",
		Category:        "ENGINEERING",
		ExperienceLevel: "MID",
	}
}

func TestIntegration_PostJobAndApplyFlow(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	client := &http.Client{Timeout: 2 * time.Second}

	var created dto.Job
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", employerToken, validJobRequest(), http.StatusCreated, &created)

	if created.ID == "" {
		t.Fatal("created job must have an id")
	}
	if !created.IsActive {
		t.Fatal("new job must be active")
	}
	if created.PostedByUserID != employerCaller.ID {
		t.Fatalf("unexpected poster %q", created.PostedByUserID)
	}

	var page dto.JobPage
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs", "", nil, http.StatusOK, &page)
	if page.TotalElements != 1 || len(page.Content) != 1 {
		t.Fatalf("expected one active job, got %+v", page)
	}

	applyBody := dto.JobApplicationRequest{
		CoverLetter: strings.Repeat("I am a strong fit for this role. ", 5),
	}

	var app dto.JobApplication
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs/"+created.ID+"/apply", seekerToken, applyBody, http.StatusCreated, &app)

	if app.Status != "PENDING" {
		t.Fatalf("expected PENDING, got %s", app.Status)
	}
	if app.JobTitle != "Backend Engineer" {
		t.Fatalf("expected job title joined, got %q", app.JobTitle)
	}

	// Second apply for the same pair must conflict.
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs/"+created.ID+"/apply", seekerToken, applyBody, http.StatusConflict, nil)

	var apps []dto.JobApplication
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/"+created.ID+"/applications", employerToken, nil, http.StatusOK, &apps)
	if len(apps) != 1 || apps[0].UserID != seekerCaller.ID {
		t.Fatalf("expected the seeker's application, got %+v", apps)
	}

	// Non-owners may not read the applicant list.
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/"+created.ID+"/applications", seekerToken, nil, http.StatusForbidden, nil)
}

func TestIntegration_ConcurrentApplySamePair(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	client := &http.Client{Timeout: 5 * time.Second}

	var created dto.Job
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", employerToken, validJobRequest(), http.StatusCreated, &created)

	applyBody := dto.JobApplicationRequest{
		CoverLetter: strings.Repeat("I am a strong fit for this role. ", 5),
	}

	// All racers pass the in-transaction existence pre-check when they start
	// together; the losers must be stopped by the (job_id, user_id) unique
	// constraint and surface as 409, never 500.
	const racers = 8

	start := make(chan struct{})
	statuses := make(chan int, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			statuses <- doStatus(t, client, http.MethodPost,
				ts.URL+"/jobs/"+created.ID+"/apply", seekerToken, applyBody)
		}()
	}

	close(start)
	wg.Wait()
	close(statuses)

	var createdCount, conflictCount, other int
	for code := range statuses {
		switch code {
		case http.StatusCreated:
			createdCount++
		case http.StatusConflict:
			conflictCount++
		default:
			other++
		}
	}

	if createdCount != 1 || conflictCount != racers-1 || other != 0 {
		t.Fatalf("expected 1 created and %d conflicts, got created=%d conflicts=%d other=%d",
			racers-1, createdCount, conflictCount, other)
	}

	var apps []dto.JobApplication
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/"+created.ID+"/applications", employerToken, nil, http.StatusOK, &apps)
	if len(apps) != 1 {
		t.Fatalf("exactly one application row may exist, got %d", len(apps))
	}
}

func TestIntegration_StatusLifecycleAndWithdraw(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	client := &http.Client{Timeout: 2 * time.Second}

	var created dto.Job
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", employerToken, validJobRequest(), http.StatusCreated, &created)

	applyBody := dto.JobApplicationRequest{
		CoverLetter: strings.Repeat("I am a strong fit for this role. ", 5),
	}
	var app dto.JobApplication
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs/"+created.ID+"/apply", seekerToken, applyBody, http.StatusCreated, &app)

	var updated dto.JobApplication
	doJSON(t, client, http.MethodPatch,
		ts.URL+"/jobs/applications/"+app.ID+"/status?status=SHORTLISTED",
		employerToken, nil, http.StatusOK, &updated)
	if updated.Status != "SHORTLISTED" {
		t.Fatalf("expected SHORTLISTED, got %s", updated.Status)
	}

	// The applicant cannot run the employer's status transition.
	doJSON(t, client, http.MethodPatch,
		ts.URL+"/jobs/applications/"+app.ID+"/status?status=ACCEPTED",
		seekerToken, nil, http.StatusForbidden, nil)

	doJSON(t, client, http.MethodDelete,
		ts.URL+"/jobs/"+created.ID+"/applications/withdraw",
		seekerToken, nil, http.StatusOK, nil)

	// A withdrawn application stays withdrawn.
	doJSON(t, client, http.MethodPatch,
		ts.URL+"/jobs/applications/"+app.ID+"/status?status=ACCEPTED",
		employerToken, nil, http.StatusConflict, nil)
}

func TestIntegration_DeleteJobClosesApplications(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	client := &http.Client{Timeout: 2 * time.Second}

	var created dto.Job
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", employerToken, validJobRequest(), http.StatusCreated, &created)

	// Only the owner may delete; deletion is a soft close.
	doJSON(t, client, http.MethodDelete, ts.URL+"/jobs/"+created.ID, seekerToken, nil, http.StatusForbidden, nil)
	doJSON(t, client, http.MethodDelete, ts.URL+"/jobs/"+created.ID, employerToken, nil, http.StatusOK, nil)

	var got dto.Job
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/"+created.ID, "", nil, http.StatusOK, &got)
	if got.IsActive {
		t.Fatal("deleted job must be inactive")
	}

	applyBody := dto.JobApplicationRequest{
		CoverLetter: strings.Repeat("I am a strong fit for this role. ", 5),
	}
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs/"+created.ID+"/apply", seekerToken, applyBody, http.StatusForbidden, nil)

	// The closed job drops out of the active listing.
	var page dto.JobPage
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs", "", nil, http.StatusOK, &page)
	if page.TotalElements != 0 {
		t.Fatalf("expected empty listing, got %+v", page)
	}
}

func TestIntegration_SearchAndFilters(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	client := &http.Client{Timeout: 2 * time.Second}

	first := validJobRequest()
	second := validJobRequest()
	second.Title = "Product Designer"
	second.Category = "DESIGN"
	second.JobType = "CONTRACT"
	second.Location = "Berlin"

	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", employerToken, first, http.StatusCreated, nil)
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", employerToken, second, http.StatusCreated, nil)

	var page dto.JobPage
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/search?keyword=designer", "", nil, http.StatusOK, &page)
	if page.TotalElements != 1 || page.Content[0].Title != "Product Designer" {
		t.Fatalf("search miss: %+v", page)
	}

	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/category/ENGINEERING", "", nil, http.StatusOK, &page)
	if page.TotalElements != 1 || page.Content[0].Title != "Backend Engineer" {
		t.Fatalf("category filter miss: %+v", page)
	}

	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/type/CONTRACT", "", nil, http.StatusOK, &page)
	if page.TotalElements != 1 || page.Content[0].Title != "Product Designer" {
		t.Fatalf("type filter miss: %+v", page)
	}

	// Unknown enum values are rejected before touching the store.
	doJSON(t, client, http.MethodGet, ts.URL+"/jobs/category/BOGUS", "", nil, http.StatusBadRequest, nil)
}

func TestIntegration_AuthRequired(t *testing.T) {
	ts, cleanup := setupTestServer(t)
	defer cleanup()

	client := &http.Client{Timeout: 2 * time.Second}

	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", "", validJobRequest(), http.StatusUnauthorized, nil)
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", "bogus-token", validJobRequest(), http.StatusUnauthorized, nil)

	// Job seekers cannot post jobs.
	doJSON(t, client, http.MethodPost, ts.URL+"/jobs", seekerToken, validJobRequest(), http.StatusForbidden, nil)
}
