// internal/server/handlers_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yaya-jobs/internal/common/config"
	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/matching"
	"yaya-jobs/internal/models"
	"yaya-jobs/internal/notify"
	"yaya-jobs/internal/store"
	"yaya-jobs/internal/ussd"
)

type stubSNS struct {
	mu        sync.Mutex
	published []*sns.PublishInput
	err       error
}

func (s *stubSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	s.published = append(s.published, params)
	return &sns.PublishOutput{}, nil
}

type testEnv struct {
	server *httptest.Server
	mem    *store.MemoryStore
	sns    *stubSNS
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Name = "yaya-jobs"
	cfg.App.Version = "1.0.0"
	cfg.Ussd.ServiceCode = "*384*15667#"
	cfg.Matching.MaxWorkersPerJob = 3
	cfg.Notifications.SMS.Enabled = true
	cfg.Notifications.SMS.SenderID = "YAYAJOBS"

	mem := store.NewMemoryStore()
	stub := &stubSNS{}
	log := logger.NewNoOpLogger()

	srv := New(cfg, Dependencies{
		Dialog:     ussd.NewEngine(&ussd.Config{ServiceCode: cfg.Ussd.ServiceCode}, mem, mem, log),
		Matcher:    matching.NewEngine(&matching.Config{MaxWorkersPerJob: cfg.Matching.MaxWorkersPerJob}, mem, log),
		Dispatcher: notify.NewDispatcher(&notify.Config{Enabled: true, SenderID: "YAYAJOBS"}, mem, stub, log),
		Directory:  mem,
	}, log)

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, mem: mem, sns: stub}
}

func (env *testEnv) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(env.server.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestUssdCallback(t *testing.T) {
	env := newTestEnv(t)

	form := url.Values{
		"sessionId":   {"s1"},
		"phoneNumber": {"0712345678"},
		"text":        {""},
	}
	resp, err := http.PostForm(env.server.URL+"/api/ussd", form)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "CON Welcome to Yaya - Construction Jobs"))
}

func TestUssdCallbackMissingIdentifiers(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.PostForm(env.server.URL+"/api/ussd", url.Values{"text": {"1"}})
	require.NoError(t, err)
	defer resp.Body.Close()

	// Still 200: the gateway kills the session on any other status.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "END "))
}

func TestCreateJobMatchesAndNotifies(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, phone := range []string{"0711000001", "0711000002"} {
		_, err := env.mem.CreateWorker(ctx, models.InsertWorker{
			Name: "Worker", Phone: phone, Skill: "Mason", Location: "Pipeline", IsAvailable: true,
		})
		require.NoError(t, err)
	}

	resp := env.postJSON(t, "/api/jobs", models.InsertJob{
		ContactPhone:    "0799888777",
		SkillRequired:   "Mason",
		Location:        "Pipeline",
		DailyRate:       1500,
		ProjectDuration: "1 week",
		AdditionalNotes: "Perimeter wall.",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body createJobResponse
	decodeBody(t, resp, &body)

	require.NotNil(t, body.Job)
	assert.True(t, body.Job.IsActive)
	assert.Len(t, body.MatchedWorkers, 2)
	require.Len(t, body.Notifications, 2)
	for _, outcome := range body.Notifications {
		assert.True(t, outcome.Success)
	}
	assert.Len(t, env.sns.published, 2)
}

func TestCreateJobNoEligibleWorkers(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/jobs", models.InsertJob{
		ContactPhone:    "0799888777",
		SkillRequired:   "Plumber",
		Location:        "Kitengela",
		DailyRate:       1000,
		ProjectDuration: "1 day",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body createJobResponse
	decodeBody(t, resp, &body)
	assert.Empty(t, body.MatchedWorkers)
	assert.Empty(t, body.Notifications)
	assert.Empty(t, env.sns.published)
}

func TestCreateJobValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name  string
		input models.InsertJob
	}{
		{
			name:  "missing contact phone",
			input: models.InsertJob{SkillRequired: "Mason", Location: "Pipeline", DailyRate: 1000},
		},
		{
			name:  "unknown skill",
			input: models.InsertJob{ContactPhone: "0799888777", SkillRequired: "Astronaut", Location: "Pipeline"},
		},
		{
			name:  "unknown location",
			input: models.InsertJob{ContactPhone: "0799888777", SkillRequired: "Mason", Location: "Atlantis"},
		},
		{
			name:  "negative rate",
			input: models.InsertJob{ContactPhone: "0799888777", SkillRequired: "Mason", Location: "Pipeline", DailyRate: -1},
		},
		{
			name:  "unknown duration",
			input: models.InsertJob{ContactPhone: "0799888777", SkillRequired: "Mason", Location: "Pipeline", ProjectDuration: "forever"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.postJSON(t, "/api/jobs", tt.input)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRegisterWorker(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/workers/register", models.InsertWorker{
		Name: "David Odhiambo", Phone: "0711222333", Skill: "Mason", Location: "Pipeline",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var worker models.Worker
	decodeBody(t, resp, &worker)
	assert.NotZero(t, worker.ID)
	assert.True(t, worker.IsAvailable)
}

func TestRegisterWorkerDuplicatePhone(t *testing.T) {
	env := newTestEnv(t)

	input := models.InsertWorker{Name: "David Odhiambo", Phone: "0711222333", Skill: "Mason", Location: "Pipeline"}
	resp := env.postJSON(t, "/api/workers/register", input)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = env.postJSON(t, "/api/workers/register", input)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegisterWorkerValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/workers/register", models.InsertWorker{
		Name: "David Odhiambo", Phone: "0711222333", Skill: "Astronaut", Location: "Pipeline",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWorkerCount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.mem.CreateWorker(ctx, models.InsertWorker{
		Name: "James Kimani", Phone: "0733444555", Skill: "Electrician", Location: "Gikambura", IsAvailable: true,
	})
	require.NoError(t, err)

	resp, err := http.Get(env.server.URL + "/api/workers/count?skill=Electrician&location=Gikambura")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, float64(1), body["count"])

	resp, err = http.Get(env.server.URL + "/api/workers/count?skill=Nope&location=Gikambura")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListCatalogs(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/api/skills")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var skills map[string][]string
	decodeBody(t, resp, &skills)
	assert.Equal(t, models.Skills, skills["skills"])

	resp, err = http.Get(env.server.URL + "/api/locations")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var locations map[string][]string
	decodeBody(t, resp, &locations)
	assert.Equal(t, models.Locations, locations["locations"])
}

func TestNotifyMatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	worker, err := env.mem.CreateWorker(ctx, models.InsertWorker{
		Name: "James Kimani", Phone: "0733444555", Skill: "Electrician", Location: "Gikambura", IsAvailable: true,
	})
	require.NoError(t, err)
	job, err := env.mem.CreateJob(ctx, models.InsertJob{
		ContactPhone: "0799888777", SkillRequired: "Electrician", Location: "Gikambura",
		DailyRate: 1500, ProjectDuration: "1 day",
	})
	require.NoError(t, err)
	match, err := env.mem.CreateMatch(ctx, job.ID, worker.ID)
	require.NoError(t, err)

	resp, err := http.Post(env.server.URL+"/api/notifications/job-match/"+strconv.FormatInt(match.ID, 10), "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var outcome notify.Outcome
	decodeBody(t, resp, &outcome)
	assert.True(t, outcome.Success)
	assert.Len(t, env.sns.published, 1)
}

func TestNotifyUnknownMatch(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Post(env.server.URL+"/api/notifications/job-match/404", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestInboundSMS(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/sms", inboundSMS{From: "254711222333", Text: "YES"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "received", body["status"])
	// An inbound reply never triggers an outbound send.
	assert.Empty(t, env.sns.published)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeBody(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "yaya-jobs", body["service"])
}
