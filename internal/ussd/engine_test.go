// internal/ussd/engine_test.go
package ussd

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yaya-jobs/internal/common/logger"
	"yaya-jobs/internal/models"
	"yaya-jobs/internal/store"
)

const testServiceCode = "*384*15667#"

func newTestEngine(t *testing.T) (*Engine, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	engine := NewEngine(&Config{ServiceCode: testServiceCode}, mem, mem, logger.NewNoOpLogger())
	return engine, mem
}

func registerWorker(t *testing.T, mem *store.MemoryStore, name, phone, skill, location string) *models.Worker {
	t.Helper()
	worker, err := mem.CreateWorker(context.Background(), models.InsertWorker{
		Name:        name,
		Phone:       phone,
		Skill:       skill,
		Location:    location,
		IsAvailable: true,
	})
	require.NoError(t, err)
	return worker
}

func TestResponseRender(t *testing.T) {
	assert.Equal(t, "CON Choose:", Response{Kind: Continue, Text: "Choose:"}.Render())
	assert.Equal(t, "END Goodbye.", Response{Kind: End, Text: "Goodbye."}.Render())
}

func TestEngineInitialContact(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()

	resp := engine.Handle(ctx, "s1", "0712345678", "")

	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Welcome to Yaya - Construction Jobs")
	assert.Contains(t, resp.Text, "1. Register as a Worker")

	session, err := mem.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.StepMainMenu, session.Step)
}

func TestEngineRegistrationFlow(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	sessionID := "s1"
	phone := "0712345678"

	resp := engine.Handle(ctx, sessionID, phone, "")
	require.Equal(t, Continue, resp.Kind)

	resp = engine.Handle(ctx, sessionID, phone, "1")
	require.Equal(t, Continue, resp.Kind)
	assert.Equal(t, "Enter your full name:", resp.Text)

	resp = engine.Handle(ctx, sessionID, phone, "1*John Mwangi")
	require.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Select your skill:")
	assert.Contains(t, resp.Text, "2. Carpenter")

	resp = engine.Handle(ctx, sessionID, phone, "1*John Mwangi*2")
	require.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Select your location:")
	assert.Contains(t, resp.Text, "1. Pipeline")

	resp = engine.Handle(ctx, sessionID, phone, "1*John Mwangi*2*1")
	require.Equal(t, End, resp.Kind)
	assert.Contains(t, resp.Text, "Registration successful!")
	assert.Contains(t, resp.Text, "Name: John Mwangi")
	assert.Contains(t, resp.Text, "Skill: Carpenter")
	assert.Contains(t, resp.Text, "Location: Pipeline")
	assert.Contains(t, resp.Text, testServiceCode)

	worker, err := mem.GetWorkerByPhone(ctx, phone)
	require.NoError(t, err)
	require.NotNil(t, worker)
	assert.Equal(t, "John Mwangi", worker.Name)
	assert.Equal(t, "Carpenter", worker.Skill)
	assert.Equal(t, "Pipeline", worker.Location)
	assert.True(t, worker.IsAvailable)

	// Session is back at the main menu after the terminal message.
	session, err := mem.Get(ctx, sessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, models.StepMainMenu, session.Step)
}

func TestEngineRegistrationNameWithDelimiter(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, "s2", "0700000001", "")
	engine.Handle(ctx, "s2", "0700000001", "1")

	// The name is the second segment even when later history exists.
	resp := engine.Handle(ctx, "s2", "0700000001", "1*Jane Wanjiku")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Select your skill:")
}

func TestEngineRegistrationInvalidSelections(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()
	sessionID := "s3"
	phone := "0700000002"

	engine.Handle(ctx, sessionID, phone, "")
	engine.Handle(ctx, sessionID, phone, "1")
	engine.Handle(ctx, sessionID, phone, "1*Peter Otieno")

	// Out-of-range skill index repeats the list without advancing.
	resp := engine.Handle(ctx, sessionID, phone, "1*Peter Otieno*99")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Invalid selection. Please select a skill:")

	// Non-numeric input is rejected the same way.
	resp = engine.Handle(ctx, sessionID, phone, "1*Peter Otieno*99*abc")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Invalid selection. Please select a skill:")

	// A valid retry advances to the location list.
	resp = engine.Handle(ctx, sessionID, phone, "1*Peter Otieno*99*abc*3")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Select your location:")

	resp = engine.Handle(ctx, sessionID, phone, "1*Peter Otieno*99*abc*3*0")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Invalid selection. Please select a location:")
}

func TestEngineDuplicateRegistration(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0711222333"
	registerWorker(t, mem, "David Odhiambo", phone, "Mason", "Pipeline")

	engine.Handle(ctx, "s4", phone, "")
	engine.Handle(ctx, "s4", phone, "1")
	engine.Handle(ctx, "s4", phone, "1*David Odhiambo")
	engine.Handle(ctx, "s4", phone, "1*David Odhiambo*1")

	resp := engine.Handle(ctx, "s4", phone, "1*David Odhiambo*1*1")
	assert.Equal(t, End, resp.Kind)
	assert.Equal(t, "You are already registered.", resp.Text)
}

func TestEngineMainMenuInvalidOption(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, "s5", "0700000003", "")
	resp := engine.Handle(ctx, "s5", "0700000003", "9")

	assert.Equal(t, Continue, resp.Kind)
	assert.True(t, strings.HasPrefix(resp.Text, "Invalid option."))
	assert.Contains(t, resp.Text, "1. Register as a Worker")
}

func TestEngineViewJobsUnregistered(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, "s6", "0700000004", "")
	resp := engine.Handle(ctx, "s6", "0700000004", "2")

	assert.Equal(t, End, resp.Kind)
	assert.Equal(t, "You are not registered yet. Please register first.", resp.Text)
}

func TestEngineViewJobsNoMatches(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0722333444"
	registerWorker(t, mem, "John Mwangi", phone, "Carpenter", "Pipeline")

	engine.Handle(ctx, "s7", phone, "")
	resp := engine.Handle(ctx, "s7", phone, "2")

	assert.Equal(t, End, resp.Kind)
	assert.Equal(t, "No job matches found. We'll notify you when new matching jobs are available.", resp.Text)
}

func TestEngineViewJobsSingleMatch(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0733444555"
	registerWorker(t, mem, "James Kimani", phone, "Electrician", "Gikambura")

	_, err := mem.CreateJob(ctx, models.InsertJob{
		ContactPhone:    "0799888777",
		SkillRequired:   "Electrician",
		Location:        "Gikambura",
		DailyRate:       1500,
		ProjectDuration: "1 day",
		AdditionalNotes: "Need wiring installation for a new kitchen.",
	})
	require.NoError(t, err)

	engine.Handle(ctx, "s8", phone, "")
	resp := engine.Handle(ctx, "s8", phone, "2")

	assert.Equal(t, End, resp.Kind)
	assert.Contains(t, resp.Text, "JOB OPPORTUNITY")
	assert.Contains(t, resp.Text, "Skill: Electrician")
	assert.Contains(t, resp.Text, "Payment: KSh 1500/day")
	assert.Contains(t, resp.Text, "Details: Need wiring installation for a new kitchen.")
	assert.Contains(t, resp.Text, "To apply, call: 0799888777")
}

func TestEngineViewJobsListsLatestThree(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0700000005"
	registerWorker(t, mem, "Mary Akinyi", phone, "Mason", "Rongai")

	contacts := []string{"0799000001", "0799000002", "0799000003", "0799000004"}
	for _, contact := range contacts {
		_, err := mem.CreateJob(ctx, models.InsertJob{
			ContactPhone:    contact,
			SkillRequired:   "Mason",
			Location:        "Rongai",
			DailyRate:       1200,
			ProjectDuration: "1 week",
		})
		require.NoError(t, err)
	}

	engine.Handle(ctx, "s9", phone, "")
	resp := engine.Handle(ctx, "s9", phone, "2")

	assert.Equal(t, End, resp.Kind)
	assert.Contains(t, resp.Text, "Your available job matches:")
	// Newest first, oldest of the four dropped.
	first := strings.Index(resp.Text, "0799000004")
	second := strings.Index(resp.Text, "0799000003")
	third := strings.Index(resp.Text, "0799000002")
	assert.True(t, first >= 0 && second > first && third > second)
	assert.NotContains(t, resp.Text, "0799000001")
	assert.Contains(t, resp.Text, "Dial "+testServiceCode+" and select option 2 to view again.")
}

func TestEngineUpdateProfileFlow(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0700000006"
	worker := registerWorker(t, mem, "Paul Njoroge", phone, "Plumber", "Kasarani")

	engine.Handle(ctx, "s10", phone, "")
	resp := engine.Handle(ctx, "s10", phone, "3")
	require.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Update Profile")

	resp = engine.Handle(ctx, "s10", phone, "3*1")
	require.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Select your new skill:")

	resp = engine.Handle(ctx, "s10", phone, "3*1*6")
	assert.Equal(t, End, resp.Kind)
	assert.Contains(t, resp.Text, "Your skill has been updated to: Welder")

	updated, err := mem.GetWorker(ctx, worker.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Welder", updated.Skill)
	assert.Equal(t, "Kasarani", updated.Location)
}

func TestEngineUpdateLocationFlow(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0700000007"
	worker := registerWorker(t, mem, "Ann Chebet", phone, "Painter", "Kitengela")

	engine.Handle(ctx, "s11", phone, "")
	engine.Handle(ctx, "s11", phone, "3")
	resp := engine.Handle(ctx, "s11", phone, "3*2")
	require.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Select your new location:")

	resp = engine.Handle(ctx, "s11", phone, "3*2*3")
	assert.Equal(t, End, resp.Kind)
	assert.Contains(t, resp.Text, "Your location has been updated to: Kawangware")

	updated, err := mem.GetWorker(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kawangware", updated.Location)
}

func TestEngineUpdateProfileBackToMainMenu(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0700000008"
	registerWorker(t, mem, "Brian Omondi", phone, "Mason", "Pipeline")

	engine.Handle(ctx, "s12", phone, "")
	engine.Handle(ctx, "s12", phone, "3")
	resp := engine.Handle(ctx, "s12", phone, "3*3")

	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Welcome to Yaya - Construction Jobs")
}

func TestEngineUpdateProfileUnregistered(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	engine.Handle(ctx, "s13", "0700000009", "")
	resp := engine.Handle(ctx, "s13", "0700000009", "3")

	assert.Equal(t, End, resp.Kind)
	assert.Equal(t, "You are not registered yet. Please register first.", resp.Text)
}

func TestEngineEmptyTextResetsMidFlow(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()
	phone := "0700000010"

	engine.Handle(ctx, "s14", phone, "")
	engine.Handle(ctx, "s14", phone, "1")

	// A fresh initial contact on the same token starts over at the menu.
	resp := engine.Handle(ctx, "s14", phone, "")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Welcome to Yaya - Construction Jobs")

	session, err := mem.Get(ctx, "s14")
	require.NoError(t, err)
	assert.Equal(t, models.StepMainMenu, session.Step)
}

func TestEngineSelfHealsUnknownStep(t *testing.T) {
	engine, mem := newTestEngine(t)
	ctx := context.Background()

	err := mem.Create(ctx, &models.UssdSession{
		SessionID:   "s15",
		PhoneNumber: "0700000011",
		Step:        models.UssdStep("garbage"),
	})
	require.NoError(t, err)

	resp := engine.Handle(ctx, "s15", "0700000011", "1")
	assert.Equal(t, Continue, resp.Kind)
	assert.Contains(t, resp.Text, "Welcome to Yaya - Construction Jobs")

	session, err := mem.Get(ctx, "s15")
	require.NoError(t, err)
	assert.Equal(t, models.StepMainMenu, session.Step)
}

func TestEngineMissingSessionMidHistory(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	// History present but no stored session (expired): a session is
	// recreated at the main menu and the trailing token is interpreted
	// against it.
	resp := engine.Handle(ctx, "s16", "0700000012", "1*John*2*1")
	assert.Equal(t, Continue, resp.Kind)
	assert.Equal(t, "Enter your full name:", resp.Text)
}
