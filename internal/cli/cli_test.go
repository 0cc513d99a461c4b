package cli

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petcare-labs/petcare/internal/auth"
	"github.com/petcare-labs/petcare/internal/care"
	"github.com/petcare-labs/petcare/internal/errors"
	"github.com/petcare-labs/petcare/internal/fixtures"
	"github.com/petcare-labs/petcare/internal/gateway"
	"github.com/petcare-labs/petcare/internal/service"
	"github.com/petcare-labs/petcare/internal/storage"
)

const (
	caretakerToken = "care-token"
	viewerToken    = "view-token"
)

var (
	household = time.FixedZone("household", 2*60*60)
	fixedNow  = time.Date(2024, 3, 15, 14, 30, 0, 0, household)
)

type testEnv struct {
	url  string
	repo *storage.MemoryRepository
}

// newTestEnv serves a seeded gateway and isolates the CLI from the real
// home directory and environment.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PETCARE_AUTH_TOKEN", "")
	t.Setenv("PETCARE_ENDPOINT", "")

	ds, err := fixtures.Default(fixedNow)
	require.NoError(t, err)
	repo := storage.NewMemoryRepository(storage.WithDataset(ds))
	svc := service.New(repo,
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithLocation(household),
	)
	authn := auth.NewStaticTokenAuthenticator()
	authn.RegisterToken(caretakerToken, &auth.User{ID: "u1", Name: "alice", Roles: []string{auth.RoleCaretaker}})
	authn.RegisterToken(viewerToken, &auth.User{ID: "u2", Name: "sitter", Roles: []string{auth.RoleViewer}})

	gw, err := gateway.NewGateway(svc, authn, gateway.Config{Version: "test", Storage: "memory"})
	require.NoError(t, err)
	server := httptest.NewServer(gw)
	t.Cleanup(server.Close)
	return &testEnv{url: server.URL, repo: repo}
}

type result struct {
	code   int
	stdout string
	stderr string
}

type runOpts struct {
	token string
	stdin string
}

func (e *testEnv) run(t *testing.T, opts runOpts, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	c := New()
	c.SetOutput(&out, &errOut)
	c.SetInput(strings.NewReader(opts.stdin))
	c.SetClock(func() time.Time { return fixedNow })

	global := []string{"--endpoint", e.url, "--no-color"}
	if opts.token != "" {
		global = append(global, "--token", opts.token)
	}
	c.SetArgs(append(global, args...))
	code := c.Execute()
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

// caretaker runs a command with the caretaker token.
func (e *testEnv) caretaker(t *testing.T, args ...string) result {
	t.Helper()
	return e.run(t, runOpts{token: caretakerToken}, args...)
}

func TestPetListAndShow(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "pet", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "NAME")
	assert.Contains(t, res.stdout, "Max")
	assert.Contains(t, res.stdout, "3 years old")
	assert.Contains(t, res.stdout, "Holland Lop")

	res = env.caretaker(t, "pet", "show", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Max (#1)")
	assert.Contains(t, res.stdout, "Salmon kibble")
	assert.Contains(t, res.stdout, "Rabies")
	assert.Contains(t, res.stdout, "Annual wellness exam")
	assert.Contains(t, res.stdout, "########.. 8/10")
}

func TestPetLifecycle(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "pet", "add", "--name", "Rex", "--type", "dog", "--birth-date", "2023-06-01")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Added pet #5 Rex")

	res = env.caretaker(t, "--json", "pet", "edit", "5", "--breed", "Beagle")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var pet care.Pet
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &pet))
	assert.Equal(t, "Beagle", pet.Breed)
	assert.Equal(t, "Rex", pet.Name)
	assert.Equal(t, care.DefaultLevel, pet.Appetite)

	res = env.caretaker(t, "pet", "track", "5", "--energy", "2")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "##........ 2/10")

	// declining the prompt keeps the pet
	res = env.run(t, runOpts{token: caretakerToken, stdin: "n\n"}, "pet", "delete", "5")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Aborted.")
	_, err := env.repo.Pets().Get(t.Context(), 5)
	require.NoError(t, err)

	res = env.caretaker(t, "pet", "delete", "5", "--yes")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Deleted pet #5")

	res = env.caretaker(t, "pet", "show", "5")
	assert.Equal(t, ExitValidation, res.code)
	assert.Contains(t, res.stderr, "not found")
}

func TestPetAddFromFile(t *testing.T) {
	env := newTestEnv(t)

	path := filepath.Join(t.TempDir(), "pip.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Pip\ntype: hamster\nnotes: Night owl\n"), 0o600))

	res := env.caretaker(t, "--json", "pet", "add", "-f", path, "--energy", "9")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var pet care.Pet
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &pet))
	assert.Equal(t, "Pip", pet.Name)
	assert.Equal(t, care.PetHamster, pet.Type)
	assert.Equal(t, "Night owl", pet.Notes)
	assert.Equal(t, 9, pet.Energy)

	// unknown keys are rejected before anything is sent
	require.NoError(t, os.WriteFile(path, []byte("name: Pip\ncolour: brown\n"), 0o600))
	res = env.caretaker(t, "pet", "add", "-f", path)
	assert.Equal(t, ExitValidation, res.code)
	assert.Contains(t, res.stderr, "invalid YAML")
}

func TestPetValidationErrors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing name", []string{"pet", "add", "--type", "dog"}},
		{"bad type", []string{"pet", "add", "--name", "Rex", "--type", "dragon"}},
		{"bad id", []string{"pet", "show", "abc"}},
		{"missing id", []string{"pet", "show"}},
		{"unknown flag", []string{"pet", "list", "--colour"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.caretaker(t, tt.args...)
			assert.Equal(t, ExitValidation, res.code, res.stdout)
			assert.NotEmpty(t, res.stderr)
		})
	}
}

func TestReminderCommands(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "reminder", "list", "--filter", "overdue")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "overdue 2")
	assert.Contains(t, res.stdout, "Flea treatment")
	assert.NotContains(t, res.stdout, "Morning feeding")

	res = env.caretaker(t, "reminder", "list", "--filter", "someday")
	assert.Equal(t, ExitValidation, res.code)

	res = env.caretaker(t, "reminder", "snooze", "2", "--for", "30m")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "until 2024-03-15 15:00")

	res = env.caretaker(t, "reminder", "snooze", "2", "--for=-5m")
	assert.Equal(t, ExitValidation, res.code)

	res = env.caretaker(t, "reminder", "complete", "2")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Completed reminder #2 Flea treatment")

	res = env.caretaker(t, "--json", "reminder", "list", "--pet", "2")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var list service.ReminderList
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &list))
	for _, r := range list.Reminders {
		assert.Equal(t, int64(2), r.PetID)
		assert.False(t, r.Completed)
	}

	res = env.caretaker(t, "reminder", "add", "--pet", "1", "--type", "medication", "--title", "Heartworm pill", "--at", "2024-03-20 08:00")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Added reminder #8 Heartworm pill")

	res = env.caretaker(t, "reminder", "add", "--pet", "1", "--type", "medication", "--title", "x", "--at", "next tuesday")
	assert.Equal(t, ExitValidation, res.code)
	assert.Contains(t, res.stderr, "cannot parse")

	res = env.caretaker(t, "reminder", "delete", "8")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
}

func TestAppointmentCommands(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "appointment", "list", "--pet", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Annual wellness exam")
	assert.Contains(t, res.stdout, "Rabies booster")
	assert.NotContains(t, res.stdout, "Teeth cleaning")

	res = env.caretaker(t, "appointment", "calendar", "--month", "2024-03")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "March 2024")
	assert.Contains(t, res.stdout, "Fri Mar 15 (today)")
	assert.Contains(t, res.stdout, "Mon Mar 18")
	assert.Contains(t, res.stdout, "Annual wellness exam")

	res = env.caretaker(t, "appointment", "calendar", "--month", "March")
	assert.Equal(t, ExitValidation, res.code)

	res = env.caretaker(t, "appointment", "complete", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Completed appointment #1")

	res = env.caretaker(t, "appointment", "add", "--pet", "2", "--type", "checkup", "--at", "2024-03-17 10:00",
		"--vet", "Dr. Chen", "--reason", "Limping")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Scheduled appointment #6 checkup")

	res = env.caretaker(t, "appointment", "delete", "6")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
}

func TestFeedingAndVaccinationCommands(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "feeding", "toggle", "6")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Toggled feeding #6 at 09:00 (on)")

	res = env.caretaker(t, "feeding", "add", "--pet", "3", "--time", "07:00", "--food", "Millet", "--amount", "1 spray", "--enabled=false")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "(off)")

	res = env.caretaker(t, "feeding", "list", "--pet", "1")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Equal(t, 3, strings.Count(res.stdout, "\n"), res.stdout)

	res = env.caretaker(t, "vaccination", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	lines := strings.Split(res.stdout, "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	assert.Contains(t, lineWith(lines, "FVRCP"), "overdue")
	assert.Contains(t, lineWith(lines, "Rabies"), "up to date")

	res = env.caretaker(t, "vaccination", "add", "--pet", "2", "--name", "Rabies", "--given", "2024-03-01", "--next-due", "2025-03-01")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Recorded Rabies (#5) for pet 2")

	res = env.caretaker(t, "vaccination", "delete", "5")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
}

func lineWith(lines []string, s string) string {
	for _, l := range lines {
		if strings.Contains(l, s) {
			return l
		}
	}
	return ""
}

func TestDashboard(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(t, runOpts{token: viewerToken}, "dashboard")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Pet Care Dashboard")
	assert.Contains(t, res.stdout, "Pets: 4")
	assert.Contains(t, res.stdout, "2 overdue")
	assert.Contains(t, res.stdout, "Flea treatment")
	assert.Contains(t, res.stdout, "Teeth cleaning")

	res = env.run(t, runOpts{token: viewerToken}, "--json", "dashboard")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var d service.Dashboard
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &d))
	assert.Equal(t, 4, d.TotalPets)
	assert.Len(t, d.UpcomingAppointments, 3)
}

func TestAuthorizationExitCodes(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(t, runOpts{token: viewerToken}, "pet", "add", "--name", "Rex", "--type", "dog")
	assert.Equal(t, ExitAuth, res.code)
	assert.Contains(t, res.stderr, "access denied")

	res = env.run(t, runOpts{token: "nope"}, "pet", "list")
	assert.Equal(t, ExitAuth, res.code)

	res = env.run(t, runOpts{}, "pet", "list")
	assert.Equal(t, ExitAuth, res.code)

	res = env.run(t, runOpts{token: viewerToken}, "--json", "pet", "delete", "1", "--yes")
	assert.Equal(t, ExitAuth, res.code)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stderr), &body))
	assert.EqualValues(t, errors.CodeForbidden, body["code"])
}

func TestStatusAndAudit(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "status")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Gateway: ready")
	assert.Contains(t, res.stdout, "Storage: memory")

	env.caretaker(t, "pet", "list")
	res = env.caretaker(t, "audit", "summary")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Request Summary:")
	assert.Contains(t, res.stdout, "GET /api/v1/pets")

	env.repo.SetConnectivityFailure(true)
	res = env.caretaker(t, "status")
	assert.Equal(t, ExitStorage, res.code)
	assert.Contains(t, res.stdout, "Gateway: not ready")
}

func TestStorageFailureExitCode(t *testing.T) {
	env := newTestEnv(t)
	env.repo.SetPersistenceFailure(true)

	res := env.caretaker(t, "feeding", "toggle", "1")
	assert.Equal(t, ExitStorage, res.code)
}

func TestGatewayUnreachable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	server := httptest.NewServer(nil)
	url := server.URL
	server.Close()

	var out, errOut bytes.Buffer
	c := New()
	c.SetOutput(&out, &errOut)
	c.SetArgs([]string{"--endpoint", url, "--token", caretakerToken, "pet", "list"})
	assert.Equal(t, ExitInternal, c.Execute())
	assert.Contains(t, errOut.String(), "gateway unavailable")
}

func TestAuthLoginStatusLogout(t *testing.T) {
	env := newTestEnv(t)

	res := env.run(t, runOpts{token: "nope"}, "auth", "login")
	assert.Equal(t, ExitAuth, res.code)

	res = env.run(t, runOpts{stdin: caretakerToken + "\n"}, "auth", "login")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Authentication successful")

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(home, ".petcare", tokenFileName))
	require.NoError(t, err)
	assert.Equal(t, caretakerToken, string(data))

	res = env.run(t, runOpts{}, "auth", "status")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "token file")

	// the stored token is used when no flag is given
	res = env.run(t, runOpts{}, "pet", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)

	res = env.run(t, runOpts{}, "auth", "logout")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	res = env.run(t, runOpts{}, "auth", "status")
	assert.Equal(t, ExitAuth, res.code)
}

func TestDoctorAndVersion(t *testing.T) {
	env := newTestEnv(t)

	res := env.caretaker(t, "doctor")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "All checks passed")

	res = env.run(t, runOpts{}, "--json", "doctor")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var report struct {
		AllPassed bool              `json:"allPassed"`
		Checks    []DiagnosticCheck `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.False(t, report.AllPassed)
	assert.Len(t, report.Checks, 5)

	res = env.caretaker(t, "--json", "version")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	var v struct {
		Version string `json:"version"`
		Server  struct {
			Version string `json:"version"`
			Status  string `json:"status"`
		} `json:"server"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &v))
	assert.Equal(t, Version, v.Version)
	assert.Equal(t, "test", v.Server.Version)
	assert.Equal(t, "ok", v.Server.Status)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitSuccess},
		{errors.NewInvalidField("pet", "name", "required"), ExitValidation},
		{errors.NewNotFound("pet", 1), ExitValidation},
		{errors.NewAuthFailed("bad token"), ExitAuth},
		{errors.NewAccessDenied("sitter", "write pets"), ExitAuth},
		{errors.NewStorageUnavailable("down"), ExitStorage},
		{errors.NewRateLimited(), ExitInternal},
		{errors.NewGatewayUnavailable("", "no endpoint"), ExitInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExitCode(tt.err), "%v", tt.err)
	}
}
