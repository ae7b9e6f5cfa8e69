package controllers_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/gradebook/internal/bootstrap"
	"github.com/yigit/gradebook/internal/config"
	"github.com/yigit/gradebook/internal/pkg/auth"
)

func init() {
	auth.BcryptCost = bcrypt.MinCost
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	server *httptest.Server
	client *http.Client
	deps   *bootstrap.Dependencies
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()

	cfg, err := config.LoadConfig(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "test.db")
	cfg.Export.Dir = filepath.Join(dir, "exports")
	cfg.Seed.CreateDefaultAdmin = false

	lgr := zerolog.Nop()
	database, err := bootstrap.SetupDatabase(context.Background(), cfg, lgr)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	require.NoError(t, err)
	require.NoError(t, bootstrap.RunSeed(context.Background(), cfg, deps))

	router, err := bootstrap.SetupRouter(cfg, deps, lgr)
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testApp{
		server: server,
		deps:   deps,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (a *testApp) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.Get(a.server.URL + path)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	resp, err := a.client.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	return resp, readBody(t, resp)
}

func (a *testApp) postJSON(t *testing.T, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	resp, err := a.client.Post(a.server.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(readBody(t, resp)), &out))
	return resp, out
}

func (a *testApp) stats(t *testing.T, path string) map[string]any {
	t.Helper()
	resp, body := a.get(t, path)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.Equal(t, true, out["success"])
	return out["stats"].(map[string]any)
}

// signupAndLogin creates an account through the HTML forms and logs in
func (a *testApp) signupAndLogin(t *testing.T, username, password string) {
	t.Helper()
	resp, _ := a.postForm(t, "/signup", url.Values{
		"username":         {username},
		"password":         {password},
		"confirm_password": {password},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = a.postForm(t, "/login", url.Values{"username": {username}, "password": {password}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/dashboard", resp.Header.Get("Location"))
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestPublicPages(t *testing.T) {
	app := newTestApp(t)

	resp, _ := app.get(t, "/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	for _, path := range []string{"/login", "/signup", "/register"} {
		resp, body := app.get(t, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Contains(t, body, "<form", path)
	}

	resp, body := app.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok","database":"ok"}`, body)

	resp, body = app.get(t, "/static/script.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "searchTable")

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestProtectedPagesRedirectAnonymousUsers(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/dashboard", "/account", "/add", "/edit/1"} {
		resp, _ := app.get(t, path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/login", resp.Header.Get("Location"), path)
	}

	resp, _ := app.postForm(t, "/delete/1", url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestProtectedPagesAnswerJSONClientsWith401(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodGet, app.server.URL+"/dashboard", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/json")

	resp, err := app.client.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.JSONEq(t, `{"success":false,"message":"Authentication required"}`, body)
}

func TestTamperedSessionCookieIsRejected(t *testing.T) {
	app := newTestApp(t)

	req, err := http.NewRequest(http.MethodGet, app.server.URL+"/dashboard", nil)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: app.deps.Sessions.CookieName(), Value: "not-a-token"})

	resp, err := app.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestAPIRegisterAndLogin(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postJSON(t, "/api/register", `{"username":"alice","password":"pw1","email":"alice@school.edu"}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "user", user["role"])
	assert.NotContains(t, user, "password_hash")

	resp, body = app.postJSON(t, "/api/register", `{"username":"alice","password":"other"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Username already taken", body["message"])

	resp, body = app.postJSON(t, "/api/register", `{"username":"bob","password":""}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Username and password are required", body["message"])

	resp, body = app.postJSON(t, "/api/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", body["message"])

	resp, body = app.postJSON(t, "/api/login", `{"username":"ghost","password":"pw1"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", body["message"])

	resp, body = app.postJSON(t, "/api/login", `{"username":"alice","password":""}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid username or password", body["message"])

	resp, body = app.postJSON(t, "/api/login", `{"identifier":"alice@school.edu","password":"pw1"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	// the API login also establishes the browser session
	resp, _ = app.get(t, "/dashboard")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTMLLoginAndSignupFailures(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.postForm(t, "/login", url.Values{"username": {"nobody"}, "password": {"x"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "alert-danger")
	assert.Contains(t, body, "Invalid username or password")

	resp, body = app.postForm(t, "/login", url.Values{"username": {"  "}, "password": {""}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body, "alert-danger")
	assert.Contains(t, body, "Invalid username or password")

	resp, body = app.postForm(t, "/signup", url.Values{
		"username": {"carol"}, "password": {"a"}, "confirm_password": {"b"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Passwords do not match")

	app.signupAndLogin(t, "carol", "pw")

	resp, body = app.postForm(t, "/signup", url.Values{"username": {"carol"}, "password": {"pw"}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body, "Username already taken")
}

func TestFlashIsShownOnceAfterRedirect(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "dora", "pw")

	_, body := app.get(t, "/dashboard")
	assert.Contains(t, body, "Logged in successfully")

	_, body = app.get(t, "/dashboard")
	assert.NotContains(t, body, "Logged in successfully")
}

func TestAddStudentRejectsNonIntegerMarks(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "erin", "pw")

	resp, body := app.postForm(t, "/add", url.Values{
		"roll_number": {"R1"}, "name": {"A"}, "subject": {"Math"}, "marks": {"abc"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Marks must be an integer")
	// prior input is kept
	assert.Contains(t, body, `value="R1"`)

	resp, body = app.postForm(t, "/add", url.Values{"roll_number": {"R1"}, "marks": {"10"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body, "Please fill required fields")

	students, err := app.deps.StudentService.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Equal(t, float64(0), app.stats(t, "/api/stats")["total_students"])
}

func TestStudentLifecycleUpdatesStats(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "frank", "pw")

	for _, form := range []url.Values{
		{"roll_number": {"R2"}, "name": {"Bob"}, "subject": {"Math"}, "marks": {"70"}, "grade": {"B"}},
		{"roll_number": {"R1"}, "name": {"Alice"}, "subject": {"Math"}, "marks": {"85"}, "grade": {"A"}},
	} {
		resp, _ := app.postForm(t, "/add", form)
		require.Equal(t, http.StatusFound, resp.StatusCode)
		require.Equal(t, "/dashboard", resp.Header.Get("Location"))
	}

	stats := app.stats(t, "/stats")
	assert.Equal(t, float64(2), stats["total_students"])
	assert.Equal(t, 77.5, stats["avg_marks"])
	assert.Equal(t, float64(85), stats["highest_marks"])
	assert.Equal(t, float64(70), stats["lowest_marks"])
	assert.NotNil(t, stats["updated_at"])

	resp, body := app.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, strings.Index(body, "Alice"), strings.Index(body, "Bob"), "ordered by roll number")

	students, err := app.deps.StudentService.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	alice := students[0]

	resp, body = app.get(t, "/edit/"+itoa(alice.ID))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `value="Alice"`)

	resp, _ = app.postForm(t, "/edit/"+itoa(alice.ID), url.Values{
		"roll_number": {"R1"}, "name": {"Alice"}, "subject": {"Math"}, "marks": {"95"}, "grade": {""},
	})
	require.Equal(t, http.StatusFound, resp.StatusCode)

	stats = app.stats(t, "/stats/")
	assert.Equal(t, float64(95), stats["highest_marks"])
	dist := stats["grade_distribution"].([]any)
	grades := map[string]float64{}
	for _, d := range dist {
		entry := d.(map[string]any)
		grades[entry["grade"].(string)] = entry["count"].(float64)
	}
	assert.Equal(t, map[string]float64{"B": 1, "Unassigned": 1}, grades)

	resp, _ = app.postForm(t, "/delete/"+itoa(alice.ID), url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	_, body = app.get(t, "/dashboard")
	assert.Contains(t, body, "Student record deleted")
	assert.Equal(t, float64(1), app.stats(t, "/api/stats")["total_students"])

	// unknown ids
	resp, _ = app.get(t, "/edit/9999")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_, body = app.get(t, "/dashboard")
	assert.Contains(t, body, "Record not found")

	resp, _ = app.postForm(t, "/delete/9999", url.Values{})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, float64(1), app.stats(t, "/api/stats")["total_students"])
}

func TestStatsWithNoStudents(t *testing.T) {
	app := newTestApp(t)

	resp, body := app.get(t, "/api/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		Success bool `json:"success"`
		Stats   struct {
			TotalStudents     int              `json:"total_students"`
			AvgMarks          *float64         `json:"avg_marks"`
			HighestMarks      *int             `json:"highest_marks"`
			LowestMarks       *int             `json:"lowest_marks"`
			GradeDistribution []map[string]any `json:"grade_distribution"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	assert.True(t, out.Success)
	assert.Zero(t, out.Stats.TotalStudents)
	assert.Nil(t, out.Stats.AvgMarks)
	assert.Nil(t, out.Stats.HighestMarks)
	assert.Nil(t, out.Stats.LowestMarks)
	assert.NotNil(t, out.Stats.GradeDistribution)
	assert.Empty(t, out.Stats.GradeDistribution)
	assert.Contains(t, body, `"grade_distribution":[]`)
}

func TestAccountUpdateAndDelete(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "gina", "pw")

	resp, _ := app.postForm(t, "/account", url.Values{"username": {"gina2"}, "password": {"newpw"}})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/account", resp.Header.Get("Location"))

	resp, body := app.get(t, "/account")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Username updated successfully")
	assert.Contains(t, body, `value="gina2"`)

	resp, _ = app.postJSON(t, "/api/login", `{"username":"gina2","password":"newpw"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = app.postForm(t, "/account/delete", url.Values{})
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	resp, _ = app.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDeletedAccountInvalidatesExistingCookie(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "hank", "pw")

	user, err := app.deps.Repos.UserRepository.GetByUsername(context.Background(), "hank")
	require.NoError(t, err)
	require.NoError(t, app.deps.AuthService.DeleteAccount(context.Background(), user.ID))

	resp, _ := app.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestDashboardAdminBadgeFollowsStoredRole(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "dana", "pw")

	const badge = `<span class="badge bg-warning text-dark">admin</span>`
	setRole := func(role string) {
		_, err := app.deps.DB.ExecContext(context.Background(),
			`UPDATE users SET role = ? WHERE username = ?`, role, "dana")
		require.NoError(t, err)
	}

	resp, body := app.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, badge)

	setRole("admin")
	resp, body = app.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, badge)

	setRole("user")
	resp, body = app.get(t, "/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, badge)
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t)
	app.signupAndLogin(t, "ivy", "pw")

	resp, _ := app.get(t, "/logout")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, body := app.get(t, "/login")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "You have been logged out")

	resp, _ = app.get(t, "/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
