package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	config "github.com/anjiri1684/tutor_scheduler/configs"
	"github.com/anjiri1684/tutor_scheduler/database"
	"github.com/anjiri1684/tutor_scheduler/handlers"
	"github.com/anjiri1684/tutor_scheduler/models"
	"github.com/anjiri1684/tutor_scheduler/routes"
	"github.com/anjiri1684/tutor_scheduler/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const testSecret = "test-secret-0123456789"

type apiClient struct {
	t   *testing.T
	app *fiber.App
	svc *services.Services
}

func newAPI(t *testing.T) *apiClient {
	t.Helper()
	db, err := database.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := config.Config{JWTSecret: testSecret, JWTTTL: time.Hour}
	svc := services.New(db, services.Config{}, nil)
	app := fiber.New()
	routes.Setup(app, handlers.New(svc, cfg), cfg.JWTSecret)
	return &apiClient{t: t, app: app, svc: svc}
}

func (a *apiClient) do(method, path string, body interface{}, token string) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req, -1)
	if err != nil {
		a.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			a.t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode, out
}

func (a *apiClient) login(username string) string {
	a.t.Helper()
	status, body := a.do("POST", "/api/v1/auth/login", map[string]string{"login": username, "password": "password123"}, "")
	if status != fiber.StatusOK {
		a.t.Fatalf("login %s: status %d %v", username, status, body)
	}
	return body["token"].(string)
}

func (a *apiClient) createUser(username string, role models.Role) *models.User {
	a.t.Helper()
	u, err := a.svc.Users.CreateUser(context.Background(), services.NewUser{
		Username: username,
		Email:    username[1:] + "@example.com",
		FullName: "Test " + username[1:],
		Password: "password123",
		Role:     role,
	})
	if err != nil {
		a.t.Fatalf("create user: %v", err)
	}
	return u
}

func TestTermLookup(t *testing.T) {
	api := newAPI(t)

	status, body := api.do("GET", "/api/v1/terms/2025-01-10", nil, "")
	if status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if body["term"] != "jan-easter" || body["start_date"] != "2025-01-06" || body["end_date"] != "2025-04-10" {
		t.Fatalf("unexpected term %v", body)
	}

	status, body = api.do("GET", "/api/v1/terms/2025-04-20", nil, "")
	if status != fiber.StatusUnprocessableEntity || body["kind"] != "NotInTermTime" {
		t.Fatalf("expected 422 NotInTermTime, got %d %v", status, body)
	}

	status, _ = api.do("GET", "/api/v1/terms/not-a-date", nil, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed date, got %d", status)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	api := newAPI(t)

	status, body := api.do("POST", "/api/v1/auth/register", map[string]string{
		"username":  "@newstudent",
		"full_name": "New Student",
		"email":     "new@example.com",
		"password":  "password123",
	}, "")
	if status != fiber.StatusCreated || body["role"] != "student" {
		t.Fatalf("expected 201 student, got %d %v", status, body)
	}

	status, _ = api.do("POST", "/api/v1/auth/register", map[string]string{
		"username":  "newstudent",
		"full_name": "No At Sign",
		"email":     "other@example.com",
		"password":  "password123",
	}, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for a bad username, got %d", status)
	}

	status, body = api.do("POST", "/api/v1/auth/register", map[string]string{
		"username":  "@newstudent",
		"full_name": "Again",
		"email":     "again@example.com",
		"password":  "password123",
	}, "")
	if status != fiber.StatusConflict || body["field"] != "username" {
		t.Fatalf("expected 409 on username, got %d %v", status, body)
	}

	status, _ = api.do("POST", "/api/v1/auth/login", map[string]string{"login": "@newstudent", "password": "wrong"}, "")
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for a wrong password, got %d", status)
	}

	token := api.login("@newstudent")
	status, body = api.do("GET", "/api/v1/auth/me", nil, token)
	if status != fiber.StatusOK || body["username"] != "@newstudent" {
		t.Fatalf("expected the current user, got %d %v", status, body)
	}
}

func TestRoleChecksAndErrorMapping(t *testing.T) {
	api := newAPI(t)
	api.createUser("@admin", models.RoleAdmin)
	api.createUser("@pupil", models.RoleStudent)
	admin := api.login("@admin")
	student := api.login("@pupil")

	status, _ := api.do("GET", "/api/v1/requests", nil, "")
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 without a token, got %d", status)
	}

	status, _ = api.do("POST", "/api/v1/admin/languages", map[string]string{"name": "Python"}, student)
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a student, got %d", status)
	}

	status, body := api.do("POST", "/api/v1/admin/languages", map[string]string{"name": "Python"}, admin)
	if status != fiber.StatusCreated || body["name"] != "python" {
		t.Fatalf("expected 201 python, got %d %v", status, body)
	}
	status, body = api.do("POST", "/api/v1/admin/languages", map[string]string{"name": "PYTHON"}, admin)
	if status != fiber.StatusConflict || body["kind"] != "Duplicate" {
		t.Fatalf("expected 409 Duplicate, got %d %v", status, body)
	}

	status, body = api.do("POST", "/api/v1/admin/requests/"+uuid.NewString()+"/allocate", map[string]interface{}{
		"tutor_id":   uuid.NewString(),
		"first_date": "2024-09-02",
		"first_time": "15:00",
	}, admin)
	if status != fiber.StatusNotFound || body["field"] != "request" {
		t.Fatalf("expected 404 for an unknown request, got %d %v", status, body)
	}

	status, _ = api.do("POST", "/api/v1/admin/requests/"+uuid.NewString()+"/allocate", map[string]interface{}{
		"tutor_id":   uuid.NewString(),
		"first_date": "2024-09-02",
		"first_time": "25:00",
	}, admin)
	if status != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an impossible time, got %d", status)
	}
}

func TestAvailabilityOverHTTP(t *testing.T) {
	api := newAPI(t)
	tutor := api.createUser("@lecturer", models.RoleTutor)
	api.createUser("@pupil", models.RoleStudent)
	tutorToken := api.login("@lecturer")
	studentToken := api.login("@pupil")

	window := map[string]string{"day": "2024-12-12", "start_time": "09:00", "end_time": "12:00"}
	status, _ := api.do("POST", "/api/v1/tutor/availability", window, tutorToken)
	if status != fiber.StatusCreated {
		t.Fatalf("expected 201, got %d", status)
	}

	clash := map[string]string{"day": "2024-12-12", "start_time": "08:00", "end_time": "11:00"}
	status, body := api.do("POST", "/api/v1/tutor/availability", clash, tutorToken)
	if status != fiber.StatusConflict || body["kind"] != "Overlap" || body["date"] != "2024-12-12" {
		t.Fatalf("expected 409 Overlap on 2024-12-12, got %d %v", status, body)
	}

	status, _ = api.do("POST", "/api/v1/tutor/availability", window, studentToken)
	if status != fiber.StatusForbidden {
		t.Fatalf("expected 403 for a student, got %d", status)
	}

	path := fmt.Sprintf("/api/v1/availability/%s/covers?day=2024-12-12&start=10:00&end=11:00", tutor.ID)
	status, body = api.do("GET", path, nil, studentToken)
	if status != fiber.StatusOK || body["covers"] != true {
		t.Fatalf("expected the slot to be covered, got %d %v", status, body)
	}
}
