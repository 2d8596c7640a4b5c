package roadmap

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/resources"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	// отдельная in-memory база на каждый тест
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&users.User{}, &users.UserSkill{},
		&skills.Skill{}, &skills.CareerRole{},
		&resources.Resource{}, &resources.ResourceRating{},
		&roadmaps.Roadmap{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	// AI недоступен, все декорации должны деградировать молча
	t.Setenv("GROQ_API_KEY", "")
}

func seedUser(t *testing.T, skillNames ...string) *users.User {
	t.Helper()
	user := users.User{Name: "Test User", Email: t.Name() + "@test.dev", Role: users.RoleStudent, Provider: "local", HoursPerWeek: 5}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	for _, name := range skillNames {
		us := users.UserSkill{UserID: user.ID, Name: name, Proficiency: 3}
		if err := config.DB.Create(&us).Error; err != nil {
			t.Fatalf("create user skill: %v", err)
		}
	}
	return &user
}

func seedRole(t *testing.T, required ...skills.RoleSkill) *skills.CareerRole {
	t.Helper()
	role := skills.CareerRole{Title: "Backend Developer", RequiredSkills: required}
	if err := config.DB.Create(&role).Error; err != nil {
		t.Fatalf("create role: %v", err)
	}
	return &role
}

func seedResource(t *testing.T, title, tag string, hours float64) *resources.Resource {
	t.Helper()
	r := resources.Resource{
		Title: title, URL: "https://example.com/" + strings.ReplaceAll(title, " ", "-"),
		Type: resources.TypeCourse, SkillTags: []string{tag},
		EstimatedHours: hours, Available: true,
	}
	if err := config.DB.Create(&r).Error; err != nil {
		t.Fatalf("create resource: %v", err)
	}
	return &r
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, user *users.User, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != nil {
		token, err := authentication.GenerateToken(user)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func generateFor(t *testing.T, user *users.User) *roadmaps.Roadmap {
	t.Helper()
	w := doJSON(t, GenerateRoadmap, http.MethodPost, "/api/roadmaps/generate", user, `{"role_title":"Backend Developer"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("generate status = %d body=%s", w.Code, w.Body.String())
	}
	var rm roadmaps.Roadmap
	if err := json.Unmarshal(w.Body.Bytes(), &rm); err != nil {
		t.Fatalf("decode roadmap: %v", err)
	}
	return &rm
}

func TestGenerateRoadmapMatchScenario(t *testing.T) {
	setupTestDB(t)
	// роль {A:2,B:1,C:1}, профиль {A,C} -> 75% и один модуль по B
	user := seedUser(t, "Go", "SQL")
	seedRole(t,
		skills.RoleSkill{Name: "Go", Weight: 2},
		skills.RoleSkill{Name: "Docker", Weight: 1},
		skills.RoleSkill{Name: "SQL", Weight: 1})
	seedResource(t, "Docker Basics", "Docker", 3)

	rm := generateFor(t, user)

	if rm.MatchPercentage != 75 {
		t.Errorf("match = %v, want 75", rm.MatchPercentage)
	}
	if len(rm.Modules) != 1 {
		t.Fatalf("modules = %d, want 1", len(rm.Modules))
	}
	if got := rm.Modules[0].SkillsCovered[0]; got != "Docker" {
		t.Errorf("module skill = %q, want Docker", got)
	}
	if !rm.Active {
		t.Error("new roadmap must be active")
	}
	if got := rm.Modules[0].Resources[0].Status; got != roadmaps.StatusUnlocked {
		t.Errorf("first resource status = %q, want unlocked", got)
	}
}

func TestGenerateReplacesActiveRoadmap(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 2})
	seedResource(t, "Go Course", "Go", 4)

	first := generateFor(t, user)
	second := generateFor(t, user)

	var prev roadmaps.Roadmap
	if err := config.DB.First(&prev, first.ID).Error; err != nil {
		t.Fatalf("reload first roadmap: %v", err)
	}
	if prev.Active {
		t.Error("previous roadmap still active after regeneration")
	}

	var count int64
	config.DB.Model(&roadmaps.Roadmap{}).Where("user_id = ? AND active = ?", user.ID, true).Count(&count)
	if count != 1 {
		t.Errorf("active roadmaps = %d, want 1", count)
	}
	if !second.Active {
		t.Error("new roadmap must be active")
	}
}

func TestCompleteFlowOverHTTP(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 2})
	seedResource(t, "Go One", "Go", 1)
	seedResource(t, "Go Two", "Go", 1)
	rm := generateFor(t, user)

	if len(rm.Modules[0].Resources) != 2 {
		t.Fatalf("resources = %d, want 2", len(rm.Modules[0].Resources))
	}
	first := rm.Modules[0].Resources[0].ID
	second := rm.Modules[0].Resources[1].ID

	// закрыть закрытый ресурс нельзя
	w := doJSON(t, CompleteResource, http.MethodPost, "/api/roadmaps/complete-resource", user,
		fmt.Sprintf(`{"resource_id":%q}`, second))
	if w.Code != http.StatusConflict {
		t.Errorf("complete locked status = %d, want 409", w.Code)
	}

	w = doJSON(t, CompleteResource, http.MethodPost, "/api/roadmaps/complete-resource", user,
		fmt.Sprintf(`{"resource_id":%q}`, first))
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d body=%s", w.Code, w.Body.String())
	}

	// повторное завершение — конфликт, а не тихий успех
	w = doJSON(t, CompleteResource, http.MethodPost, "/api/roadmaps/complete-resource", user,
		fmt.Sprintf(`{"resource_id":%q}`, first))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate complete status = %d, want 409", w.Code)
	}

	w = doJSON(t, SkipResource, http.MethodPost, "/api/roadmaps/skip-resource", user,
		fmt.Sprintf(`{"resource_id":%q}`, second))
	if w.Code != http.StatusOK {
		t.Fatalf("skip status = %d body=%s", w.Code, w.Body.String())
	}

	var saved roadmaps.Roadmap
	if err := config.DB.First(&saved, rm.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !saved.Completed {
		t.Error("roadmap should be completed after resolving all resources")
	}
	if saved.ProgressPercentage != 100 {
		t.Errorf("progress = %v, want 100", saved.ProgressPercentage)
	}
	if !saved.Modules[0].Completed {
		t.Error("module should be completed")
	}
	if saved.Modules[0].Summary == "" {
		t.Error("resolved module should carry a summary even when AI is down")
	}
}

func TestUnknownResourceIsNotFound(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 1})
	seedResource(t, "Go One", "Go", 1)
	generateFor(t, user)

	w := doJSON(t, CompleteResource, http.MethodPost, "/api/roadmaps/complete-resource", user,
		`{"resource_id":"no-such-id"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUpdateTimeAutoCompletes(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 1})
	seedResource(t, "Go One", "Go", 1) // 1 час, порог автозачета 3240 секунд
	rm := generateFor(t, user)
	resID := rm.Modules[0].Resources[0].ID

	// время по неоткрытому ресурсу — конфликт
	w := doJSON(t, UpdateTime, http.MethodPost, "/api/roadmaps/update-time", user,
		fmt.Sprintf(`{"resource_id":%q,"seconds":600}`, resID))
	if w.Code != http.StatusConflict {
		t.Errorf("update-time unopened status = %d, want 409", w.Code)
	}

	w = doJSON(t, OpenResource, http.MethodPost, "/api/roadmaps/open-resource", user,
		fmt.Sprintf(`{"resource_id":%q}`, resID))
	if w.Code != http.StatusOK {
		t.Fatalf("open status = %d body=%s", w.Code, w.Body.String())
	}

	w = doJSON(t, UpdateTime, http.MethodPost, "/api/roadmaps/update-time", user,
		fmt.Sprintf(`{"resource_id":%q,"seconds":600}`, resID))
	if w.Code != http.StatusOK {
		t.Fatalf("update-time status = %d", w.Code)
	}

	// добираем до 90% от оценки — ресурс закрывается сам
	w = doJSON(t, UpdateTime, http.MethodPost, "/api/roadmaps/update-time", user,
		fmt.Sprintf(`{"resource_id":%q,"seconds":3000}`, resID))
	if w.Code != http.StatusOK {
		t.Fatalf("update-time status = %d", w.Code)
	}

	var saved roadmaps.Roadmap
	config.DB.First(&saved, rm.ID)
	if got := saved.Modules[0].Resources[0].Status; got != roadmaps.StatusCompleted {
		t.Errorf("status after auto-complete = %q, want completed", got)
	}
}

func TestGetRoadmapOwnership(t *testing.T) {
	setupTestDB(t)
	owner := seedUser(t)
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 1})
	seedResource(t, "Go One", "Go", 1)
	rm := generateFor(t, owner)

	stranger := users.User{Name: "Other", Email: "other@test.dev", Role: users.RoleStudent}
	config.DB.Create(&stranger)
	adminUser := users.User{Name: "Admin", Email: "admin@test.dev", Role: users.RoleAdmin}
	config.DB.Create(&adminUser)

	w := doJSON(t, GetRoadmap, http.MethodGet, fmt.Sprintf("/api/roadmaps/get?id=%d", rm.ID), &stranger, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger status = %d, want 403", w.Code)
	}

	w = doJSON(t, GetRoadmap, http.MethodGet, fmt.Sprintf("/api/roadmaps/get?id=%d", rm.ID), &adminUser, "")
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}

	w = doJSON(t, GetRoadmap, http.MethodGet, fmt.Sprintf("/api/roadmaps/get?id=%d", rm.ID), nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
}

func TestModuleSummaryAndWeeks(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 2}, skills.RoleSkill{Name: "SQL", Weight: 1})
	seedResource(t, "Go One", "Go", 2)
	seedResource(t, "SQL One", "SQL", 2)
	rm := generateFor(t, user)

	w := doJSON(t, GetModuleSummary, http.MethodGet,
		fmt.Sprintf("/api/roadmaps/module-summary?id=%d&module=%s", rm.ID, rm.Modules[0].ID), user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("module-summary status = %d body=%s", w.Code, w.Body.String())
	}
	var summary map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &summary)
	if summary["total_resources"].(float64) != 1 {
		t.Errorf("total_resources = %v, want 1", summary["total_resources"])
	}

	w = doJSON(t, GetWeeks, http.MethodGet, fmt.Sprintf("/api/roadmaps/weeks?id=%d", rm.ID), user, "")
	if w.Code != http.StatusOK {
		t.Fatalf("weeks status = %d", w.Code)
	}
	var weeks struct {
		Weeks []weekEntry `json:"weeks"`
	}
	json.Unmarshal(w.Body.Bytes(), &weeks)
	if len(weeks.Weeks) == 0 {
		t.Fatal("weeks overview is empty")
	}
	if weeks.Weeks[0].Week != 1 {
		t.Errorf("first week = %d, want 1", weeks.Weeks[0].Week)
	}
}

func TestRateResource(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)
	res := seedResource(t, "Go One", "Go", 2)

	w := doJSON(t, RateResource, http.MethodPost, "/api/roadmaps/rate-resource", user,
		fmt.Sprintf(`{"resource_id":%d,"score":4}`, res.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("rate status = %d body=%s", w.Code, w.Body.String())
	}

	// повторная оценка перезаписывает, а не добавляет вторую
	w = doJSON(t, RateResource, http.MethodPost, "/api/roadmaps/rate-resource", user,
		fmt.Sprintf(`{"resource_id":%d,"score":2}`, res.ID))
	if w.Code != http.StatusOK {
		t.Fatalf("re-rate status = %d", w.Code)
	}

	var saved resources.Resource
	config.DB.First(&saved, res.ID)
	if saved.RatingCount != 1 {
		t.Errorf("rating count = %d, want 1", saved.RatingCount)
	}
	if saved.AverageRating != 2 {
		t.Errorf("average = %v, want 2", saved.AverageRating)
	}

	w = doJSON(t, RateResource, http.MethodPost, "/api/roadmaps/rate-resource", user,
		fmt.Sprintf(`{"resource_id":%d,"score":9}`, res.ID))
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid score status = %d, want 400", w.Code)
	}
}
