package skill

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/controllers/authentication"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
	"github.com/DhanushPadarthi/pathforge-backend/services"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &users.UserSkill{}, &skills.Skill{}, &skills.CareerRole{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	t.Setenv("GROQ_API_KEY", "")
}

func analyzeFor(t *testing.T, user *users.User, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/skills/analyze-gap", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	token, err := authentication.GenerateToken(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	AnalyzeGap(w, req)
	return w
}

func TestAnalyzeGapSeventyFivePercent(t *testing.T) {
	setupTestDB(t)

	user := users.User{Name: "U", Email: "u@test.dev", Role: users.RoleStudent}
	config.DB.Create(&user)
	for _, name := range []string{"A", "C"} {
		config.DB.Create(&users.UserSkill{UserID: user.ID, Name: name, Proficiency: 3})
	}
	role := skills.CareerRole{Title: "Sample Role", RequiredSkills: []skills.RoleSkill{
		{Name: "A", Weight: 2}, {Name: "B", Weight: 1}, {Name: "C", Weight: 1},
	}}
	config.DB.Create(&role)

	w := analyzeFor(t, &user, `{"role_title":"sample role"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var analysis services.GapAnalysis
	json.Unmarshal(w.Body.Bytes(), &analysis)
	if analysis.MatchPercentage != 75 {
		t.Errorf("match = %v, want 75", analysis.MatchPercentage)
	}
	if len(analysis.MissingSkills) != 1 || analysis.MissingSkills[0].Skill != "B" {
		t.Errorf("missing = %+v, want [B]", analysis.MissingSkills)
	}
	if analysis.Explanation == "" {
		t.Error("explanation empty even with AI fallback")
	}
}

func TestAnalyzeGapZeroWeightRole(t *testing.T) {
	setupTestDB(t)

	user := users.User{Name: "U", Email: "u@test.dev", Role: users.RoleStudent}
	config.DB.Create(&user)
	role := skills.CareerRole{Title: "Empty Role", RequiredSkills: []skills.RoleSkill{}}
	config.DB.Create(&role)

	w := analyzeFor(t, &user, `{"role_title":"Empty Role"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, zero-weight role must not error", w.Code)
	}

	var analysis services.GapAnalysis
	json.Unmarshal(w.Body.Bytes(), &analysis)
	if analysis.MatchPercentage != 0 {
		t.Errorf("match = %v, want exactly 0", analysis.MatchPercentage)
	}
}

func TestAnalyzeGapUnknownRole(t *testing.T) {
	setupTestDB(t)
	user := users.User{Name: "U", Email: "u@test.dev", Role: users.RoleStudent}
	config.DB.Create(&user)

	if w := analyzeFor(t, &user, `{"role_title":"No Such Role"}`); w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if w := analyzeFor(t, &user, `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty request status = %d, want 400", w.Code)
	}
}

func TestListCareerRolesAndSkills(t *testing.T) {
	setupTestDB(t)
	config.DB.Create(&skills.Skill{Name: "Go", Category: "programming"})
	config.DB.Create(&skills.Skill{Name: "Communication", Category: "soft"})
	config.DB.Create(&skills.CareerRole{Title: "Role A", RequiredSkills: []skills.RoleSkill{{Name: "Go", Weight: 3}}})

	w := httptest.NewRecorder()
	ListSkills(w, httptest.NewRequest(http.MethodGet, "/api/skills?category=soft", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("skills status = %d", w.Code)
	}
	var list []skills.Skill
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list) != 1 || list[0].Name != "Communication" {
		t.Errorf("filtered skills = %+v", list)
	}

	w = httptest.NewRecorder()
	ListCareerRoles(w, httptest.NewRequest(http.MethodGet, "/api/career-roles", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("roles status = %d", w.Code)
	}
	var roles []skills.CareerRole
	json.Unmarshal(w.Body.Bytes(), &roles)
	if len(roles) != 1 || len(roles[0].RequiredSkills) != 1 {
		t.Errorf("roles not hydrated from JSON column: %+v", roles)
	}
}
