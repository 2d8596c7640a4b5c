package authentication

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
	"github.com/DhanushPadarthi/pathforge-backend/models/files"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&users.User{}, &users.UserSkill{}, &users.GoogleUser{},
		&files.StoredFile{}, &skills.Skill{}, &roadmaps.Roadmap{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
}

func jsonReq(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withToken(t *testing.T, req *http.Request, user *users.User) *http.Request {
	t.Helper()
	token, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRegisterAndLogin(t *testing.T) {
	setupTestDB(t)

	w := httptest.NewRecorder()
	Register(w, jsonReq(http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"Alice@Test.dev","password":"secret1"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d body=%s", w.Code, w.Body.String())
	}

	var created struct {
		Token string     `json:"token"`
		User  users.User `json:"user"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)
	if created.Token == "" {
		t.Error("register response missing token")
	}
	if created.User.Role != users.RoleStudent {
		t.Errorf("new user role = %q, want student", created.User.Role)
	}
	if created.User.Email != "alice@test.dev" {
		t.Errorf("email not normalized: %q", created.User.Email)
	}

	// повторная регистрация на тот же email
	w = httptest.NewRecorder()
	Register(w, jsonReq(http.MethodPost, "/api/auth/register",
		`{"name":"Alice","email":"alice@test.dev","password":"secret1"}`))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	Login(w, jsonReq(http.MethodPost, "/api/auth/login",
		`{"email":"alice@test.dev","password":"secret1"}`))
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	Login(w, jsonReq(http.MethodPost, "/api/auth/login",
		`{"email":"alice@test.dev","password":"wrong-pass"}`))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	setupTestDB(t)

	cases := []struct {
		name string
		body string
	}{
		{"short password", `{"name":"A","email":"a@b.c","password":"123"}`},
		{"bad email", `{"name":"A","email":"not-an-email","password":"secret1"}`},
		{"missing name", `{"email":"a@b.c","password":"secret1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			Register(w, jsonReq(http.MethodPost, "/api/auth/register", tc.body))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestVerifyAndMe(t *testing.T) {
	setupTestDB(t)
	user := users.User{Name: "Bob", Email: "bob@test.dev", Role: users.RoleStudent}
	config.DB.Create(&user)

	w := httptest.NewRecorder()
	Verify(w, withToken(t, httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil), &user))
	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/verify", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	Verify(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	GetMe(w, withToken(t, httptest.NewRequest(http.MethodGet, "/api/users/me", nil), &user))
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var me users.User
	json.Unmarshal(w.Body.Bytes(), &me)
	if me.Email != "bob@test.dev" {
		t.Errorf("me email = %q", me.Email)
	}
}

func TestUserSkillsLifecycle(t *testing.T) {
	setupTestDB(t)
	user := users.User{Name: "Carol", Email: "carol@test.dev", Role: users.RoleStudent}
	config.DB.Create(&user)

	w := httptest.NewRecorder()
	UserSkills(w, withToken(t, jsonReq(http.MethodPost, "/api/users/skills", `{"name":"Go","proficiency":4}`), &user))
	if w.Code != http.StatusCreated {
		t.Fatalf("add skill status = %d body=%s", w.Code, w.Body.String())
	}
	var added users.UserSkill
	json.Unmarshal(w.Body.Bytes(), &added)

	// дубликат по имени — конфликт
	w = httptest.NewRecorder()
	UserSkills(w, withToken(t, jsonReq(http.MethodPost, "/api/users/skills", `{"name":"go","proficiency":2}`), &user))
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate skill status = %d, want 409", w.Code)
	}

	w = httptest.NewRecorder()
	UserSkills(w, withToken(t, jsonReq(http.MethodPut, fmt.Sprintf("/api/users/skills?id=%d", added.ID), `{"proficiency":5}`), &user))
	if w.Code != http.StatusOK {
		t.Fatalf("update skill status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	UserSkills(w, withToken(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/users/skills?id=%d", added.ID), nil), &user))
	if w.Code != http.StatusOK {
		t.Fatalf("delete skill status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	UserSkills(w, withToken(t, httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/users/skills?id=%d", added.ID), nil), &user))
	if w.Code != http.StatusNotFound {
		t.Errorf("delete missing skill status = %d, want 404", w.Code)
	}
}

func TestCompleteProfile(t *testing.T) {
	setupTestDB(t)
	user := users.User{Name: "Dave", Email: "dave@test.dev", Role: users.RoleStudent}
	config.DB.Create(&user)

	body := `{"target_role":"Backend Developer","experience_level":"beginner","hours_per_week":8,` +
		`"skills":[{"name":"Go","proficiency":3},{"name":"SQL","proficiency":2}]}`
	w := httptest.NewRecorder()
	CompleteProfile(w, withToken(t, jsonReq(http.MethodPost, "/api/users/complete-profile", body), &user))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var saved users.User
	config.DB.Preload("Skills").First(&saved, user.ID)
	if !saved.ProfileCompleted {
		t.Error("profile not marked completed")
	}
	if saved.TargetRole != "Backend Developer" {
		t.Errorf("target role = %q", saved.TargetRole)
	}
	if len(saved.Skills) != 2 {
		t.Errorf("skills = %d, want 2", len(saved.Skills))
	}

	// справочник пополняется навыками из анкеты
	var catalogCount int64
	config.DB.Model(&skills.Skill{}).Count(&catalogCount)
	if catalogCount != 2 {
		t.Errorf("catalog skills = %d, want 2", catalogCount)
	}
}

func TestChangePassword(t *testing.T) {
	setupTestDB(t)

	w := httptest.NewRecorder()
	Register(w, jsonReq(http.MethodPost, "/api/auth/register",
		`{"name":"Eve","email":"eve@test.dev","password":"oldpass"}`))
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d", w.Code)
	}
	var user users.User
	config.DB.Where("email = ?", "eve@test.dev").First(&user)

	w = httptest.NewRecorder()
	ChangePassword(w, withToken(t, jsonReq(http.MethodPost, "/api/auth/change-password",
		`{"current_password":"wrong","new_password":"newpass1"}`), &user))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong current password status = %d, want 401", w.Code)
	}

	w = httptest.NewRecorder()
	ChangePassword(w, withToken(t, jsonReq(http.MethodPost, "/api/auth/change-password",
		`{"current_password":"oldpass","new_password":"newpass1"}`), &user))
	if w.Code != http.StatusOK {
		t.Fatalf("change password status = %d body=%s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	Login(w, jsonReq(http.MethodPost, "/api/auth/login", `{"email":"eve@test.dev","password":"newpass1"}`))
	if w.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", w.Code)
	}
}
