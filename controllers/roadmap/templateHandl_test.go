package roadmap

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DhanushPadarthi/pathforge-backend/config"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
)

func TestListTemplates(t *testing.T) {
	setupTestDB(t)

	w := doJSON(t, ListTemplates, http.MethodGet, "/api/roadmaps/templates", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var all []roadmaps.RoadmapTemplate
	if err := json.Unmarshal(w.Body.Bytes(), &all); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(all) == 0 {
		t.Fatal("templates catalog is empty")
	}

	w = doJSON(t, ListTemplates, http.MethodGet, "/api/roadmaps/templates?category=cloud", nil, "")
	var cloud []roadmaps.RoadmapTemplate
	json.Unmarshal(w.Body.Bytes(), &cloud)
	if len(cloud) == 0 || len(cloud) >= len(all) {
		t.Errorf("cloud templates = %d of %d, want a proper subset", len(cloud), len(all))
	}
	for _, tpl := range cloud {
		if tpl.Category != "cloud" {
			t.Errorf("template %q has category %q", tpl.ID, tpl.Category)
		}
	}

	w = doJSON(t, ListTemplates, http.MethodGet, "/api/roadmaps/templates?category=nope", nil, "")
	if got := w.Body.String(); got != "[]\n" && got != "[]" {
		t.Errorf("unknown category body = %q, want empty list", got)
	}
}

func TestCloneTemplate(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t)

	if w := doJSON(t, CloneTemplate, http.MethodPost, "/api/roadmaps/templates/clone?id=aws-cloud-practitioner", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous clone status = %d, want 401", w.Code)
	}
	if w := doJSON(t, CloneTemplate, http.MethodPost, "/api/roadmaps/templates/clone?id=nope", user, ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown template status = %d, want 404", w.Code)
	}

	w := doJSON(t, CloneTemplate, http.MethodPost, "/api/roadmaps/templates/clone?id=aws-cloud-practitioner", user, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("clone status = %d body=%s", w.Code, w.Body.String())
	}
	var rm roadmaps.Roadmap
	if err := json.Unmarshal(w.Body.Bytes(), &rm); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rm.UserID != user.ID || !rm.Active {
		t.Errorf("clone user=%d active=%v, want owned and active", rm.UserID, rm.Active)
	}
	if rm.Title != "AWS Cloud Practitioner" {
		t.Errorf("title = %q", rm.Title)
	}
	if len(rm.Modules) != 4 {
		t.Fatalf("modules = %d, want 4", len(rm.Modules))
	}

	// прогресс клона свежий: открыт только первый ресурс первого модуля
	for mi, mod := range rm.Modules {
		for ri, res := range mod.Resources {
			want := roadmaps.StatusLocked
			if mi == 0 && ri == 0 {
				want = roadmaps.StatusUnlocked
			}
			if res.Status != want {
				t.Errorf("module %d resource %d status = %q, want %q", mi, ri, res.Status, want)
			}
			if res.TimeSpentSeconds != 0 || res.CompletedAt != nil {
				t.Errorf("module %d resource %d carries progress from the template", mi, ri)
			}
		}
	}
	if rm.ProgressPercentage != 0 || rm.CurrentModuleIndex != 0 {
		t.Errorf("progress = %.1f index = %d, want fresh roadmap", rm.ProgressPercentage, rm.CurrentModuleIndex)
	}

	// недели модулей идут подряд
	week := 1
	for _, mod := range rm.Modules {
		if mod.WeekNumber != week {
			t.Errorf("module %q week = %d, want %d", mod.Title, mod.WeekNumber, week)
		}
		week += mod.AllottedWeeks
	}
}

func TestCloneTemplateReplacesActiveRoadmap(t *testing.T) {
	setupTestDB(t)
	user := seedUser(t, "Go")
	seedRole(t, skills.RoleSkill{Name: "Go", Weight: 2})
	seedResource(t, "Go Course", "Go", 4)

	generated := generateFor(t, user)

	w := doJSON(t, CloneTemplate, http.MethodPost, "/api/roadmaps/templates/clone?id=dsa-mastery", user, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("clone status = %d body=%s", w.Code, w.Body.String())
	}

	var old roadmaps.Roadmap
	if err := config.DB.First(&old, generated.ID).Error; err != nil {
		t.Fatalf("reload generated: %v", err)
	}
	if old.Active {
		t.Error("previous roadmap should be deactivated after clone")
	}

	var active []roadmaps.Roadmap
	config.DB.Where("user_id = ? AND active = ?", user.ID, true).Find(&active)
	if len(active) != 1 {
		t.Fatalf("active roadmaps = %d, want 1", len(active))
	}
	if active[0].Title != "Data Structures & Algorithms Mastery" {
		t.Errorf("active roadmap = %q, want the clone", active[0].Title)
	}
}
