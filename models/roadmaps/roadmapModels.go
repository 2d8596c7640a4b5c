package roadmaps

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Статусы ресурса внутри модуля
const (
	StatusLocked     = "locked"
	StatusUnlocked   = "unlocked"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSkipped    = "skipped"
)

// LearningResource: один учебный шаг внутри модуля роадмапа
type LearningResource struct {
	ID               string     `json:"id"`
	ResourceID       uint       `json:"resource_id,omitempty"` // ссылка на каталог, 0 для синтетических
	Title            string     `json:"title"`
	URL              string     `json:"url"`
	Type             string     `json:"type"`
	EstimatedHours   float64    `json:"estimated_hours"`
	Order            int        `json:"order"`
	Status           string     `json:"status"`
	OpenedAt         *time.Time `json:"opened_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	SkippedAt        *time.Time `json:"skipped_at,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
}

// Resolved: ресурс закрыт (пройден или пропущен)
func (r *LearningResource) Resolved() bool {
	return r.Status == StatusCompleted || r.Status == StatusSkipped
}

// Module: упорядоченная группа ресурсов под один недостающий навык
type Module struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	SkillsCovered   []string           `json:"skills_covered"`
	WeekNumber      int                `json:"week_number"`
	AllottedWeeks   int                `json:"allotted_weeks"`
	BudgetHours     float64            `json:"budget_hours"`
	TimeConstrained bool               `json:"time_constrained"`
	Completed       bool               `json:"completed"`
	Summary         string             `json:"summary,omitempty"`
	Resources       []LearningResource `json:"resources"`
}

func (m *Module) ResolvedCount() int {
	n := 0
	for i := range m.Resources {
		if m.Resources[i].Resolved() {
			n++
		}
	}
	return n
}

func (m *Module) CompletedCount() int {
	n := 0
	for i := range m.Resources {
		if m.Resources[i].Status == StatusCompleted {
			n++
		}
	}
	return n
}

// Resolved: все ресурсы модуля закрыты
func (m *Module) Resolved() bool {
	return len(m.Resources) > 0 && m.ResolvedCount() == len(m.Resources)
}

// CompletionPercentage: закрытые ресурсы / все ресурсы модуля
func (m *Module) CompletionPercentage() float64 {
	if len(m.Resources) == 0 {
		return 0
	}
	return float64(m.ResolvedCount()) / float64(len(m.Resources)) * 100
}

// EstimatedHours: суммарная длительность ресурсов модуля
func (m *Module) EstimatedHours() float64 {
	total := 0.0
	for i := range m.Resources {
		total += m.Resources[i].EstimatedHours
	}
	return total
}

// SkillGap: снимок одного требуемого навыка на момент генерации
type SkillGap struct {
	Skill       string `json:"skill"`
	Weight      int    `json:"weight"`
	Has         bool   `json:"has"`
	Proficiency int    `json:"proficiency,omitempty"`
}

//type Roadmap struct {
//	ID        uint   `gorm:"primaryKey"`
//	UserID    uint   `gorm:"index"`
//	Title     string `json:"title"`
//	Modules   string `gorm:"type:text"` // сериализованный план
//	CreatedAt time.Time
//	UpdatedAt time.Time
//}

// Roadmap: персональный план обучения, один активный на пользователя.
// Требования роли замораживаются в SkillGaps на момент генерации.
type Roadmap struct {
	ID              uint    `gorm:"primaryKey" json:"id"`
	UserID          uint    `gorm:"index;not null" json:"user_id"`
	CareerRoleID    uint    `json:"career_role_id"`
	Title           string  `json:"title"`
	Active          bool    `gorm:"default:true" json:"active"`
	MatchPercentage float64 `json:"match_percentage"`

	SkillGapsRaw datatypes.JSON `gorm:"column:skill_gaps;type:jsonb" json:"-"`
	SkillGaps    []SkillGap     `gorm:"-" json:"skill_gaps"`
	ModulesRaw   datatypes.JSON `gorm:"column:modules;type:jsonb" json:"-"`
	Modules      []Module       `gorm:"-" json:"modules"`

	ProgressPercentage float64 `json:"progress_percentage"`
	CurrentModuleIndex int     `json:"current_module_index"`
	TimeConstrained    bool    `json:"time_constrained"`
	HoursPerWeek       int     `json:"hours_per_week"`
	DeadlineWeeks      int     `json:"deadline_weeks"`
	Completed          bool    `json:"completed"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeSave: сериализует вложенный план в JSON колонки
func (rm *Roadmap) BeforeSave(tx *gorm.DB) error {
	mods, err := json.Marshal(rm.Modules)
	if err != nil {
		return err
	}
	rm.ModulesRaw = mods

	gaps, err := json.Marshal(rm.SkillGaps)
	if err != nil {
		return err
	}
	rm.SkillGapsRaw = gaps
	return nil
}

// AfterFind: восстанавливает план из JSON колонок
func (rm *Roadmap) AfterFind(tx *gorm.DB) error {
	if len(rm.ModulesRaw) > 0 {
		if err := json.Unmarshal(rm.ModulesRaw, &rm.Modules); err != nil {
			return err
		}
	}
	if len(rm.SkillGapsRaw) > 0 {
		if err := json.Unmarshal(rm.SkillGapsRaw, &rm.SkillGaps); err != nil {
			return err
		}
	}
	return nil
}

func (rm *Roadmap) TotalResources() int {
	total := 0
	for i := range rm.Modules {
		total += len(rm.Modules[i].Resources)
	}
	return total
}

func (rm *Roadmap) ResolvedResources() int {
	total := 0
	for i := range rm.Modules {
		total += rm.Modules[i].ResolvedCount()
	}
	return total
}
