package skills

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Skill: справочник навыков
type Skill struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"unique;not null" json:"name"`
	Category  string `json:"category"`
	CreatedAt time.Time
}

// RoleSkill: требуемый навык роли с весом важности 1-5
type RoleSkill struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// CareerRole: целевая роль с требуемыми навыками, управляется админом
type CareerRole struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"unique;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`

	RequiredSkillsRaw    datatypes.JSON `gorm:"column:required_skills;type:jsonb" json:"-"`
	RequiredSkills       []RoleSkill    `gorm:"-" json:"required_skills"`
	RecommendedSkillsRaw datatypes.JSON `gorm:"column:recommended_skills;type:jsonb" json:"-"`
	RecommendedSkills    []string       `gorm:"-" json:"recommended_skills"`

	AverageLearningHours int    `json:"average_learning_hours"`
	DifficultyLevel      string `json:"difficulty_level"` // beginner, intermediate, advanced

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	DeletedBy uint           `json:"-"`
}

// BeforeSave: сериализует навыки в JSON колонки
func (r *CareerRole) BeforeSave(tx *gorm.DB) error {
	required, err := json.Marshal(r.RequiredSkills)
	if err != nil {
		return err
	}
	r.RequiredSkillsRaw = required

	recommended, err := json.Marshal(r.RecommendedSkills)
	if err != nil {
		return err
	}
	r.RecommendedSkillsRaw = recommended
	return nil
}

// AfterFind: восстанавливает навыки из JSON колонок
func (r *CareerRole) AfterFind(tx *gorm.DB) error {
	if len(r.RequiredSkillsRaw) > 0 {
		if err := json.Unmarshal(r.RequiredSkillsRaw, &r.RequiredSkills); err != nil {
			return err
		}
	}
	if len(r.RecommendedSkillsRaw) > 0 {
		if err := json.Unmarshal(r.RecommendedSkillsRaw, &r.RecommendedSkills); err != nil {
			return err
		}
	}
	return nil
}

// TotalWeight: суммарный вес требуемых навыков роли
func (r *CareerRole) TotalWeight() int {
	total := 0
	for _, s := range r.RequiredSkills {
		total += s.Weight
	}
	return total
}
