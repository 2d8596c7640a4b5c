package resources

import (
	"encoding/json"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeVideo    = "video"
	TypeArticle  = "article"
	TypeCourse   = "course"
	TypePractice = "practice"
)

// ValidType: проверяет тип учебного материала
func ValidType(t string) bool {
	switch t {
	case TypeVideo, TypeArticle, TypeCourse, TypePractice:
		return true
	}
	return false
}

// Resource: учебный материал из каталога, управляется админом
type Resource struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	URL      string `gorm:"not null" json:"url"`
	Type     string `gorm:"not null" json:"type"` // video, article, course, practice
	Provider string `json:"provider"`

	SkillTagsRaw datatypes.JSON `gorm:"column:skill_tags;type:jsonb" json:"-"`
	SkillTags    []string       `gorm:"-" json:"skill_tags"`

	EstimatedHours float64 `json:"estimated_hours"`
	Difficulty     string  `json:"difficulty"`

	RatingSum     int     `json:"-"`
	RatingCount   int     `json:"rating_count"`
	AverageRating float64 `json:"average_rating"`

	// Без default-тега: GORM опускает false при Create, дефолт колонки перекрыл бы его
	Available bool `json:"available"`
	CreatedBy uint `json:"created_by"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Resource) BeforeSave(tx *gorm.DB) error {
	tags, err := json.Marshal(r.SkillTags)
	if err != nil {
		return err
	}
	r.SkillTagsRaw = tags
	return nil
}

func (r *Resource) AfterFind(tx *gorm.DB) error {
	if len(r.SkillTagsRaw) > 0 {
		return json.Unmarshal(r.SkillTagsRaw, &r.SkillTags)
	}
	return nil
}

// HasSkillTag: матчит тег без учета регистра
func (r *Resource) HasSkillTag(skill string) bool {
	for _, tag := range r.SkillTags {
		if strings.EqualFold(strings.TrimSpace(tag), strings.TrimSpace(skill)) {
			return true
		}
	}
	return false
}

// ApplyRating: пересчитывает агрегаты после новой оценки
func (r *Resource) ApplyRating(oldScore, newScore int) {
	if oldScore > 0 {
		r.RatingSum += newScore - oldScore
	} else {
		r.RatingSum += newScore
		r.RatingCount++
	}
	if r.RatingCount > 0 {
		r.AverageRating = float64(r.RatingSum) / float64(r.RatingCount)
	}
}

// ResourceRating: оценка материала пользователем, повторная оценка перезаписывает
type ResourceRating struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	ResourceID uint `gorm:"index:idx_resource_user,unique;not null" json:"resource_id"`
	UserID     uint `gorm:"index:idx_resource_user,unique;not null" json:"user_id"`
	Score      int  `gorm:"not null" json:"score"` // 1-5
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
