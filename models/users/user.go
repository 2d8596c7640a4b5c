package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/DhanushPadarthi/pathforge-backend/config"
)

//type User struct {
//	ID          uint   `gorm:"primaryKey"`
//	Name        string `json:"name"`
//	Email       string `json:"email" gorm:"unique;not null"`
//	Password    string `json:"-" gorm:"not null"`
//	Role        string `json:"role" gorm:"not null;default:student"`
//	TargetRole  string `json:"target_role"`
//	AccessToken string `json:"token"`
//	Provider    string `json:"provider"`
//	CreatedAt   time.Time
//	UpdatedAt   time.Time
//}

// user.go

type User struct {
	ID               uint        `gorm:"primaryKey"`
	Name             string      `json:"name"`
	Email            string      `json:"email" gorm:"unique;not null"`
	Password         string      `json:"-"`
	Role             string      `json:"role" gorm:"not null;default:student"`
	TargetRole       string      `json:"target_role"`
	ExperienceLevel  string      `json:"experience_level"` // beginner, intermediate, advanced
	HoursPerWeek     int         `json:"hours_per_week"`
	ResumeText       string      `json:"-" gorm:"type:text"`
	ResumeFileID     uint        `json:"resume_file_id"`
	ProfileCompleted bool        `json:"profile_completed"`
	Skills           []UserSkill `json:"skills" gorm:"foreignKey:UserID"`

	Notifications NotificationPreferences `json:"notification_preferences" gorm:"embedded;embeddedPrefix:notify_"`

	AccessToken  string `json:"token,omitempty" gorm:"-"`
	RefreshToken string `json:"-" gorm:"-"`
	Provider     string `json:"provider"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
	DeletedBy uint           `json:"-"` // ID админа, который удалил аккаунт
}

// UserSkill: навык в профиле пользователя с уровнем владения 1-5
type UserSkill struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"index;not null" json:"-"`
	SkillID     uint      `json:"skill_id"`
	Name        string    `gorm:"not null" json:"name"`
	Proficiency int       `gorm:"default:1" json:"proficiency"`
	AddedAt     time.Time `json:"added_at"`
}

type NotificationPreferences struct {
	EmailNotifications   bool `json:"email_notifications" gorm:"default:true"`
	WeeklyProgressReport bool `json:"weekly_progress_report" gorm:"default:true"`
	NewResourceAlerts    bool `json:"new_resource_alerts" gorm:"default:false"`
}

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func GetUserByID(userID interface{}) (*User, error) {
	var user User
	result := config.DB.Preload("Skills").First(&user, userID)
	if result.Error != nil {
		return nil, result.Error
	}
	return &user, nil
}
