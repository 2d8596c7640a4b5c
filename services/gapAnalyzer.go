package services

import (
	"sort"
	"strings"

	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

// GapAnalysis: результат сравнения профиля с требованиями роли
type GapAnalysis struct {
	RoleID          uint                `json:"role_id"`
	RoleTitle       string              `json:"role_title"`
	MatchPercentage float64             `json:"match_percentage"`
	TotalWeight     int                 `json:"total_weight"`
	MatchedWeight   int                 `json:"matched_weight"`
	Gaps            []roadmaps.SkillGap `json:"gaps"`
	MissingSkills   []roadmaps.SkillGap `json:"missing_skills"`
	Explanation     string              `json:"explanation,omitempty"`
}

func normalizeSkill(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// AnalyzeGap: взвешенное сравнение навыков профиля с требованиями роли.
// Навык с нулевой уверенностью считается отсутствующим; роль с нулевым
// суммарным весом дает 0%, а не деление на ноль.
func AnalyzeGap(profile []users.UserSkill, role *skills.CareerRole) *GapAnalysis {
	owned := make(map[string]int, len(profile))
	for _, s := range profile {
		if s.Proficiency <= 0 {
			continue
		}
		key := normalizeSkill(s.Name)
		if s.Proficiency > owned[key] {
			owned[key] = s.Proficiency
		}
	}

	analysis := &GapAnalysis{
		RoleID:    role.ID,
		RoleTitle: role.Title,
	}

	for _, req := range role.RequiredSkills {
		proficiency, has := owned[normalizeSkill(req.Name)]
		gapEntry := roadmaps.SkillGap{
			Skill:       req.Name,
			Weight:      req.Weight,
			Has:         has,
			Proficiency: proficiency,
		}
		analysis.Gaps = append(analysis.Gaps, gapEntry)
		analysis.TotalWeight += req.Weight
		if has {
			analysis.MatchedWeight += req.Weight
		} else {
			analysis.MissingSkills = append(analysis.MissingSkills, gapEntry)
		}
	}

	if analysis.TotalWeight > 0 {
		analysis.MatchPercentage = float64(analysis.MatchedWeight) / float64(analysis.TotalWeight) * 100
	}

	// недостающие навыки ранжируются по весу, самые важные первыми
	sort.SliceStable(analysis.MissingSkills, func(i, j int) bool {
		return analysis.MissingSkills[i].Weight > analysis.MissingSkills[j].Weight
	})

	return analysis
}
