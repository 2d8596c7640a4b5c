package services

import (
	"fmt"
	"net/url"
	"sort"

	"github.com/google/uuid"

	"github.com/DhanushPadarthi/pathforge-backend/models/resources"
	"github.com/DhanushPadarthi/pathforge-backend/models/roadmaps"
	"github.com/DhanushPadarthi/pathforge-backend/models/skills"
	"github.com/DhanushPadarthi/pathforge-backend/models/users"
)

const (
	DefaultHoursPerWeek   = 5
	DefaultDeadlineWeeks  = 12
	maxResourcesPerModule = 5
)

// GenerateOptions: временные рамки пользователя
type GenerateOptions struct {
	HoursPerWeek  int `json:"hours_per_week"`
	DeadlineWeeks int `json:"deadline_weeks"`
}

// BuildRoadmap: детерминированная сборка плана из gap-анализа и каталога.
// Генератор никогда не падает из-за нехватки времени или материалов:
// модуль получает ближайший осуществимый набор и флаг time_constrained.
func BuildRoadmap(user *users.User, role *skills.CareerRole, gap *GapAnalysis, catalog []resources.Resource, opts GenerateOptions) *roadmaps.Roadmap {
	if opts.HoursPerWeek <= 0 {
		opts.HoursPerWeek = user.HoursPerWeek
	}
	if opts.HoursPerWeek <= 0 {
		opts.HoursPerWeek = DefaultHoursPerWeek
	}
	if opts.DeadlineWeeks <= 0 {
		opts.DeadlineWeeks = DefaultDeadlineWeeks
	}

	targets := moduleTargets(role, gap)

	rm := &roadmaps.Roadmap{
		UserID:          user.ID,
		CareerRoleID:    role.ID,
		Title:           fmt.Sprintf("%s Roadmap", role.Title),
		Active:          true,
		MatchPercentage: gap.MatchPercentage,
		SkillGaps:       gap.Gaps,
		HoursPerWeek:    opts.HoursPerWeek,
		DeadlineWeeks:   opts.DeadlineWeeks,
	}

	totalWeight := 0
	for _, t := range targets {
		totalWeight += t.Weight
	}

	used := make(map[uint]bool)
	week := 1
	plannedWeeks := 0

	for _, target := range targets {
		allotted := 1
		if totalWeight > 0 {
			allotted = opts.DeadlineWeeks * target.Weight / totalWeight
			if allotted < 1 {
				allotted = 1
			}
		}
		budget := float64(allotted * opts.HoursPerWeek)

		mod := roadmaps.Module{
			ID:            uuid.NewString(),
			Title:         fmt.Sprintf("Master %s", target.Skill),
			SkillsCovered: []string{target.Skill},
			WeekNumber:    week,
			AllottedWeeks: allotted,
			BudgetHours:   budget,
		}

		picked, constrained := packResources(target.Skill, catalog, used, budget)
		mod.Resources = picked
		mod.TimeConstrained = constrained

		rm.Modules = append(rm.Modules, mod)
		week += allotted
		plannedWeeks += allotted

		if constrained {
			rm.TimeConstrained = true
		}
	}

	if plannedWeeks > opts.DeadlineWeeks {
		rm.TimeConstrained = true
	}

	rm.InitializeStatuses()
	return rm
}

// moduleTargets: по модулю на недостающий навык в порядке веса; если
// пробелов нет, план строится по рекомендованным навыкам роли
func moduleTargets(role *skills.CareerRole, gap *GapAnalysis) []roadmaps.SkillGap {
	if len(gap.MissingSkills) > 0 {
		return gap.MissingSkills
	}

	var targets []roadmaps.SkillGap
	for i, name := range role.RecommendedSkills {
		if i >= 3 {
			break
		}
		targets = append(targets, roadmaps.SkillGap{Skill: name, Weight: 1})
	}
	if len(targets) == 0 {
		for _, req := range role.RequiredSkills {
			targets = append(targets, roadmaps.SkillGap{Skill: req.Name, Weight: req.Weight})
		}
		sort.SliceStable(targets, func(i, j int) bool { return targets[i].Weight > targets[j].Weight })
		if len(targets) > 1 {
			targets = targets[:1]
		}
	}
	return targets
}

// packResources: жадная укладка материалов по навыку в бюджет часов.
// Пустой каталог или слишком тесный бюджет не срывают генерацию.
func packResources(skill string, catalog []resources.Resource, used map[uint]bool, budget float64) ([]roadmaps.LearningResource, bool) {
	var candidates []resources.Resource
	for i := range catalog {
		r := catalog[i]
		if used[r.ID] || !r.Available {
			continue
		}
		if r.HasSkillTag(skill) {
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].AverageRating != candidates[j].AverageRating {
			return candidates[i].AverageRating > candidates[j].AverageRating
		}
		if candidates[i].EstimatedHours != candidates[j].EstimatedHours {
			return candidates[i].EstimatedHours < candidates[j].EstimatedHours
		}
		return candidates[i].ID < candidates[j].ID
	})

	var picked []roadmaps.LearningResource
	spent := 0.0
	for _, c := range candidates {
		if len(picked) >= maxResourcesPerModule {
			break
		}
		if spent+c.EstimatedHours > budget {
			continue
		}
		used[c.ID] = true
		spent += c.EstimatedHours
		picked = append(picked, fromCatalog(c))
	}

	if len(picked) > 0 {
		return picked, false
	}

	// ничего не влезло в бюджет — берем самый короткий и помечаем модуль
	if len(candidates) > 0 {
		shortest := candidates[0]
		for _, c := range candidates[1:] {
			if c.EstimatedHours < shortest.EstimatedHours {
				shortest = c
			}
		}
		used[shortest.ID] = true
		return []roadmaps.LearningResource{fromCatalog(shortest)}, true
	}

	// в каталоге нет материалов по навыку — синтезируем поисковый ресурс
	search := roadmaps.LearningResource{
		ID:             uuid.NewString(),
		Title:          fmt.Sprintf("Explore %s tutorials", skill),
		URL:            "https://www.youtube.com/results?search_query=" + url.QueryEscape(skill+" tutorial"),
		Type:           resources.TypeVideo,
		EstimatedHours: 3,
	}
	return []roadmaps.LearningResource{search}, search.EstimatedHours > budget
}

func fromCatalog(r resources.Resource) roadmaps.LearningResource {
	return roadmaps.LearningResource{
		ID:             uuid.NewString(),
		ResourceID:     r.ID,
		Title:          r.Title,
		URL:            r.URL,
		Type:           r.Type,
		EstimatedHours: r.EstimatedHours,
	}
}
