package roadmaps

import (
	"errors"
	"time"
)

// Ошибки переходов; контроллеры маппят их на HTTP коды.
// Locked и AlreadyResolved — конфликт состояния (409), не валидация.
var (
	ErrModuleNotFound   = errors.New("module not found in roadmap")
	ErrResourceNotFound = errors.New("resource not found in roadmap")
	ErrResourceLocked   = errors.New("resource is locked")
	ErrAlreadyResolved  = errors.New("resource already completed or skipped")
	ErrNotOpened        = errors.New("resource is not opened")
)

// ProgressUpdate: результат complete/skip для ответа и генерации summary
type ProgressUpdate struct {
	Resource        *LearningResource `json:"resource"`
	ModuleIndex     int               `json:"module_index"`
	ModuleResolved  bool              `json:"module_resolved"`
	RoadmapComplete bool              `json:"roadmap_complete"`
	UnlockedNext    string            `json:"unlocked_next,omitempty"`
}

func (rm *Roadmap) findResource(id string) (int, int, bool) {
	for mi := range rm.Modules {
		for ri := range rm.Modules[mi].Resources {
			if rm.Modules[mi].Resources[ri].ID == id {
				return mi, ri, true
			}
		}
	}
	return 0, 0, false
}

// Resource: ищет ресурс по id внутри плана
func (rm *Roadmap) Resource(id string) (*LearningResource, error) {
	mi, ri, ok := rm.findResource(id)
	if !ok {
		return nil, ErrResourceNotFound
	}
	return &rm.Modules[mi].Resources[ri], nil
}

// ModuleByID: ищет модуль по id
func (rm *Roadmap) ModuleByID(id string) (*Module, int, error) {
	for i := range rm.Modules {
		if rm.Modules[i].ID == id {
			return &rm.Modules[i], i, nil
		}
	}
	return nil, 0, ErrModuleNotFound
}

// InitializeStatuses: все ресурсы locked, первый ресурс первого модуля unlocked
func (rm *Roadmap) InitializeStatuses() {
	for mi := range rm.Modules {
		for ri := range rm.Modules[mi].Resources {
			rm.Modules[mi].Resources[ri].Status = StatusLocked
			rm.Modules[mi].Resources[ri].Order = ri + 1
		}
	}
	if len(rm.Modules) > 0 && len(rm.Modules[0].Resources) > 0 {
		rm.Modules[0].Resources[0].Status = StatusUnlocked
	}
	rm.CurrentModuleIndex = 0
	rm.ProgressPercentage = 0
}

// OpenResource: unlocked -> in_progress, повторное открытие не ошибка
func (rm *Roadmap) OpenResource(id string, now time.Time) (*LearningResource, error) {
	mi, ri, ok := rm.findResource(id)
	if !ok {
		return nil, ErrResourceNotFound
	}
	res := &rm.Modules[mi].Resources[ri]
	switch res.Status {
	case StatusLocked:
		return nil, ErrResourceLocked
	case StatusCompleted, StatusSkipped:
		return nil, ErrAlreadyResolved
	case StatusInProgress:
		return res, nil
	}
	res.Status = StatusInProgress
	t := now
	res.OpenedAt = &t
	return res, nil
}

// CompleteResource: закрывает ресурс как пройденный и двигает разблокировку
func (rm *Roadmap) CompleteResource(id string, now time.Time) (*ProgressUpdate, error) {
	return rm.resolveResource(id, StatusCompleted, now)
}

// SkipResource: пропуск, эффект разблокировки тот же что у complete
func (rm *Roadmap) SkipResource(id string, now time.Time) (*ProgressUpdate, error) {
	return rm.resolveResource(id, StatusSkipped, now)
}

func (rm *Roadmap) resolveResource(id, terminal string, now time.Time) (*ProgressUpdate, error) {
	mi, ri, ok := rm.findResource(id)
	if !ok {
		return nil, ErrResourceNotFound
	}
	res := &rm.Modules[mi].Resources[ri]
	switch res.Status {
	case StatusLocked:
		return nil, ErrResourceLocked
	case StatusCompleted, StatusSkipped:
		// повторный вызов — конфликт, а не тихий no-op
		return nil, ErrAlreadyResolved
	}

	t := now
	res.Status = terminal
	if terminal == StatusCompleted {
		res.CompletedAt = &t
	} else {
		res.SkippedAt = &t
	}

	update := &ProgressUpdate{Resource: res, ModuleIndex: mi}
	mod := &rm.Modules[mi]

	// Разблокируем следующий ресурс внутри модуля
	if ri+1 < len(mod.Resources) {
		next := &mod.Resources[ri+1]
		if next.Status == StatusLocked {
			next.Status = StatusUnlocked
			update.UnlockedNext = next.ID
		}
	}

	// Модуль закрыт — открываем следующий модуль либо завершаем роадмап
	if mod.Resolved() {
		mod.Completed = true
		update.ModuleResolved = true
		if mi+1 < len(rm.Modules) {
			nextMod := &rm.Modules[mi+1]
			if len(nextMod.Resources) > 0 && nextMod.Resources[0].Status == StatusLocked {
				nextMod.Resources[0].Status = StatusUnlocked
				if update.UnlockedNext == "" {
					update.UnlockedNext = nextMod.Resources[0].ID
				}
			}
		} else {
			rm.Completed = true
			update.RoadmapComplete = true
		}
	}

	rm.Recalculate()
	return update, nil
}

// AddTime: накапливает время по открытому ресурсу, при 90% от оценки
// закрывает его через обычный путь завершения
func (rm *Roadmap) AddTime(id string, seconds int, now time.Time) (*ProgressUpdate, bool, error) {
	mi, ri, ok := rm.findResource(id)
	if !ok {
		return nil, false, ErrResourceNotFound
	}
	res := &rm.Modules[mi].Resources[ri]
	switch res.Status {
	case StatusLocked:
		return nil, false, ErrResourceLocked
	case StatusCompleted, StatusSkipped:
		return nil, false, ErrAlreadyResolved
	case StatusUnlocked:
		return nil, false, ErrNotOpened
	}

	if seconds > 0 {
		res.TimeSpentSeconds += seconds
	}

	if res.EstimatedHours > 0 && float64(res.TimeSpentSeconds) >= res.EstimatedHours*3600*0.9 {
		update, err := rm.resolveResource(id, StatusCompleted, now)
		if err != nil {
			return nil, false, err
		}
		return update, true, nil
	}

	return &ProgressUpdate{Resource: res, ModuleIndex: mi}, false, nil
}

// Recalculate: процент закрытых ресурсов и индекс текущего модуля.
// Процент не убывает: закрытые ресурсы не открываются обратно.
func (rm *Roadmap) Recalculate() {
	total := rm.TotalResources()
	if total == 0 {
		rm.ProgressPercentage = 0
		return
	}
	rm.ProgressPercentage = float64(rm.ResolvedResources()) / float64(total) * 100

	for i := range rm.Modules {
		if !rm.Modules[i].Resolved() {
			rm.CurrentModuleIndex = i
			return
		}
	}
	rm.CurrentModuleIndex = len(rm.Modules) - 1
}
