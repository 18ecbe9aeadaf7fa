package orchestrator

import (
	"sync"

	"github.com/shaiso/Autofarm/internal/domain"
	"github.com/shaiso/Autofarm/internal/worker"
)

// workerSet — запущенные воркеры в порядке аккаунтов.
type workerSet struct {
	mu      sync.RWMutex
	runners []Runner

	// exited — воркеры, чей Run вернул управление, с причиной (пусто — штатно).
	exited map[string]string
}

func newWorkerSet() *workerSet {
	return &workerSet{exited: make(map[string]string)}
}

// markExited отмечает, что Run воркера завершился.
func (s *workerSet) markExited(session, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exited[session] = reason
}

func (s *workerSet) add(r Runner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runners = append(s.runners, r)
}

func (s *workerSet) snapshot() []worker.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]worker.Status, 0, len(s.runners))
	for _, r := range s.runners {
		st := r.Status()
		// Воркер, вышедший без терминального состояния (panic), больше не работает.
		if reason, ok := s.exited[st.Session]; ok && !st.State.IsTerminal() {
			st.State = domain.WorkerStateStopped
			if reason != "" {
				st.LastError = reason
			}
		}
		out = append(out, st)
	}
	return out
}

// Summary — сводка по всем воркерам.
type Summary struct {
	Workers        int   `json:"workers"`
	Active         int   `json:"active"`
	Terminated     int   `json:"terminated"`
	Stopped        int   `json:"stopped"`
	Cycles         int   `json:"cycles"`
	TasksVerified  int   `json:"tasks_verified"`
	RewardsClaimed int   `json:"rewards_claimed"`
	TotalBalance   int64 `json:"total_balance"`
}

// Summarize агрегирует статусы воркеров.
// Воркер считается активным, пока не перешёл в терминальное состояние.
func Summarize(statuses []worker.Status) Summary {
	var s Summary
	for _, st := range statuses {
		s.Workers++
		switch st.State {
		case domain.WorkerStateTerminated:
			s.Terminated++
		case domain.WorkerStateStopped:
			s.Stopped++
		default:
			s.Active++
		}
		s.Cycles += st.Cycles
		s.TasksVerified += st.TasksVerified
		s.RewardsClaimed += st.RewardsClaimed
		if st.Balance != nil {
			s.TotalBalance += *st.Balance
		}
	}
	return s
}
