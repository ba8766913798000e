package app

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/examprep/internal/clock"
	"github.com/abhisek/examprep/internal/router"
	"github.com/abhisek/examprep/internal/screen"
	"github.com/abhisek/examprep/internal/screens/home"
	"github.com/abhisek/examprep/internal/screens/picker"
	"github.com/abhisek/examprep/internal/store"
)

// stubScreen records the messages it receives.
type stubScreen struct {
	intercept bool
	got       []tea.Msg
}

func (s *stubScreen) Init() tea.Cmd { return nil }
func (s *stubScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	s.got = append(s.got, msg)
	return s, nil
}
func (s *stubScreen) View(int, int) string   { return "stub" }
func (s *stubScreen) Title() string          { return "Stub" }
func (s *stubScreen) InterceptsEscape() bool { return s.intercept }

func testServices(t *testing.T) screen.Services {
	t.Helper()
	clk := clock.NewManual(time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC))
	st, err := store.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared", store.WithClock(clk))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return screen.Services{
		Logs:       st.StudyLogRepo(),
		Exams:      st.ExamRepo(),
		Interviews: st.InterviewRepo(),
		SkillGaps:  st.SkillGapRepo(),
		Clock:      clk,
		Log:        zap.NewNop(),
	}
}

func TestNewAppModel_StartsAtHome(t *testing.T) {
	m := newAppModel(Options{Services: testServices(t)})
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want home", m.router.Active())
	}
	if m.Init() == nil {
		t.Error("home should load its stats on start")
	}
}

func TestNewAppModel_StartInPicker(t *testing.T) {
	m := newAppModel(Options{Services: testServices(t), StartInPicker: true})
	if _, ok := m.router.Active().(*picker.PickerScreen); !ok {
		t.Errorf("active = %T, want picker", m.router.Active())
	}
	if m.router.Depth() != 2 {
		t.Errorf("depth = %d, want home under picker", m.router.Depth())
	}
}

func TestStreakChangedUpdatesHeader(t *testing.T) {
	m := newAppModel(Options{Services: testServices(t)})
	updated, _ := m.Update(screen.StreakChangedMsg{Streak: 4})
	if got := updated.(AppModel).streak; got != 4 {
		t.Errorf("streak = %d, want 4", got)
	}
}

func TestEscPopsUnlessIntercepted(t *testing.T) {
	m := newAppModel(Options{Services: testServices(t)})
	stub := &stubScreen{}
	m.router.Push(stub)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("Esc should pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}

	stub.intercept = true
	_, cmd = m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("intercepted Esc must not pop")
	}
	if len(stub.got) != 1 {
		t.Errorf("screen received %d messages, want the Esc key", len(stub.got))
	}
}

func TestEscAtRootDoesNothing(t *testing.T) {
	m := newAppModel(Options{Services: testServices(t)})
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("Esc at the root should be ignored")
	}
}
