package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/logging"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/tracker"
	"github.com/blackwell-systems/workclock/internal/usage"
)

// SessionHandler serves the state machine and the live status.
type SessionHandler struct {
	svc *tracker.Service
}

func NewSessionHandler(svc *tracker.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type sessionResponse struct {
	Success bool           `json:"success"`
	Session *store.Session `json:"session"`
}

func (h *SessionHandler) Start(c *gin.Context) {
	s, err := h.svc.Start(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, sessionResponse{Success: true, Session: s})
}

func (h *SessionHandler) Pause(c *gin.Context) {
	s, err := h.svc.Pause(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, sessionResponse{Success: true, Session: s})
}

func (h *SessionHandler) Stop(c *gin.Context) {
	s, err := h.svc.Stop(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, sessionResponse{Success: true, Session: s})
}

// EventRequest is the body of POST /event.
type EventRequest struct {
	Event string `json:"event"`
}

type eventResponse struct {
	Success bool `json:"success"`
	*tracker.EventResult
}

func (h *SessionHandler) Event(c *gin.Context) {
	var req EventRequest
	if err := bindJSON(c, &req); err != nil {
		RespondError(c, err)
		return
	}
	res, err := h.svc.HandleEvent(c.Request.Context(), req.Event)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, eventResponse{Success: true, EventResult: res})
}

func (h *SessionHandler) Status(c *gin.Context) {
	st, err := h.svc.Status(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, st)
}

// SettingsStore is where settings are read and written. *store.DB satisfies it.
type SettingsStore interface {
	settings.Reader
	settings.Writer
}

// SettingsHandler serves the goal settings in the dashboard's wire format,
// where customAppCategories travels as a JSON-encoded string.
type SettingsHandler struct {
	store    SettingsStore
	defaults settings.Settings
	log      *logging.Logger
}

func NewSettingsHandler(st SettingsStore, defaults settings.Settings, log *logging.Logger) *SettingsHandler {
	if log == nil {
		log = logging.Nop()
	}
	return &SettingsHandler{store: st, defaults: defaults, log: log}
}

// SettingsResponse is the dashboard's view of the settings.
type SettingsResponse struct {
	GoalHours           int    `json:"goalHours"`
	GoalMinutes         int    `json:"goalMinutes"`
	BreakInterval       int    `json:"breakInterval"`
	GoalLinePercent     int    `json:"goalLinePercent"`
	CustomAppCategories string `json:"customAppCategories"`
}

func toResponse(s settings.Settings) SettingsResponse {
	return SettingsResponse{
		GoalHours:           s.GoalHours,
		GoalMinutes:         s.GoalMinutes,
		BreakInterval:       s.BreakInterval,
		GoalLinePercent:     s.GoalLinePercent,
		CustomAppCategories: s.CustomAppCategories.String(),
	}
}

// Current loads the settings, tolerating unparseable stored values.
func (h *SettingsHandler) Current() (settings.Settings, error) {
	s, err := settings.Load(h.store, h.defaults)
	if errors.Is(err, apperr.ErrStorage) {
		return s, err
	}
	if err != nil {
		h.log.Warn("ignoring unreadable stored settings", "error", err)
	}
	return s, nil
}

func (h *SettingsHandler) Get(c *gin.Context) {
	s, err := h.Current()
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, toResponse(s))
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var patch settings.Patch
	if err := bindJSON(c, &patch); err != nil {
		RespondError(c, err)
		return
	}
	current, err := h.Current()
	if err != nil {
		RespondError(c, err)
		return
	}
	next, err := current.Apply(patch)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := settings.Save(h.store, next); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "settings": toResponse(next)})
}

// UsageHandler serves app-usage heartbeats and today's breakdowns.
type UsageHandler struct {
	usage    *usage.Tracker
	settings *SettingsHandler
}

func NewUsageHandler(u *usage.Tracker, s *SettingsHandler) *UsageHandler {
	return &UsageHandler{usage: u, settings: s}
}

func (h *UsageHandler) Heartbeat(c *gin.Context) {
	var hb usage.Heartbeat
	if err := bindJSON(c, &hb); err != nil {
		RespondError(c, err)
		return
	}
	if err := h.usage.Record(hb); err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func (h *UsageHandler) AppUsage(c *gin.Context) {
	rows, err := h.usage.Today()
	if err != nil {
		RespondError(c, err)
		return
	}
	if rows == nil {
		rows = []store.AppUsage{}
	}
	RespondOK(c, gin.H{"usage": rows})
}

func (h *UsageHandler) Categories(c *gin.Context) {
	s, err := h.settings.Current()
	if err != nil {
		RespondError(c, err)
		return
	}
	cats, err := h.usage.TodayCategories(s.CustomAppCategories)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, gin.H{"categories": cats})
}

func (h *UsageHandler) TodayApps(c *gin.Context) {
	apps, err := h.usage.TodayApps()
	if err != nil {
		RespondError(c, err)
		return
	}
	if apps == nil {
		apps = []string{}
	}
	RespondOK(c, gin.H{"apps": apps})
}

// ReportStore is the read side used for reports and the timeline.
type ReportStore interface {
	DailyReport(limit int) ([]store.PeriodTotal, error)
	WeeklyReport(limit int) ([]store.PeriodTotal, error)
	MonthlyReport(limit int) ([]store.PeriodTotal, error)
	EventsForDate(date string, kind store.Kind) ([]store.LockEvent, error)
}

// Report limits match the dashboard's chart ranges.
const (
	DailyLimit   = 30
	WeeklyLimit  = 10
	MonthlyLimit = 12
)

// Reports is the GET /reports body.
type Reports struct {
	Daily   []store.PeriodTotal `json:"daily"`
	Weekly  []store.PeriodTotal `json:"weekly"`
	Monthly []store.PeriodTotal `json:"monthly"`
}

// LoadReports runs the three period reports.
func LoadReports(st ReportStore) (*Reports, error) {
	var r Reports
	var err error
	if r.Daily, err = st.DailyReport(DailyLimit); err != nil {
		return nil, err
	}
	if r.Weekly, err = st.WeeklyReport(WeeklyLimit); err != nil {
		return nil, err
	}
	if r.Monthly, err = st.MonthlyReport(MonthlyLimit); err != nil {
		return nil, err
	}
	for _, p := range []*[]store.PeriodTotal{&r.Daily, &r.Weekly, &r.Monthly} {
		if *p == nil {
			*p = []store.PeriodTotal{}
		}
	}
	return &r, nil
}

type ReportHandler struct {
	store ReportStore
	clock clock.Clock
}

func NewReportHandler(st ReportStore, clk clock.Clock) *ReportHandler {
	return &ReportHandler{store: st, clock: clk}
}

func (h *ReportHandler) Reports(c *gin.Context) {
	r, err := LoadReports(h.store)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, r)
}

// TodayEvents lists today's lock/unlock events. ?type=manual selects the
// manual session's events; the default is the automatic session's.
func (h *ReportHandler) TodayEvents(c *gin.Context) {
	kind := store.KindAutomatic
	switch c.Query("type") {
	case "", string(store.KindAutomatic):
	case string(store.KindManual):
		kind = store.KindManual
	default:
		RespondError(c, apperr.Invalid("unknown session type %q", c.Query("type")))
		return
	}

	events, err := h.store.EventsForDate(clock.Date(h.clock.Now()), kind)
	if err != nil {
		RespondError(c, err)
		return
	}
	if events == nil {
		events = []store.LockEvent{}
	}
	RespondOK(c, gin.H{"events": events})
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}
