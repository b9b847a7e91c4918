package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/server"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/tracker"
	"github.com/blackwell-systems/workclock/internal/usage"
)

// Backend is the tracker surface the tools call. *client.Client satisfies it.
type Backend interface {
	Status(ctx context.Context) (*tracker.Status, error)
	Start(ctx context.Context) (*store.Session, error)
	Pause(ctx context.Context) (*store.Session, error)
	Stop(ctx context.Context) (*store.Session, error)
	Reports(ctx context.Context) (*server.Reports, error)
	AppUsage(ctx context.Context) ([]store.AppUsage, error)
	Categories(ctx context.Context) ([]usage.CategoryTotal, error)
}

// SessionResult is returned by the start, pause and stop tools.
type SessionResult struct {
	Action  string         `json:"action"`
	Session *store.Session `json:"session"`
}

// ReportResult holds one period's totals.
type ReportResult struct {
	Period string              `json:"period"`
	Rows   []store.PeriodTotal `json:"rows"`
}

// AppUsageResult holds today's usage by app and by category.
type AppUsageResult struct {
	Apps       []store.AppUsage      `json:"apps"`
	Categories []usage.CategoryTotal `json:"categories"`
}

var (
	noArgsSchema  = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	reportsSchema = json.RawMessage(`{"type":"object","properties":{"period":{"type":"string","enum":["daily","weekly","monthly"],"description":"Report period (default daily)"},"n":{"type":"integer","description":"Number of most recent rows to return (default all)"}},"additionalProperties":false}`)
)

func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_status",
		Description: "Current manual and automatic session status with live totals and goal progress.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetStatus,
	})
	s.registerTool(toolDef{
		Name:        "start_session",
		Description: "Start or resume the manual work session.",
		InputSchema: noArgsSchema,
		Handler:     s.sessionAction("start", Backend.Start),
	})
	s.registerTool(toolDef{
		Name:        "pause_session",
		Description: "Pause the active manual work session.",
		InputSchema: noArgsSchema,
		Handler:     s.sessionAction("pause", Backend.Pause),
	})
	s.registerTool(toolDef{
		Name:        "stop_session",
		Description: "Stop the manual work session, crediting any pending time.",
		InputSchema: noArgsSchema,
		Handler:     s.sessionAction("stop", Backend.Stop),
	})
	s.registerTool(toolDef{
		Name:        "get_reports",
		Description: "Tracked time per day, ISO week, or month.",
		InputSchema: reportsSchema,
		Handler:     s.handleGetReports,
	})
	s.registerTool(toolDef{
		Name:        "get_app_usage",
		Description: "Today's foreground time per application and per category.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetAppUsage,
	})
}

func (s *Server) handleGetStatus(ctx context.Context, _ json.RawMessage) (any, error) {
	return s.backend.Status(ctx)
}

func (s *Server) sessionAction(action string, call func(Backend, context.Context) (*store.Session, error)) toolHandler {
	return func(ctx context.Context, _ json.RawMessage) (any, error) {
		sess, err := call(s.backend, ctx)
		if err != nil {
			return nil, fmt.Errorf("%s session: %w", action, err)
		}
		return SessionResult{Action: action, Session: sess}, nil
	}
}

func (s *Server) handleGetReports(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Period string `json:"period"`
		N      *int   `json:"n"`
	}
	if len(args) > 0 && string(args) != "null" {
		if err := json.Unmarshal(args, &params); err != nil {
			return nil, apperr.Invalid("arguments: %v", err)
		}
	}
	if params.Period == "" {
		params.Period = "daily"
	}

	reports, err := s.backend.Reports(ctx)
	if err != nil {
		return nil, err
	}

	var rows []store.PeriodTotal
	switch params.Period {
	case "daily":
		rows = reports.Daily
	case "weekly":
		rows = reports.Weekly
	case "monthly":
		rows = reports.Monthly
	default:
		return nil, apperr.Invalid("unknown period %q", params.Period)
	}

	if params.N != nil && *params.N > 0 && *params.N < len(rows) {
		rows = rows[:*params.N]
	}
	if rows == nil {
		rows = []store.PeriodTotal{}
	}
	return ReportResult{Period: params.Period, Rows: rows}, nil
}

func (s *Server) handleGetAppUsage(ctx context.Context, _ json.RawMessage) (any, error) {
	apps, err := s.backend.AppUsage(ctx)
	if err != nil {
		return nil, err
	}
	cats, err := s.backend.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if apps == nil {
		apps = []store.AppUsage{}
	}
	if cats == nil {
		cats = []usage.CategoryTotal{}
	}
	return AppUsageResult{Apps: apps, Categories: cats}, nil
}
