package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"secretstore-api/internal/domain"
)

// LogReader lists audit entries.
type LogReader interface {
	ListByWorkspaces(ctx context.Context, workspaceIDs []string) ([]domain.LogEntry, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.LogEntry, error)
}

// LogService serves the audit log. Visibility follows see_logs: the global
// listing covers exactly the workspaces where the caller holds the flag, and
// per-workspace access is gated on it.
type LogService struct {
	logs     LogReader
	bindings RoleBindingStore
	gate     *Gate
	audit    *AuditLogger
}

func NewLogService(logs LogReader, bindings RoleBindingStore, gate *Gate, audit *AuditLogger) *LogService {
	return &LogService{
		logs:     logs,
		bindings: bindings,
		gate:     gate,
		audit:    audit,
	}
}

// visibleWorkspaces returns the workspaces where the user holds see_logs
// through any binding.
func (s *LogService) visibleWorkspaces(ctx context.Context, userID string) ([]string, error) {
	bound, err := s.bindings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var ids []string
	for _, br := range bound {
		if br.Role.SeeLogs && !seen[br.Role.WorkspaceID] {
			seen[br.Role.WorkspaceID] = true
			ids = append(ids, br.Role.WorkspaceID)
		}
	}
	return ids, nil
}

// List returns entries from every workspace the caller may see logs in. A
// caller holding see_logs nowhere gets an empty list, not a denial.
func (s *LogService) List(ctx context.Context, actorID string) ([]domain.LogEntry, error) {
	ids, err := s.visibleWorkspaces(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.logs.ListByWorkspaces(ctx, ids)
}

// ListByWorkspace returns one workspace's entries. Requires see_logs there.
func (s *LogService) ListByWorkspace(ctx context.Context, actorID, workspaceID string) ([]domain.LogEntry, error) {
	if err := s.gate.Require(ctx, actorID, workspaceID, domain.CapSeeLogs, "view logs"); err != nil {
		return nil, err
	}
	return s.logs.ListByWorkspace(ctx, workspaceID)
}

// ExportCSV streams the caller's visible log entries as CSV with the header
// date,time,user_id,action,subject. The export itself is recorded in the
// audit log.
func (s *LogService) ExportCSV(ctx context.Context, actorID string, w io.Writer) error {
	entries, err := s.List(ctx, actorID)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "time", "user_id", "action", "subject"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Timestamp.Format("02/01/2006"),
			e.Timestamp.Format("15:04:05"),
			e.UserID,
			string(e.Action),
			string(e.Subject),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	s.audit.Record(ctx, actorID, domain.ActionExport, domain.SubjectLog, nil)
	return nil
}
