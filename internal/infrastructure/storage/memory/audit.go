package memory

import (
	"context"

	"khaata/internal/domain/audit"
)

// AuditLog implements audit.Recorder by appending to the store.
type AuditLog struct{ s *Store }

// Audit returns the audit recorder.
func (s *Store) Audit() *AuditLog { return &AuditLog{s} }

func (a *AuditLog) Record(ctx context.Context, entry audit.Entry) error {
	entry = audit.Stamp(ctx, entry)
	return a.s.view(ctx, func(st *state) error {
		st.audit = append(st.audit, entry)
		return nil
	})
}

var _ audit.Recorder = (*AuditLog)(nil)
