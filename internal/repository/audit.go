package repository

import (
	"context"

	"perfumeria_back_end/internal/models"
)

func (s *Scylla) InsertAuditLog(ctx context.Context, a models.AuditLog) error {
	return s.session.Query(`INSERT INTO audit_logs (
			id, user_id, action, resource, resource_id, old_value, new_value,
			ip_address, success, error_msg, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Action, a.Resource, a.ResourceID, a.OldValue, a.NewValue,
		a.IPAddress, a.Success, a.ErrorMsg, a.Timestamp,
	).WithContext(ctx).Exec()
}
