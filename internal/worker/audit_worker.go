package worker

import (
	"github.com/spec-kit/membership-portal/internal/service"
)

// StartAuditWorker registers the audit subscribers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
