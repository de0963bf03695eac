package worker

import (
	"github.com/frigelar/esteira/internal/service"
)

// StartAuditWorker registers the audit-trail event handlers.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
