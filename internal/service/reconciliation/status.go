package reconciliation

import "checkout/internal/entities"

var gatewayStatuses = map[string]entities.OrderStatusType{
	"approved":   entities.OrderApproved,
	"pending":    entities.OrderPending,
	"rejected":   entities.OrderRejected,
	"cancelled":  entities.OrderCancelled,
	"in_process": entities.OrderInProcess,
	"refunded":   entities.OrderRefunded,
}

// MapStatus is total: anything the gateway reports that we do not track is pending.
func MapStatus(gatewayStatus string) entities.OrderStatusType {
	if status, ok := gatewayStatuses[gatewayStatus]; ok {
		return status
	}
	return entities.OrderPending
}
