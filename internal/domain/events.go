package domain

const (
	CanonicalEventClassDomain        = "domain"
	CanonicalEventClassAnalyticsOnly = "analytics_only"
)

const (
	EventOrderStatusChanged    = "pipeline.order.status_changed"
	EventOrderTrackingAttached = "pipeline.order.tracking_attached"
	EventStageCreated          = "crm.stage.created"
	EventStageReordered        = "crm.stage.reordered"
	EventStageArchived         = "crm.stage.archived"
	EventLeadStageMoved        = "crm.lead.stage_moved"
	EventLeadStatusChanged     = "crm.lead.status_changed"
)

func IsCanonicalEmittedEvent(eventType string) bool {
	switch eventType {
	case EventOrderStatusChanged, EventOrderTrackingAttached,
		EventStageCreated, EventStageReordered, EventStageArchived,
		EventLeadStageMoved, EventLeadStatusChanged:
		return true
	default:
		return false
	}
}

func CanonicalEventClass(eventType string) string {
	switch eventType {
	case EventOrderTrackingAttached:
		return CanonicalEventClassAnalyticsOnly
	default:
		if IsCanonicalEmittedEvent(eventType) {
			return CanonicalEventClassDomain
		}
		return ""
	}
}

func CanonicalPartitionKeyPath(eventType string) string {
	switch eventType {
	case EventOrderStatusChanged, EventOrderTrackingAttached:
		return "data.order_id"
	case EventStageCreated, EventStageReordered, EventStageArchived:
		return "data.registry_id"
	case EventLeadStageMoved, EventLeadStatusChanged:
		return "data.lead_id"
	default:
		return ""
	}
}
