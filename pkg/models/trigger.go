package models

// TriggerType classifies how a workflow can be started from outside.
type TriggerType string

const (
	TriggerTypeWebhook  TriggerType = "webhook"
	TriggerTypeChat     TriggerType = "chat"
	TriggerTypeSchedule TriggerType = "schedule"
	TriggerTypeManual   TriggerType = "manual"
)

// TriggerURLs are the externally reachable endpoints of a trigger.
type TriggerURLs struct {
	Production string  `json:"production"`
	Test       string  `json:"test"`
	Chat       *string `json:"chat"`
}

// TriggerDescriptor describes one trigger node of a workflow. It is rebuilt,
// never patched, whenever the identifier its URLs depend on changes.
type TriggerDescriptor struct {
	Type                TriggerType       `json:"type"`
	NodeID              string            `json:"node_id"`
	NodeName            string            `json:"node_name"`
	WebhookID           *string           `json:"webhook_id"`
	URLs                TriggerURLs       `json:"urls"`
	CommunicationMethod string            `json:"communication_method"`
	HumanDetails        map[string]string `json:"human_details,omitempty"`
}
