package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukex/flowgate/pkg/models"
	"github.com/robfig/cron/v3"
)

const (
	defaultWebhookMethod = "GET"
	defaultAuthMode      = "none"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func describeTrigger(node *models.Node, triggerType models.TriggerType, now time.Time) models.TriggerDescriptor {
	descriptor := models.TriggerDescriptor{
		Type:         triggerType,
		NodeID:       node.Key(),
		NodeName:     node.Name,
		HumanDetails: map[string]string{"node_type": node.Type},
	}

	if node.HasWebhookID() {
		webhookID := *node.WebhookID
		descriptor.WebhookID = &webhookID
	}

	switch triggerType {
	case models.TriggerTypeWebhook:
		method := strings.ToUpper(node.Parameter("httpMethod"))
		if method == "" {
			method = defaultWebhookMethod
		}

		auth := node.Parameter("authentication")
		if auth == "" {
			auth = defaultAuthMode
		}

		descriptor.CommunicationMethod = "HTTP " + method
		descriptor.HumanDetails["http_method"] = method
		descriptor.HumanDetails["authentication"] = auth

		if path := webhookPath(node); path != "" {
			descriptor.HumanDetails["path"] = path
		}

		if mode := node.Parameter("responseMode"); mode != "" {
			descriptor.HumanDetails["response_mode"] = mode
		}
	case models.TriggerTypeChat:
		descriptor.CommunicationMethod = "Chat interface"
		descriptor.HumanDetails["public"] = fmt.Sprint(node.Parameters["public"] == true)

		if mode := node.Parameter("mode"); mode != "" {
			descriptor.HumanDetails["mode"] = mode
		}
	case models.TriggerTypeSchedule:
		descriptor.CommunicationMethod = "Scheduled execution"
		describeSchedule(node, now, descriptor.HumanDetails)
	case models.TriggerTypeManual:
		descriptor.CommunicationMethod = "Manual execution"
		descriptor.HumanDetails["note"] = "started from the remote editor or API"
	}

	return descriptor
}

func describeSchedule(node *models.Node, now time.Time, details map[string]string) {
	expression := node.Parameter("cronExpression")
	intervals := make([]string, 0)

	if rule, ok := node.Parameters["rule"].(map[string]any); ok {
		entries, _ := rule["interval"].([]any)
		for _, entry := range entries {
			interval, ok := entry.(map[string]any)
			if !ok {
				continue
			}

			field, _ := interval["field"].(string)
			if field == "cronExpression" {
				if expr, ok := interval["expression"].(string); ok && expression == "" {
					expression = expr
				}

				continue
			}

			if field == "" {
				continue
			}

			every := 1
			if n, ok := interval[field+"Interval"].(float64); ok && n > 0 {
				every = int(n)
			}

			intervals = append(intervals, fmt.Sprintf("every %d %s", every, field))
		}
	}

	if times, ok := node.Parameters["triggerTimes"].(map[string]any); ok {
		items, _ := times["item"].([]any)
		for _, item := range items {
			if entry, ok := item.(map[string]any); ok {
				if mode, ok := entry["mode"].(string); ok {
					intervals = append(intervals, mode)
				}
			}
		}
	}

	if len(intervals) > 0 {
		details["interval"] = strings.Join(intervals, ", ")
	}

	if expression == "" {
		return
	}

	details["cron_expression"] = expression

	schedule, err := cronParser.Parse(expression)
	if err != nil {
		details["cron_error"] = err.Error()

		return
	}

	details["next_run"] = schedule.Next(now).UTC().Format(time.RFC3339)
}

func webhookPath(node *models.Node) string {
	return strings.Trim(node.Parameter("path"), "/")
}
