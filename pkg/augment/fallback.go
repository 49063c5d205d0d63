package augment

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/dukex/flowgate/pkg/models"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Fallback is the rule-based summary used whenever no completion is available.
// It has the same shape as a completion result and always suggests exactly
// one endpoint.
func Fallback(graph models.WorkflowGraph, triggers []models.TriggerDescriptor) models.Summary {
	name := strings.TrimSpace(graph.Name)
	if name == "" {
		name = "Untitled workflow"
	}

	description := fmt.Sprintf("%s has %d nodes", name, len(graph.Nodes))
	if len(triggers) == 0 {
		description += " and no trigger, so it only runs when started from the editor."
	} else {
		kinds := make([]string, 0, len(triggers))
		for _, trigger := range triggers {
			kinds = append(kinds, string(trigger.Type))
		}

		description += fmt.Sprintf(" and is started by %d trigger(s): %s.", len(triggers), strings.Join(kinds, ", "))
	}

	return models.Summary{
		Purpose:            "Automates " + name,
		Description:        description,
		SuggestedEndpoints: []string{suggestedEndpoint(name, triggers)},
	}
}

func suggestedEndpoint(name string, triggers []models.TriggerDescriptor) string {
	for _, trigger := range triggers {
		if trigger.URLs.Production != "" {
			return trigger.URLs.Production
		}
	}

	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "workflow"
	}

	return "/webhook/" + slug
}
