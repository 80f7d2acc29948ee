package flowchart

import (
	"strings"

	"github.com/dkoval/crmscope/internal/hubspot"
)

// actionLabels maps known action-type tags to human labels. The tag
// vocabulary is open: unrecognized tags render with their raw tag text, so
// a new upstream action type degrades to an ugly label, never a crash.
var actionLabels = map[string]string{
	"DELAY":                "Delay",
	"SET_CONTACT_PROPERTY": "Set property",
	"SET_COMPANY_PROPERTY": "Set property",
	"SET_DEAL_PROPERTY":    "Set property",
	"COPY_PROPERTY":        "Copy property",
	"SEND_EMAIL":           "Send email",
	"AUTOMATED_EMAIL":      "Send email",
	"SEND_NOTIFICATION":    "Send notification",
	"WEBHOOK":              "Webhook",
	"CUSTOM_CODE":          "Custom code",
	"CREATE_TASK":          "Create task",
	"ADD_TO_LIST":          "Add to list",
	"REMOVE_FROM_LIST":     "Remove from list",
	"ENROLL_IN_WORKFLOW":   "Enroll in workflow",
	"ROTATE_OWNER":         "Rotate owner",
	"LIST_BRANCH":          "If/then branch",
	"STATIC_BRANCH":        "Value branch",
	"AB_TEST":              "A/B test",
}

// branchContainers are the action kinds that fan out into branch columns.
var branchContainers = map[string]bool{
	"LIST_BRANCH":   true,
	"STATIC_BRANCH": true,
	"AB_TEST":       true,
}

// percentageBranches are the proportional/test-style kinds whose unnamed
// branches get a computed percentage label instead of an ordinal.
var percentageBranches = map[string]bool{
	"AB_TEST": true,
}

func actionLabel(a hubspot.Action) string {
	if a.Type == "" {
		// Pure branch containers carry no type tag.
		return "Branch"
	}
	if l, ok := actionLabels[a.Type]; ok {
		return l
	}
	return a.Type
}

func isBranch(a hubspot.Action) bool {
	return len(a.Branches) > 0 || a.DefaultNext != "" || branchContainers[a.Type]
}

// eventTypeLabels maps event-type identifiers of event-based enrollment
// triggers to human labels. Unknown ids fall back to "Event <id>".
var eventTypeLabels = map[string]string{
	"4-1639801": "Ad interaction",
	"4-1639799": "Form submitted",
	"4-1639797": "Email opened",
	"4-1639798": "Email clicked",
	"4-1639800": "Page visited",
	"4-1639802": "Meeting booked",
	"4-1639803": "Call logged",
}

func eventLabel(id string) string {
	if l, ok := eventTypeLabels[id]; ok {
		return l
	}
	return "Event " + id
}

// valuePhrases maps the type discriminator of a structured value object to
// a human phrase, rendered parenthesized in place of the raw structure.
var valuePhrases = map[string]string{
	"CURRENT_TIME":    "current time",
	"ENROLLMENT_TIME": "time of enrollment",
	"OBJECT_PROPERTY": "another property",
	"STATIC_VALUE":    "static value",
}

func valuePhrase(discriminator string) string {
	if p, ok := valuePhrases[discriminator]; ok {
		return p
	}
	return strings.ToLower(strings.ReplaceAll(discriminator, "_", " "))
}
