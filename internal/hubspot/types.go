package hubspot

import "time"

// Pipeline is a CRM pipeline with its ordered stages.
type Pipeline struct {
	ID           string  `json:"id"`
	Label        string  `json:"label"`
	DisplayOrder int     `json:"displayOrder"`
	Stages       []Stage `json:"stages"`
}

// Stage is a single stage within a pipeline.
type Stage struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"displayOrder"`
}

// Flow is a workflow automation: a trigger plus a directed action graph.
// List endpoints return summaries only (no actions); the full graph comes
// from the single-flow or batch-read endpoints.
type Flow struct {
	ID                 string              `json:"id"`
	Name               string              `json:"name"`
	Enabled            bool                `json:"isEnabled"`
	Type               string              `json:"type,omitempty"`
	StartActionID      string              `json:"startActionId,omitempty"`
	Actions            []Action            `json:"actions,omitempty"`
	EnrollmentCriteria *EnrollmentCriteria `json:"enrollmentCriteria,omitempty"`
}

// Action is one node in a flow's graph: either a single-step action with an
// optional forward connection, or a branch container with an ordered set of
// labeled branches. Fields is an open property bag whose shape depends on
// the action type; unrecognized types and fields are tolerated everywhere.
type Action struct {
	ID       string         `json:"actionId"`
	Type     string         `json:"actionType,omitempty"`
	Fields   map[string]any `json:"fields,omitempty"`
	Next     string         `json:"nextActionId,omitempty"`
	Branches []Branch       `json:"branches,omitempty"`
	// DefaultNext is the fallback branch target present on some branch
	// containers alongside the named branches.
	DefaultNext string `json:"defaultNextActionId,omitempty"`
}

// Branch is one labeled edge out of a branch container. An empty Next means
// the branch terminates.
type Branch struct {
	Label string `json:"label"`
	Next  string `json:"nextActionId,omitempty"`
}

// EnrollmentCriteria describes what enrolls an object into a flow.
// Exactly one of EventFilterBranches or ListFilterBranches is populated,
// depending on Type.
type EnrollmentCriteria struct {
	Type                string              `json:"type,omitempty"` // "EVENT_BASED" or "LIST_BASED"
	ShouldReEnroll      bool                `json:"shouldReEnroll"`
	EventFilterBranches []EventFilterBranch `json:"eventFilterBranches,omitempty"`
	ListFilterBranches  []ListFilterBranch  `json:"listFilterBranches,omitempty"`
}

// EventFilterBranch is one event condition of an event-based trigger.
type EventFilterBranch struct {
	EventTypeID string `json:"eventTypeId"`
}

// ListFilterBranch is one filter group of a list-based trigger.
type ListFilterBranch struct {
	Filters []PropertyFilter `json:"filters,omitempty"`
}

// PropertyFilter is a single property condition within a list filter.
type PropertyFilter struct {
	Property  string `json:"property"`
	Operation string `json:"operation"`
}

// FlowPage is one page of flow summaries plus the continuation token for
// the next page (empty when this is the last page).
type FlowPage struct {
	Results []Flow
	After   string
}

// EmailEvent is a single email engagement event (sent, open, click).
type EmailEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	CampaignID int64     `json:"emailCampaignId"`
	Campaign   string    `json:"emailCampaignGroupName,omitempty"`
	Recipient  string    `json:"recipient"`
	Created    time.Time `json:"-"`
	CreatedMS  int64     `json:"created"`
}

// PageView is a single page-view event for a contact.
type PageView struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Title      string    `json:"pageTitle,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
