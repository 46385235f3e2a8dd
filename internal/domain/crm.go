package domain

// Types mirroring the Helena CRM API payloads. Fields we do not interpret are
// kept as raw maps and passed through untouched.

type Panel struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	CreatedAt   string      `json:"createdAt,omitempty"`
	UpdatedAt   string      `json:"updatedAt,omitempty"`
	Steps       []PanelStep `json:"steps,omitempty"`
}

type PanelStep struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Phase    string `json:"phase,omitempty"`
	Position int    `json:"position,omitempty"`
}

type Card struct {
	ID                string         `json:"id"`
	Title             string         `json:"title"`
	PanelID           string         `json:"panelId"`
	PanelTitle        string         `json:"panelTitle,omitempty"`
	StepID            string         `json:"stepId,omitempty"`
	StepTitle         string         `json:"stepTitle,omitempty"`
	StepPhase         string         `json:"stepPhase,omitempty"`
	Position          int            `json:"position,omitempty"`
	Description       string         `json:"description,omitempty"`
	MonetaryAmount    float64        `json:"monetaryAmount,omitempty"`
	DueDate           string         `json:"dueDate,omitempty"`
	Archived          bool           `json:"archived,omitempty"`
	CreatedAt         string         `json:"createdAt,omitempty"`
	UpdatedAt         string         `json:"updatedAt,omitempty"`
	ResponsibleUserID string         `json:"responsibleUserId,omitempty"`
	ResponsibleUser   *CrmUser       `json:"responsibleUser,omitempty"`
	ContactIDs        []string       `json:"contactIds,omitempty"`
	TagIDs            []string       `json:"tagIds,omitempty"`
	CustomFields      map[string]any `json:"customFields,omitempty"`
	Metadata          map[string]any `json:"metadata,omitempty"`
}

type CrmUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type CardFilters struct {
	PanelID   string `json:"panelId" validate:"required"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	UserID    string `json:"userId,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
	StepID    string `json:"stepId,omitempty"`
	Page      int    `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize  int    `json:"pageSize,omitempty" validate:"omitempty,min=1,max=1000"`
}

type CardsPage struct {
	Items      []Card `json:"items"`
	TotalItems int    `json:"totalItems"`
	TotalPages int    `json:"totalPages"`
	PageNumber int    `json:"pageNumber"`
	PageSize   int    `json:"pageSize"`
}

type PanelsPage struct {
	Items      []Panel `json:"items"`
	TotalItems int     `json:"totalItems"`
}

type AgentsPage struct {
	Items      []CrmUser `json:"items"`
	TotalItems int       `json:"totalItems"`
}
