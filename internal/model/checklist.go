package model

// DateLayout is the ISO calendar date format used for last_refresh.
const DateLayout = "2006-01-02"

// ChecklistTask is a single entry of a terminal checklist.
type ChecklistTask struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Checklist is a named list in the checklist document. When DailyRefresh is
// set, every task is reset to not done once per calendar day on load.
type Checklist struct {
	DailyRefresh bool            `json:"daily_refresh"`
	LastRefresh  string          `json:"last_refresh"`
	Tasks        []ChecklistTask `json:"tasks"`
}

// Checklists is the whole document, keyed by checklist name.
type Checklists map[string]*Checklist
