package types

// Report is a moderation complaint filed against a user or room.
type Report struct {
	Base
	ReporterID string `json:"reporter_id" validate:"required"`
	TargetID   string `json:"target_id" validate:"required"`
	Reason     string `json:"reason" validate:"required,max=512"`
	HandledBy  string `json:"handled_by"`
	ReportedAt string `json:"reported_at"`
}

// Setting is one system configuration entry shown on the settings page.
type Setting struct {
	Base
	Key         string `json:"key" validate:"required,max=128"`
	Value       string `json:"value"`
	Group       string `json:"group"`
	Description string `json:"description"`
}
