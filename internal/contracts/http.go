package contracts

type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

type CreateStageRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

type StageResponse struct {
	StageID     string `json:"stage_id"`
	RegistryID  string `json:"registry_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
	Position    int    `json:"position"`
	Active      bool   `json:"active"`
}

type StageListResponse struct {
	Items []StageResponse `json:"items"`
}

type ReorderStageRequest struct {
	TargetIndex int `json:"target_index"`
}

type PositionChangeResponse struct {
	StageID     string `json:"stage_id"`
	NewPosition int    `json:"new_position"`
}

type ReorderStageResponse struct {
	Changes []PositionChangeResponse `json:"changes"`
}

type CreateLeadRequest struct {
	Name                string `json:"name"`
	RegistryID          string `json:"registry_id"`
	StageID             string `json:"stage_id,omitempty"`
	EstimatedValue      string `json:"estimated_value,omitempty"`
	AssignedAffiliateID string `json:"assigned_affiliate_id,omitempty"`
}

type MoveLeadRequest struct {
	StageID string `json:"stage_id"`
}

type LeadResponse struct {
	LeadID              string `json:"lead_id"`
	RegistryID          string `json:"registry_id"`
	StageID             string `json:"stage_id,omitempty"`
	Status              string `json:"status"`
	Name                string `json:"name"`
	EstimatedValue      string `json:"estimated_value,omitempty"`
	AssignedAffiliateID string `json:"assigned_affiliate_id,omitempty"`
}

type LeadStageChangeResponse struct {
	ChangeID    string `json:"change_id"`
	FromStageID string `json:"from_stage_id,omitempty"`
	ToStageID   string `json:"to_stage_id,omitempty"`
	FromStatus  string `json:"from_status,omitempty"`
	ToStatus    string `json:"to_status,omitempty"`
	ChangedBy   string `json:"changed_by,omitempty"`
	ChangedAt   string `json:"changed_at"`
}

type LeadHistoryResponse struct {
	LeadID string                    `json:"lead_id"`
	Items  []LeadStageChangeResponse `json:"items"`
}

type CreateOrderRequest struct {
	PatientID string `json:"patient_id"`
	Total     string `json:"total,omitempty"`
}

type TransitionOrderRequest struct {
	NewStatus string `json:"new_status"`
}

type AttachTrackingRequest struct {
	Code string `json:"code"`
}

type OrderResponse struct {
	OrderID                string `json:"order_id"`
	PatientID              string `json:"patient_id"`
	Status                 string `json:"status"`
	TrackingNumber         string `json:"tracking_number,omitempty"`
	RegulatoryTrackingCode string `json:"regulatory_tracking_code,omitempty"`
	ImportTrackingCode     string `json:"import_tracking_code,omitempty"`
	UpdatedAt              string `json:"updated_at"`
}

type ProgressStepResponse struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	State string `json:"state"`
}

type ProgressResponse struct {
	PatientID   string                 `json:"patient_id"`
	CurrentStep int                    `json:"current_step"`
	Steps       []ProgressStepResponse `json:"steps"`
}

type AffiliateMetricsResponse struct {
	AffiliateID     string `json:"affiliate_id"`
	Clicks          int64  `json:"clicks"`
	Registrations   int64  `json:"registrations"`
	Purchases       int64  `json:"purchases"`
	TotalRevenue    string `json:"total_revenue"`
	TotalCommission string `json:"total_commission"`
	ConversionRate  string `json:"conversion_rate"`
}

type LeaderboardResponse struct {
	Window string                     `json:"window"`
	Items  []AffiliateMetricsResponse `json:"items"`
}
