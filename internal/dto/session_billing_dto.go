package dto

// --- Session DTOs ---

// BridgeUser is the identity payload the client asserts after completing
// authentication directly with the identity provider.
type BridgeUser struct {
	Id       string `json:"id" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Audience string `json:"aud"`
}

type BridgeSessionRequest struct {
	AccessToken string      `json:"access_token" validate:"required"`
	User        *BridgeUser `json:"user" validate:"required"`
}

type SessionResponse struct {
	UserId   string `json:"user_id"`
	Email    string `json:"email"`
	Audience string `json:"aud"`
}

type DashboardResponse struct {
	Email      string `json:"email"`
	Plan       string `json:"plan"`
	PaidAccess bool   `json:"paid_access"`
}

// --- Billing DTOs ---

type PlanOption struct {
	PlanId   string `json:"plan_id"`
	PlanName string `json:"plan_name"`
}

type PricingResponse struct {
	CurrentPlan string       `json:"current_plan"`
	PaidAccess  bool         `json:"paid_access"`
	Plans       []PlanOption `json:"plans"`
}

type StartSubscriptionRequest struct {
	PlanId   string `json:"plan_id" validate:"required"`
	PlanName string `json:"plan_name" validate:"required,oneof=pro premium"`
}

type StartSubscriptionResponse struct {
	AgreementId string `json:"agreement_id"`
	ApproveUrl  string `json:"approve_url"`
}

// SubscriptionSummary is one row of a user's agreement history.
type SubscriptionSummary struct {
	AgreementId string `json:"agreement_id"`
	PlanName    string `json:"plan_name"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// WebhookResource is the subset of the provider's resource object the
// reconciler cares about.
type WebhookResource struct {
	Id     string `json:"id"`
	PlanId string `json:"plan_id"`
	Status string `json:"status"`
	State  string `json:"state"`
}

// ProviderWebhookEvent is one inbound notification. Delivery is
// at-least-once and possibly out of order.
type ProviderWebhookEvent struct {
	EventType string          `json:"event_type"`
	Resource  WebhookResource `json:"resource"`
}

// BillingEventMessage is the wire shape of events on the internal bus.
type BillingEventMessage struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}
