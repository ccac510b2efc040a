package db

import (
	"time"

	"gorm.io/datatypes"
)

// GlpiConfig holds one tenant's upstream helpdesk credentials. The password
// and app token are write-only from the API's point of view: read paths
// redact them before marshaling.
type GlpiConfig struct {
	URL          string `gorm:"size:255" json:"url"`
	AppToken     string `gorm:"size:255" json:"app_token"`
	UserLogin    string `gorm:"size:128" json:"user_login"`
	UserPassword string `gorm:"size:255" json:"user_password"`
}

// AutomationConfig controls a tenant's automatic ticket handling.
type AutomationConfig struct {
	// StatusFilter is comma-separated status codes; the sentinel "10"
	// means all dashboard statuses.
	StatusFilter          string `gorm:"size:32;default:10" json:"status_filter"`
	AutoAssignEnabled     bool   `gorm:"default:true" json:"auto_assign_enabled"`
	AutoCategorizeEnabled bool   `gorm:"default:true" json:"auto_categorize_enabled"`
}

// DailyStats is the cached ticket-count snapshot for a tenant's dashboard.
// It is overwritten wholesale on each aggregation run, never updated
// incrementally.
type DailyStats struct {
	Data                time.Time `json:"data"`
	ChamadosDisponiveis int       `json:"chamados_disponiveis"`
	ChamadosAtribuidos  int       `json:"chamados_atribuidos"`
	ChamadosPlanejados  int       `json:"chamados_planejados"`
	ChamadosPendentes   int       `json:"chamados_pendentes"`
	Total               int       `json:"total"`
}

// Tenant is a customer organization with its own GLPI credentials and
// users.
type Tenant struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Nome  string `gorm:"uniqueIndex;size:128;not null" json:"nome"`
	Slug  string `gorm:"uniqueIndex;size:64;not null" json:"slug"`
	Logo  string `gorm:"size:255" json:"logo"`
	Ativo bool   `gorm:"default:true" json:"ativo"`

	PlanID *uint `gorm:"index" json:"plan_id"`

	// SubscriptionID links the tenant to its payment-provider preapproval.
	SubscriptionID string `gorm:"size:64" json:"subscription_id,omitempty"`

	Glpi       GlpiConfig       `gorm:"embedded;embeddedPrefix:glpi_" json:"glpi_config"`
	Automation AutomationConfig `gorm:"embedded;embeddedPrefix:automation_" json:"automation_config"`

	// AssignRules holds per-urgency escalation minutes and other
	// automation knobs without schema changes.
	AssignRules datatypes.JSONMap `gorm:"type:json" json:"assign_rules"`

	Stats DailyStats `gorm:"embedded;embeddedPrefix:stats_" json:"daily_stats"`
}

// Redacted returns a copy safe to send to clients: credentials that mint
// upstream sessions are masked.
func (t Tenant) Redacted() Tenant {
	if t.Glpi.AppToken != "" {
		t.Glpi.AppToken = "********"
	}
	if t.Glpi.UserPassword != "" {
		t.Glpi.UserPassword = "********"
	}
	return t
}

// TenantUser is a dashboard user scoped to one tenant. Email is unique per
// tenant, not globally.
type TenantUser struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	TenantID uint `gorm:"uniqueIndex:idx_tenant_user_email,priority:1;not null" json:"tenant_id"`

	Nome         string `gorm:"size:128;not null" json:"nome"`
	Email        string `gorm:"uniqueIndex:idx_tenant_user_email,priority:2;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// Role: "admin", "gestor" or "viewer".
	Role string `gorm:"size:16;default:viewer" json:"role"`

	Ativo        bool       `gorm:"default:true" json:"ativo"`
	UltimoAcesso *time.Time `json:"ultimo_acesso,omitempty"`
}

// Plan is a subscription tier offered to tenants.
type Plan struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Nome      string  `gorm:"uniqueIndex;size:64;not null" json:"nome"`
	Descricao string  `gorm:"size:255" json:"descricao"`
	Preco     float64 `gorm:"not null;default:0" json:"preco"`
	MaxUsers  int     `gorm:"not null;default:0" json:"max_users"`
	Ativo     bool    `gorm:"default:true" json:"ativo"`
}

// SystemConfig is the singleton row holding installation-wide settings,
// currently the payment-provider credentials.
type SystemConfig struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UpdatedAt time.Time `json:"updated_at"`

	MercadoPagoEnabled     bool   `gorm:"default:false" json:"mercadopago_enabled"`
	MercadoPagoAccessToken string `gorm:"size:255" json:"mercadopago_access_token"`
	MercadoPagoPublicKey   string `gorm:"size:255" json:"mercadopago_public_key"`
}
