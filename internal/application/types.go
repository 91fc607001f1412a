package application

import (
	"time"

	"github.com/luminacare/pipeline-service/internal/ports"
)

type Config struct {
	ServiceName          string
	LeaderboardCacheTTL  time.Duration
	LeaderboardWindow    time.Duration
	OutboxFlushBatchSize int
	OutboxFlushInterval  time.Duration
}

type Actor struct {
	SubjectID string
	Role      string
	RequestID string
}

type CreateStageInput struct {
	RegistryID  string
	Name        string
	Slug        string
	Description string
	Color       string
}

type ReorderStageInput struct {
	StageID     string
	TargetIndex int
}

type CreateLeadInput struct {
	RegistryID          string
	Name                string
	StageID             string
	EstimatedValue      string
	AssignedAffiliateID string
}

type MoveLeadInput struct {
	LeadID  string
	StageID string
}

type CreateOrderInput struct {
	PatientID string
	Total     string
}

type TransitionOrderInput struct {
	OrderID   string
	NewStatus string
}

type AttachTrackingInput struct {
	OrderID string
	Kind    string
	Code    string
}

type Service struct {
	cfg Config

	stages      ports.StageRepository
	leads       ports.LeadRepository
	leadHistory ports.LeadStageHistoryRepository
	orders      ports.OrderRepository

	prescriptions ports.PrescriptionRepository
	approvals     ports.RegulatoryApprovalRepository
	affiliates    ports.AffiliateRepository
	stats         ports.AffiliateStatsRepository

	outbox      ports.OutboxRepository
	leaderboard ports.LeaderboardCache

	domainEvents ports.DomainPublisher
	analytics    ports.AnalyticsPublisher
	dlq          ports.DLQPublisher

	nowFn func() time.Time
}

type Dependencies struct {
	Config Config

	Stages      ports.StageRepository
	Leads       ports.LeadRepository
	LeadHistory ports.LeadStageHistoryRepository
	Orders      ports.OrderRepository

	Prescriptions ports.PrescriptionRepository
	Approvals     ports.RegulatoryApprovalRepository
	Affiliates    ports.AffiliateRepository
	Stats         ports.AffiliateStatsRepository

	Outbox      ports.OutboxRepository
	Leaderboard ports.LeaderboardCache

	DomainEvents ports.DomainPublisher
	Analytics    ports.AnalyticsPublisher
	DLQ          ports.DLQPublisher
}

func NewService(deps Dependencies) *Service {
	cfg := deps.Config
	if cfg.ServiceName == "" {
		cfg.ServiceName = "pipeline-service"
	}
	if cfg.LeaderboardCacheTTL <= 0 {
		cfg.LeaderboardCacheTTL = 5 * time.Minute
	}
	if cfg.LeaderboardWindow <= 0 {
		cfg.LeaderboardWindow = 30 * 24 * time.Hour
	}
	if cfg.OutboxFlushBatchSize <= 0 {
		cfg.OutboxFlushBatchSize = 100
	}
	if cfg.OutboxFlushInterval <= 0 {
		cfg.OutboxFlushInterval = 2 * time.Second
	}
	return &Service{
		cfg:           cfg,
		stages:        deps.Stages,
		leads:         deps.Leads,
		leadHistory:   deps.LeadHistory,
		orders:        deps.Orders,
		prescriptions: deps.Prescriptions,
		approvals:     deps.Approvals,
		affiliates:    deps.Affiliates,
		stats:         deps.Stats,
		outbox:        deps.Outbox,
		leaderboard:   deps.Leaderboard,
		domainEvents:  deps.DomainEvents,
		analytics:     deps.Analytics,
		dlq:           deps.DLQ,
		nowFn:         func() time.Time { return time.Now().UTC() },
	}
}
