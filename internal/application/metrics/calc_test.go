package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dashcrm-api/internal/domain"
)

func ts(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func salesPanel() *domain.Panel {
	return &domain.Panel{
		ID:   "p1",
		Name: "Vendas",
		Steps: []domain.PanelStep{
			{ID: "s1", Title: "Novo lead", Position: 0},
			{ID: "s2", Title: "Proposta", Position: 1},
			{ID: "s3", Title: "Fechado ganho", Phase: "closed", Position: 2},
		},
	}
}

func salesCards() []domain.Card {
	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	return []domain.Card{
		{ID: "c1", StepID: "s1", StepTitle: "Novo lead", MonetaryAmount: 1000,
			CreatedAt: ts(base), UpdatedAt: ts(base.Add(24 * time.Hour))},
		{ID: "c2", StepID: "s1", StepTitle: "Novo lead", MonetaryAmount: 2000,
			CreatedAt: ts(base), UpdatedAt: ts(base.Add(48 * time.Hour))},
		{ID: "c3", StepID: "s2", StepTitle: "Proposta", MonetaryAmount: 3000,
			CreatedAt: ts(base), UpdatedAt: ts(base.Add(24 * time.Hour))},
		{ID: "c4", StepID: "s3", StepTitle: "Fechado ganho", StepPhase: "closed", MonetaryAmount: 4000,
			CreatedAt: ts(base), UpdatedAt: ts(base.Add(96 * time.Hour)),
			ResponsibleUserID: "u1", ResponsibleUser: &domain.CrmUser{ID: "u1", Name: "Ana"},
			Metadata:          map[string]any{"channel": "whatsapp"}},
	}
}

// --- classification ---

func TestIsClosed_ByPhaseAndTitle(t *testing.T) {
	assert.True(t, isClosed(domain.Card{StepPhase: "closed"}))
	assert.True(t, isClosed(domain.Card{StepPhase: "CLOSED"}))
	assert.True(t, isClosed(domain.Card{StepTitle: "Fechado - ganho"}))
	assert.True(t, isClosed(domain.Card{StepTitle: "Negócio Ganho"}))
	assert.False(t, isClosed(domain.Card{StepTitle: "Proposta"}))
}

func TestIsLost_ByPhaseAndTitle(t *testing.T) {
	assert.True(t, isLost(domain.Card{StepPhase: "lost"}))
	assert.True(t, isLost(domain.Card{StepTitle: "Perdido"}))
	assert.True(t, isLost(domain.Card{StepTitle: "Perda de cliente"}))
	assert.False(t, isLost(domain.Card{StepTitle: "Fechado"}))
}

// --- funnel ---

func TestBuildFunnel(t *testing.T) {
	report := buildFunnel(salesPanel(), salesCards())

	assert.Equal(t, 4, report.TotalLeads)
	assert.InDelta(t, 10000, report.TotalValue, 0.01)
	assert.InDelta(t, 25.0, report.OverallConversionRate, 0.01)

	require.Len(t, report.Stages, 3)
	assert.Equal(t, "Novo lead", report.Stages[0].Stage)
	assert.Equal(t, 2, report.Stages[0].Leads)
	assert.InDelta(t, 100.0, report.Stages[0].ConversionRate, 0.01)
	assert.InDelta(t, 1.5, report.Stages[0].AverageTime, 0.01)

	assert.Equal(t, "Proposta", report.Stages[1].Stage)
	assert.Equal(t, 1, report.Stages[1].Leads)
	assert.InDelta(t, 50.0, report.Stages[1].ConversionRate, 0.01)

	assert.Equal(t, "Fechado ganho", report.Stages[2].Stage)
	assert.InDelta(t, 100.0, report.Stages[2].ConversionRate, 0.01)

	// forecast = avgValue(2500) * leads(4) * rate(0.25) * 1.2
	assert.InDelta(t, 3000.0, report.Forecast, 0.01)
}

func TestBuildFunnel_NoPanel_DerivesStagesFromCards(t *testing.T) {
	cards := []domain.Card{
		{ID: "c1", StepID: "sX", StepTitle: "Triagem"},
		{ID: "c2"},
	}
	report := buildFunnel(nil, cards)

	require.Len(t, report.Stages, 2)
	assert.Equal(t, "Triagem", report.Stages[0].Stage)
	assert.Equal(t, "Sem etapa", report.Stages[1].Stage)
}

func TestBuildFunnel_Empty(t *testing.T) {
	report := buildFunnel(nil, nil)
	assert.Zero(t, report.TotalLeads)
	assert.Zero(t, report.Forecast)
	assert.Empty(t, report.Stages)
}

// --- revenue ---

func TestBuildRevenue(t *testing.T) {
	report := buildRevenue(salesCards())

	assert.Equal(t, 1, report.ClosedDeals)
	assert.InDelta(t, 4000, report.TotalRevenue, 0.01)
	assert.InDelta(t, 4000, report.AverageTicket, 0.01)

	require.Len(t, report.RevenueBySeller, 1)
	assert.Equal(t, "Ana", report.RevenueBySeller[0].SellerName)
	assert.Equal(t, 1, report.RevenueBySeller[0].Deals)

	require.Len(t, report.RevenueByChannel, 1)
	assert.Equal(t, "WhatsApp", report.RevenueByChannel[0].ChannelName)
}

func TestBuildRevenue_NoClosedDeals(t *testing.T) {
	report := buildRevenue([]domain.Card{{ID: "c1", StepTitle: "Proposta", MonetaryAmount: 500}})
	assert.Zero(t, report.ClosedDeals)
	assert.Zero(t, report.TotalRevenue)
	assert.Zero(t, report.AverageTicket)
}

func TestBuildRevenue_SellersSortedByRevenue(t *testing.T) {
	cards := []domain.Card{
		{StepPhase: "closed", MonetaryAmount: 100,
			ResponsibleUserID: "u1", ResponsibleUser: &domain.CrmUser{ID: "u1", Name: "Ana"}},
		{StepPhase: "closed", MonetaryAmount: 900,
			ResponsibleUserID: "u2", ResponsibleUser: &domain.CrmUser{ID: "u2", Name: "Bob"}},
	}
	report := buildRevenue(cards)
	require.Len(t, report.RevenueBySeller, 2)
	assert.Equal(t, "Bob", report.RevenueBySeller[0].SellerName)
}

// --- conversion ---

func TestBuildConversion(t *testing.T) {
	funnel := buildFunnel(salesPanel(), salesCards())
	report := buildConversion(funnel, salesCards())

	assert.InDelta(t, 25.0, report.OverallConversionRate, 0.01)
	assert.InDelta(t, 4.0, report.AverageSalesCycle, 0.01) // only c4 is closed, 4 days
	assert.Len(t, report.ConversionByStage, 3)
	assert.Positive(t, report.AverageResponseTime)
}

// --- loss ---

func TestBuildLoss(t *testing.T) {
	cards := []domain.Card{
		{ID: "c1", StepTitle: "Perdido", MonetaryAmount: 100,
			Metadata: map[string]any{"lossReason": "preço"}},
		{ID: "c2", StepTitle: "Perdido", MonetaryAmount: 300,
			Metadata: map[string]any{"lossReason": "preço"}},
		{ID: "c3", StepTitle: "Perdido", MonetaryAmount: 50},
		{ID: "c4", StepTitle: "Proposta", MonetaryAmount: 1000},
	}
	report := buildLoss(cards)

	assert.Equal(t, 3, report.TotalLost)
	assert.InDelta(t, 450, report.TotalValueLost, 0.01)
	assert.InDelta(t, 75.0, report.LossRate, 0.01)

	require.Len(t, report.LossByReason, 2)
	assert.Equal(t, "preço", report.LossByReason[0].Reason)
	assert.Equal(t, 2, report.LossByReason[0].Count)
	assert.InDelta(t, 66.67, report.LossByReason[0].Percentage, 0.01)
	assert.Equal(t, "Não informado", report.LossByReason[1].Reason)

	require.Len(t, report.LossByStage, 1)
	assert.Equal(t, "Perdido", report.LossByStage[0].Stage)
}

func TestBuildLoss_Empty(t *testing.T) {
	report := buildLoss(nil)
	assert.Zero(t, report.TotalLost)
	assert.Zero(t, report.LossRate)
}
