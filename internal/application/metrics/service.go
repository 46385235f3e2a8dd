// Package metrics computes sales reports over the caller's CRM cards: funnel,
// revenue, conversion, loss and a combined dashboard.
package metrics

import (
	"context"

	"github.com/dashcrm-api/internal/domain"
)

// metricsPageSize pulls a panel's cards in one request; panels in practice
// stay well below this.
const metricsPageSize = 1000

// CardSource is the CRM read surface the reports aggregate over. It is served
// by the crm proxy, so card fetches share its cache.
type CardSource interface {
	Cards(ctx context.Context, accountID string, filters domain.CardFilters) (*domain.CardsPage, error)
	PanelByID(ctx context.Context, accountID, panelID string) (*domain.Panel, error)
}

type Service struct {
	source CardSource
}

func NewService(source CardSource) *Service {
	return &Service{source: source}
}

func (s *Service) Funnel(ctx context.Context, accountID string, filters domain.MetricsFilters) (*domain.FunnelReport, error) {
	panel, cards, err := s.fetch(ctx, accountID, filters)
	if err != nil {
		return nil, err
	}
	report := buildFunnel(panel, cards)
	return &report, nil
}

func (s *Service) Revenue(ctx context.Context, accountID string, filters domain.MetricsFilters) (*domain.RevenueReport, error) {
	_, cards, err := s.fetch(ctx, accountID, filters)
	if err != nil {
		return nil, err
	}
	report := buildRevenue(cards)
	return &report, nil
}

func (s *Service) Conversion(ctx context.Context, accountID string, filters domain.MetricsFilters) (*domain.ConversionReport, error) {
	panel, cards, err := s.fetch(ctx, accountID, filters)
	if err != nil {
		return nil, err
	}
	funnel := buildFunnel(panel, cards)
	report := buildConversion(funnel, cards)
	return &report, nil
}

func (s *Service) Loss(ctx context.Context, accountID string, filters domain.MetricsFilters) (*domain.LossReport, error) {
	_, cards, err := s.fetch(ctx, accountID, filters)
	if err != nil {
		return nil, err
	}
	report := buildLoss(cards)
	return &report, nil
}

// Dashboard builds every report from a single card fetch.
func (s *Service) Dashboard(ctx context.Context, accountID string, filters domain.MetricsFilters) (*domain.DashboardReport, error) {
	panel, cards, err := s.fetch(ctx, accountID, filters)
	if err != nil {
		return nil, err
	}

	funnel := buildFunnel(panel, cards)
	revenue := buildRevenue(cards)
	conversion := buildConversion(funnel, cards)
	loss := buildLoss(cards)

	return &domain.DashboardReport{
		Summary: domain.DashboardSummary{
			TotalLeads:     funnel.TotalLeads,
			TotalValue:     funnel.TotalValue,
			ClosedDeals:    revenue.ClosedDeals,
			TotalRevenue:   revenue.TotalRevenue,
			ConversionRate: funnel.OverallConversionRate,
			AverageTicket:  revenue.AverageTicket,
		},
		Funnel:     funnel,
		Revenue:    revenue,
		Conversion: conversion,
		Loss:       loss,
	}, nil
}

// fetch loads the panel (for stage ordering; a failure there degrades to
// card-derived stages) and the card set the filters select.
func (s *Service) fetch(ctx context.Context, accountID string, filters domain.MetricsFilters) (*domain.Panel, []domain.Card, error) {
	page, err := s.source.Cards(ctx, accountID, domain.CardFilters{
		PanelID:   filters.PanelID,
		StartDate: filters.StartDate,
		EndDate:   filters.EndDate,
		UserID:    filters.UserID,
		ChannelID: filters.ChannelID,
		StepID:    filters.StepID,
		PageSize:  metricsPageSize,
	})
	if err != nil {
		return nil, nil, err
	}

	panel, err := s.source.PanelByID(ctx, accountID, filters.PanelID)
	if err != nil {
		panel = nil
	}
	return panel, page.Items, nil
}
