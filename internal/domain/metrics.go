package domain

// Report types for the metrics endpoints. Monetary values are whatever
// currency the panel's cards carry; rates are percentages (0-100); durations
// are days for sales cycles and minutes for response times.

type FunnelStage struct {
	Stage          string  `json:"stage"`
	StageID        string  `json:"stageId"`
	Leads          int     `json:"leads"`
	Value          float64 `json:"value"`
	ConversionRate float64 `json:"conversionRate"`
	AverageTime    float64 `json:"averageTime"`
}

type FunnelReport struct {
	Stages                []FunnelStage `json:"stages"`
	TotalLeads            int           `json:"totalLeads"`
	TotalValue            float64       `json:"totalValue"`
	OverallConversionRate float64       `json:"overallConversionRate"`
	Forecast              float64       `json:"forecast"`
}

type SellerRevenue struct {
	SellerID      string  `json:"sellerId"`
	SellerName    string  `json:"sellerName"`
	Revenue       float64 `json:"revenue"`
	Deals         int     `json:"deals"`
	AverageTicket float64 `json:"averageTicket"`
}

type ChannelRevenue struct {
	ChannelID   string  `json:"channelId"`
	ChannelName string  `json:"channelName"`
	Revenue     float64 `json:"revenue"`
	Deals       int     `json:"deals"`
}

type RevenueReport struct {
	TotalRevenue     float64          `json:"totalRevenue"`
	AverageTicket    float64          `json:"averageTicket"`
	ClosedDeals      int              `json:"closedDeals"`
	RevenueBySeller  []SellerRevenue  `json:"revenueBySeller"`
	RevenueByChannel []ChannelRevenue `json:"revenueByChannel"`
}

type StageConversion struct {
	Stage          string  `json:"stage"`
	ConversionRate float64 `json:"conversionRate"`
}

type ConversionReport struct {
	OverallConversionRate float64           `json:"overallConversionRate"`
	AverageSalesCycle     float64           `json:"averageSalesCycle"`
	AverageResponseTime   float64           `json:"averageResponseTime"`
	ConversionByStage     []StageConversion `json:"conversionByStage"`
}

type LossReason struct {
	Reason     string  `json:"reason"`
	Count      int     `json:"count"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type LossStage struct {
	Stage string  `json:"stage"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

type LossReport struct {
	TotalLost      int          `json:"totalLost"`
	TotalValueLost float64      `json:"totalValueLost"`
	LossRate       float64      `json:"lossRate"`
	LossByReason   []LossReason `json:"lossByReason"`
	LossByStage    []LossStage  `json:"lossByStage"`
}

type DashboardSummary struct {
	TotalLeads     int     `json:"totalLeads"`
	TotalValue     float64 `json:"totalValue"`
	ClosedDeals    int     `json:"closedDeals"`
	TotalRevenue   float64 `json:"totalRevenue"`
	ConversionRate float64 `json:"conversionRate"`
	AverageTicket  float64 `json:"averageTicket"`
}

type DashboardReport struct {
	Summary    DashboardSummary `json:"summary"`
	Funnel     FunnelReport     `json:"funnel"`
	Revenue    RevenueReport    `json:"revenue"`
	Conversion ConversionReport `json:"conversion"`
	Loss       LossReport       `json:"loss"`
}

// MetricsFilters is the query surface shared by all metrics endpoints.
type MetricsFilters struct {
	PanelID   string `json:"panelId" validate:"required"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
	UserID    string `json:"userId,omitempty"`
	ChannelID string `json:"channelId,omitempty"`
	StepID    string `json:"stepId,omitempty"`
}
