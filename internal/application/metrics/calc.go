package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/dashcrm-api/internal/domain"
)

// Forecast assumes pipeline value converts at a 20% premium over the
// historical rate, matching how the dashboards have always projected.
const forecastUplift = 1.2

const (
	noStageLabel  = "Sem etapa"
	noSellerLabel = "Sem vendedor"
	noReasonLabel = "Não informado"
)

var closedKeywords = []string{"fechado", "ganho", "won", "closed"}
var lostKeywords = []string{"perdido", "perda", "lost"}

// isClosed reports whether a card represents a won deal, by step phase when
// the panel sets one and by step title keywords otherwise.
func isClosed(c domain.Card) bool {
	if strings.EqualFold(c.StepPhase, "closed") || strings.EqualFold(c.StepPhase, "won") {
		return true
	}
	return titleMatches(c.StepTitle, closedKeywords)
}

func isLost(c domain.Card) bool {
	if strings.EqualFold(c.StepPhase, "lost") {
		return true
	}
	return titleMatches(c.StepTitle, lostKeywords)
}

func titleMatches(title string, keywords []string) bool {
	lower := strings.ToLower(title)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func sumAmount(cards []domain.Card) float64 {
	var total float64
	for _, c := range cards {
		total += c.MonetaryAmount
	}
	return total
}

func percentage(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round2(float64(part) / float64(whole) * 100)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func averageTicket(revenue float64, deals int) float64 {
	if deals == 0 {
		return 0
	}
	return round2(revenue / float64(deals))
}

func parseCardTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// cardAgeDays measures created→updated in fractional days, for cards where
// both timestamps parse and are ordered.
func cardAgeDays(c domain.Card) (float64, bool) {
	created, ok := parseCardTime(c.CreatedAt)
	if !ok {
		return 0, false
	}
	updated, ok := parseCardTime(c.UpdatedAt)
	if !ok || updated.Before(created) {
		return 0, false
	}
	return updated.Sub(created).Hours() / 24, true
}

func buildFunnel(panel *domain.Panel, cards []domain.Card) domain.FunnelReport {
	type bucket struct {
		stage    string
		stageID  string
		position int
		leads    int
		value    float64
		ageSum   float64
		ageCount int
	}

	buckets := make(map[string]*bucket)
	order := make([]string, 0)
	if panel != nil {
		for _, step := range panel.Steps {
			buckets[step.ID] = &bucket{stage: step.Title, stageID: step.ID, position: step.Position}
			order = append(order, step.ID)
		}
	}

	for _, c := range cards {
		key := c.StepID
		b, ok := buckets[key]
		if !ok {
			label := c.StepTitle
			if label == "" {
				label = noStageLabel
			}
			b = &bucket{stage: label, stageID: key, position: len(order)}
			buckets[key] = b
			order = append(order, key)
		}
		b.leads++
		b.value += c.MonetaryAmount
		if age, ok := cardAgeDays(c); ok {
			b.ageSum += age
			b.ageCount++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return buckets[order[i]].position < buckets[order[j]].position
	})

	stages := make([]domain.FunnelStage, 0, len(order))
	previousLeads := 0
	for i, key := range order {
		b := buckets[key]
		rate := 100.0
		if i > 0 {
			if previousLeads == 0 {
				rate = 0
			} else {
				rate = round2(float64(b.leads) / float64(previousLeads) * 100)
			}
		}
		avgTime := 0.0
		if b.ageCount > 0 {
			avgTime = round2(b.ageSum / float64(b.ageCount))
		}
		stages = append(stages, domain.FunnelStage{
			Stage:          b.stage,
			StageID:        b.stageID,
			Leads:          b.leads,
			Value:          round2(b.value),
			ConversionRate: rate,
			AverageTime:    avgTime,
		})
		previousLeads = b.leads
	}

	totalLeads := len(cards)
	closed := 0
	for _, c := range cards {
		if isClosed(c) {
			closed++
		}
	}
	overallRate := percentage(closed, totalLeads)

	var forecast float64
	if totalLeads > 0 {
		averageValue := sumAmount(cards) / float64(totalLeads)
		forecast = round2(averageValue * float64(totalLeads) * (overallRate / 100) * forecastUplift)
	}

	return domain.FunnelReport{
		Stages:                stages,
		TotalLeads:            totalLeads,
		TotalValue:            round2(sumAmount(cards)),
		OverallConversionRate: overallRate,
		Forecast:              forecast,
	}
}

func buildRevenue(cards []domain.Card) domain.RevenueReport {
	closed := make([]domain.Card, 0)
	for _, c := range cards {
		if isClosed(c) {
			closed = append(closed, c)
		}
	}

	totalRevenue := sumAmount(closed)

	type sellerBucket struct {
		id      string
		name    string
		revenue float64
		deals   int
	}
	sellers := make(map[string]*sellerBucket)
	for _, c := range closed {
		id := c.ResponsibleUserID
		name := noSellerLabel
		if c.ResponsibleUser != nil && c.ResponsibleUser.Name != "" {
			name = c.ResponsibleUser.Name
		}
		b, ok := sellers[id]
		if !ok {
			b = &sellerBucket{id: id, name: name}
			sellers[id] = b
		}
		b.revenue += c.MonetaryAmount
		b.deals++
	}

	bySeller := make([]domain.SellerRevenue, 0, len(sellers))
	for _, b := range sellers {
		bySeller = append(bySeller, domain.SellerRevenue{
			SellerID:      b.id,
			SellerName:    b.name,
			Revenue:       round2(b.revenue),
			Deals:         b.deals,
			AverageTicket: averageTicket(b.revenue, b.deals),
		})
	}
	sort.Slice(bySeller, func(i, j int) bool { return bySeller[i].Revenue > bySeller[j].Revenue })

	type channelBucket struct {
		id      string
		revenue float64
		deals   int
	}
	channels := make(map[string]*channelBucket)
	for _, c := range closed {
		id := cardChannel(c)
		b, ok := channels[id]
		if !ok {
			b = &channelBucket{id: id}
			channels[id] = b
		}
		b.revenue += c.MonetaryAmount
		b.deals++
	}

	byChannel := make([]domain.ChannelRevenue, 0, len(channels))
	for _, b := range channels {
		byChannel = append(byChannel, domain.ChannelRevenue{
			ChannelID:   b.id,
			ChannelName: channelName(b.id),
			Revenue:     round2(b.revenue),
			Deals:       b.deals,
		})
	}
	sort.Slice(byChannel, func(i, j int) bool { return byChannel[i].Revenue > byChannel[j].Revenue })

	return domain.RevenueReport{
		TotalRevenue:     round2(totalRevenue),
		AverageTicket:    averageTicket(totalRevenue, len(closed)),
		ClosedDeals:      len(closed),
		RevenueBySeller:  bySeller,
		RevenueByChannel: byChannel,
	}
}

// cardChannel reads the acquisition channel from card metadata; cards imported
// before channels were tracked have none.
func cardChannel(c domain.Card) string {
	for _, source := range []map[string]any{c.Metadata, c.CustomFields} {
		if source == nil {
			continue
		}
		for _, key := range []string{"channelId", "channel"} {
			if v, ok := source[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return ""
}

var channelNames = map[string]string{
	"whatsapp":  "WhatsApp",
	"instagram": "Instagram",
	"facebook":  "Facebook",
	"site":      "Site",
	"indicacao": "Indicação",
}

func channelName(id string) string {
	if id == "" {
		return noReasonLabel
	}
	if name, ok := channelNames[strings.ToLower(id)]; ok {
		return name
	}
	return id
}

func buildConversion(funnel domain.FunnelReport, cards []domain.Card) domain.ConversionReport {
	byStage := make([]domain.StageConversion, 0, len(funnel.Stages))
	for _, s := range funnel.Stages {
		byStage = append(byStage, domain.StageConversion{Stage: s.Stage, ConversionRate: s.ConversionRate})
	}

	var cycleSum float64
	cycleCount := 0
	for _, c := range cards {
		if !isClosed(c) {
			continue
		}
		if age, ok := cardAgeDays(c); ok {
			cycleSum += age
			cycleCount++
		}
	}
	avgCycle := 0.0
	if cycleCount > 0 {
		avgCycle = round2(cycleSum / float64(cycleCount))
	}

	// Response time proxies on the first-stage dwell: the gap between card
	// creation and its first movement.
	var responseSum float64
	responseCount := 0
	for _, c := range cards {
		if age, ok := cardAgeDays(c); ok {
			responseSum += age * 24 * 60
			responseCount++
		}
	}
	avgResponse := 0.0
	if responseCount > 0 {
		avgResponse = round2(responseSum / float64(responseCount))
	}

	return domain.ConversionReport{
		OverallConversionRate: funnel.OverallConversionRate,
		AverageSalesCycle:     avgCycle,
		AverageResponseTime:   avgResponse,
		ConversionByStage:     byStage,
	}
}

func buildLoss(cards []domain.Card) domain.LossReport {
	lost := make([]domain.Card, 0)
	for _, c := range cards {
		if isLost(c) {
			lost = append(lost, c)
		}
	}

	type reasonBucket struct {
		count int
		value float64
	}
	reasons := make(map[string]*reasonBucket)
	for _, c := range lost {
		reason := lossReason(c)
		b, ok := reasons[reason]
		if !ok {
			b = &reasonBucket{}
			reasons[reason] = b
		}
		b.count++
		b.value += c.MonetaryAmount
	}

	byReason := make([]domain.LossReason, 0, len(reasons))
	for reason, b := range reasons {
		byReason = append(byReason, domain.LossReason{
			Reason:     reason,
			Count:      b.count,
			Value:      round2(b.value),
			Percentage: percentage(b.count, len(lost)),
		})
	}
	sort.Slice(byReason, func(i, j int) bool { return byReason[i].Count > byReason[j].Count })

	stages := make(map[string]*reasonBucket)
	for _, c := range lost {
		stage := c.StepTitle
		if stage == "" {
			stage = noStageLabel
		}
		b, ok := stages[stage]
		if !ok {
			b = &reasonBucket{}
			stages[stage] = b
		}
		b.count++
		b.value += c.MonetaryAmount
	}

	byStage := make([]domain.LossStage, 0, len(stages))
	for stage, b := range stages {
		byStage = append(byStage, domain.LossStage{Stage: stage, Count: b.count, Value: round2(b.value)})
	}
	sort.Slice(byStage, func(i, j int) bool { return byStage[i].Count > byStage[j].Count })

	return domain.LossReport{
		TotalLost:      len(lost),
		TotalValueLost: round2(sumAmount(lost)),
		LossRate:       percentage(len(lost), len(cards)),
		LossByReason:   byReason,
		LossByStage:    byStage,
	}
}

func lossReason(c domain.Card) string {
	for _, source := range []map[string]any{c.Metadata, c.CustomFields} {
		if source == nil {
			continue
		}
		for _, key := range []string{"lossReason", "motivoPerda", "reason"} {
			if v, ok := source[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return noReasonLabel
}
