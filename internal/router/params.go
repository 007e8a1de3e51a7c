package router

import (
	"github.com/lexmitra/lexmitra/backend/pkg/models"
)

// ModelParams are the generation parameters for one (plan, feature)
// cell. They are looked up from the closed table below and never taken
// from the request payload, so a caller cannot escalate their tier by
// shaping the request.
type ModelParams struct {
	Allowed     bool
	MaxTokens   int
	Temperature float64
}

const (
	chatMaxTokens  = 2000
	draftMaxTokens = 4096

	chatTemperature  = 0.7
	draftTemperature = 0.3
)

// entitlements is the closed Plan × Feature table. FREE and BASIC reach
// the AI model only for chat and summarization; PLUS and PRO unlock AI
// drafting with the larger token budget and lower temperature.
var entitlements = map[models.Plan]map[models.Feature]ModelParams{
	models.PlanFree: {
		models.FeatureChat:      {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureSummarize: {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureDrafting:  {Allowed: false},
	},
	models.PlanBasic: {
		models.FeatureChat:      {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureSummarize: {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureDrafting:  {Allowed: false},
	},
	models.PlanPlus: {
		models.FeatureChat:      {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureSummarize: {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureDrafting:  {Allowed: true, MaxTokens: draftMaxTokens, Temperature: draftTemperature},
	},
	models.PlanPro: {
		models.FeatureChat:      {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureSummarize: {Allowed: true, MaxTokens: chatMaxTokens, Temperature: chatTemperature},
		models.FeatureDrafting:  {Allowed: true, MaxTokens: draftMaxTokens, Temperature: draftTemperature},
	},
}

// dailyCeilings caps AI calls per feature per day for metered plans.
// A zero value means unmetered.
var dailyCeilings = map[models.Plan]int{
	models.PlanFree:  10,
	models.PlanBasic: 100,
	models.PlanPlus:  0,
	models.PlanPro:   0,
}

// Lookup returns the parameters for (plan, feature). Unknown plans get
// the FREE row; unknown features are not allowed.
func Lookup(plan models.Plan, feature models.Feature) ModelParams {
	row, ok := entitlements[plan]
	if !ok {
		row = entitlements[models.PlanFree]
	}
	return row[feature]
}

// DailyCeiling returns the per-day AI call ceiling for a plan, 0 when
// unmetered.
func DailyCeiling(plan models.Plan) int {
	return dailyCeilings[plan]
}
