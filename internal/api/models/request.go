package models

import "mining-pnl/internal/config"

// ProjectionRequest is a projection config in the config file's JSON shape,
// plus response options. Fleet source_csv names resolve under the server's
// reference directory.
type ProjectionRequest struct {
	config.Config
	Options ProjectionOptions `json:"options,omitempty"`
}

// ProjectionOptions selects optional response sections
type ProjectionOptions struct {
	IncludeMonthly bool `json:"include_monthly,omitempty"` // default: false
	IncludeAnnual  bool `json:"include_annual,omitempty"`  // default: false
}

// ModelsQuery is the query string of GET /api/v1/models
type ModelsQuery struct {
	Source string `form:"source"` // empty lists the available sources
}
