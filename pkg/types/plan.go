package types

// Plan is a subscription plan entry from the config catalog.
type Plan struct {
	Name string `json:"name" mapstructure:"name"`
	// MonthlyPrice 月度价格，整数货币单位
	MonthlyPrice int64 `json:"monthly_price" mapstructure:"monthly_price"`
	// QuotaSeconds is the metered allotment per period, in canonical seconds.
	QuotaSeconds float64 `json:"quota_seconds" mapstructure:"quota_seconds"`
}
