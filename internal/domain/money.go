package domain

import "github.com/shopspring/decimal"

var (
	// FeeRate 平台服务费，固定 10%，不按活动配置
	FeeRate = decimal.RequireFromString("0.10")
	// MinimumPayout 最低提现金额
	MinimumPayout = decimal.RequireFromString("10.00")

	netRate = decimal.NewFromInt(1).Sub(FeeRate)
)

// Gross price × quantity
func Gross(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

// Net 扣除服务费后的金额；不做舍入，展示层自行 StringFixed(2)
func Net(gross decimal.Decimal) decimal.Decimal {
	return gross.Mul(netRate)
}
