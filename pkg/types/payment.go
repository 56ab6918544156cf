package types

// Payment channels accepted on a Payment.
const (
	ChannelAlipay = "alipay"
	ChannelWechat = "wechat"
	ChannelCard   = "card"
	ChannelApple  = "apple"
)

// Payment is a recharge order placed by a user.
type Payment struct {
	Base
	OrderNo string  `json:"order_no" validate:"required"`
	UserID  string  `json:"user_id" validate:"required"`
	Amount  float64 `json:"amount" validate:"gt=0"`
	Channel string  `json:"channel" validate:"omitempty,oneof=alipay wechat card apple"`
	PaidAt  string  `json:"paid_at"`
}

// Agent is a reseller who recruits anchors and earns commission.
type Agent struct {
	Base
	Name       string  `json:"name" validate:"required,max=64"`
	Contact    string  `json:"contact"`
	Region     string  `json:"region"`
	Commission float64 `json:"commission" validate:"gte=0,lte=100"` // Percent.
}

// Bank is a withdrawal bank entry.
type Bank struct {
	Base
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required,max=16"`
	AccountName string `json:"account_name"`
}
