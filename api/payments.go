package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreatePaymentRequest struct {
	PaymentId string `json:"paymentId" validate:"required"`
	Username  string `json:"username" validate:"required"`
	PlanType  string `json:"planType" validate:"required,oneof=STANDARD CATEGORY_SLIDER MAIN_SLIDER"`
}

type CreatePaymentResponse struct {
	PaymentId string            `json:"paymentId"`
	Amount    decimal.Decimal   `json:"amount"`
	Memo      string            `json:"memo"`
	Metadata  map[string]string `json:"metadata"`
}

type ApprovePaymentRequest struct {
	PaymentId string `json:"paymentId" validate:"required"`
}

type CompletePaymentRequest struct {
	PaymentId string `json:"paymentId" validate:"required"`
	Txid      string `json:"txid" validate:"required"`
	ArticleId *int64 `json:"articleId,omitempty"`
}

type CompletePaymentResponse struct {
	PaymentId    string     `json:"paymentId"`
	ArticleId    int64      `json:"articleId"`
	PlanType     string     `json:"planType"`
	ExpirationAt *time.Time `json:"expirationAt,omitempty"`
}

type AttachArticleRequest struct {
	ArticleId int64 `json:"articleId" validate:"required"`
}

type PaymentResponse struct {
	PaymentId    string     `json:"paymentId"`
	Username     string     `json:"username"`
	PlanType     string     `json:"planType"`
	Status       string     `json:"status"`
	Txid         *string    `json:"txid,omitempty"`
	Sandbox      bool       `json:"sandbox"`
	ArticleId    *int64     `json:"articleId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
	ExpirationAt *time.Time `json:"expirationAt,omitempty"`
}

type ActivePlanResponse struct {
	PlanType     string     `json:"planType"`
	ExpirationAt *time.Time `json:"expirationAt,omitempty"`
}

type ActivatePlanRequest struct {
	ArticleId    int64  `json:"articleId" validate:"required"`
	PlanType     string `json:"planType" validate:"required,oneof=STANDARD CATEGORY_SLIDER MAIN_SLIDER"`
	CategorySlug string `json:"categorySlug,omitempty"`
}

type ActivatePlanResponse struct {
	Message      string     `json:"message"`
	ExpirationAt *time.Time `json:"expirationAt,omitempty"`
}

type CancelSubscriptionRequest struct {
	PlanType string `json:"planType" validate:"required,oneof=STANDARD CATEGORY_SLIDER MAIN_SLIDER"`
}

type SlotAvailabilityResponse struct {
	Available      bool            `json:"available"`
	UsedSlots      int             `json:"usedSlots"`
	RemainingSlots int             `json:"remainingSlots"`
	TotalSlots     int             `json:"totalSlots"`
	Unlimited      bool            `json:"unlimited"`
	CategoryName   *string         `json:"categoryName,omitempty"`
	Price          decimal.Decimal `json:"price"`
}

type PlanPricesResponse struct {
	PiPriceUsd     decimal.Decimal `json:"piPriceUsd"`
	Standard       decimal.Decimal `json:"STANDARD"`
	CategorySlider decimal.Decimal `json:"CATEGORY_SLIDER"`
	MainSlider     decimal.Decimal `json:"MAIN_SLIDER"`
}
