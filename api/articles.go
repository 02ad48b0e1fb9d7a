package api

import "time"

type CategoryRef struct {
	Name string `json:"name" validate:"required"`
	Slug string `json:"slug,omitempty"`
}

type ArticleRequest struct {
	App         string      `json:"app" validate:"max=100"`
	Company     string      `json:"company" validate:"max=100"`
	Title       string      `json:"title" validate:"required,max=200"`
	Description string      `json:"description" validate:"max=500"`
	Content     string      `json:"content" validate:"required"`
	HeaderImage *string     `json:"headerImage,omitempty"`
	PromoVideo  *string     `json:"promoVideo,omitempty"`
	Category    CategoryRef `json:"category" validate:"required"`
	Status      string      `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PENDING_APPROVAL PUBLISHED REJECTED"`
	PaymentId   *string     `json:"paymentId,omitempty"`
}

type ActivePlan struct {
	PlanType     string     `json:"planType"`
	ExpirationAt *time.Time `json:"expirationAt,omitempty"`
	Cancelled    bool       `json:"cancelled"`
}

type ArticleResponse struct {
	Id              int64        `json:"id"`
	App             string       `json:"app"`
	Company         string       `json:"company"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Content         string       `json:"content"`
	HeaderImage     *string      `json:"headerImage,omitempty"`
	PromoVideo      *string      `json:"promoVideo,omitempty"`
	Category        CategoryRef  `json:"category"`
	Status          string       `json:"status"`
	PublishDate     *time.Time   `json:"publishDate,omitempty"`
	CreatedBy       string       `json:"createdBy"`
	RejectionReason *string      `json:"rejectionReason,omitempty"`
	ActivePlans     []ActivePlan `json:"activePlans"`
	PlanType        *string      `json:"planType,omitempty"`
	ExpirationAt    *time.Time   `json:"expirationAt,omitempty"`
}

type ArticleListResponse struct {
	Articles []ArticleResponse `json:"articles"`
	Metadata *Metadata         `json:"metadata,omitempty"`
}

type RejectArticleRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
