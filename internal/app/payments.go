package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
	"github.com/promopress/promopress/internal/pricing"
)

// renewalPeriod is how long one completed payment extends a capacity-limited
// promotion. Renewals stack on top of the previous expiration, not on the
// payment date.
const renewalPeriod = 30 * 24 * time.Hour

func (app *Application) CreatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePaymentRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	identity := app.contextGetIdentity(r)
	if req.Username != identity.Username {
		app.forbiddenResponse(w, r)
		return
	}

	plan := domain.PlanType(req.PlanType)

	rate, err := app.priceSource.CurrentPriceUSD(r.Context())
	if err != nil {
		app.priceUnavailableResponse(w, r, err)
		return
	}

	amount := pricing.PlanPricePi(plan, rate)

	payment := &domain.Payment{
		PaymentID: req.PaymentId,
		Username:  identity.Username,
		PlanType:  plan,
		Status:    domain.PaymentStatusCreated,
		Sandbox:   app.config.Pi.Sandbox,
		CreatedAt: app.clock.Now(),
	}

	err = app.paymentRepo.Create(r.Context(), payment)
	if err != nil {
		if errors.Is(err, domain.ErrPaymentAlreadyExists) {
			app.editConflictResponseWithErr(w, r, fmt.Errorf("payment %s already exists", req.PaymentId))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.CreatePaymentResponse{
		PaymentId: payment.PaymentID,
		Amount:    amount,
		Memo:      fmt.Sprintf("PromoPress %s promotion", plan),
		Metadata: map[string]string{
			"planType": string(plan),
			"username": identity.Username,
		},
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) ApprovePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ApprovePaymentRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment, ok := app.loadOwnedPayment(w, r, req.PaymentId)
	if !ok {
		return
	}

	if payment.Status == domain.PaymentStatusCompleted {
		app.editConflictResponseWithErr(w, r,
			fmt.Errorf("payment %s is already completed and cannot be approved", payment.PaymentID))
		return
	}

	// The client SDK retries approval callbacks, so re-approving is a no-op.
	if payment.Status == domain.PaymentStatusApproved {
		err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	now := app.clock.Now()
	payment.Status = domain.PaymentStatusApproved
	payment.ApprovedAt = &now

	err = app.paymentRepo.Update(r.Context(), payment)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			app.editConflictResponseWithErr(w, r, fmt.Errorf("payment %s was modified concurrently", payment.PaymentID))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CompletePaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req api.CompletePaymentRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment, ok := app.loadOwnedPayment(w, r, req.PaymentId)
	if !ok {
		return
	}

	completed, err := app.completePayment(r.Context(), payment, req.Txid, req.ArticleId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPaymentStateConflict):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrNoSlotsAvailable):
			app.slotsExhaustedResponse(w, r, string(payment.PlanType))
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.CompletePaymentResponse{
		PaymentId:    completed.PaymentID,
		ArticleId:    *completed.ArticleID,
		PlanType:     string(completed.PlanType),
		ExpirationAt: completed.ExpirationAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// completePayment confirms the transfer and grants the promotion. The slot
// check runs before the payment flips to COMPLETED, under the pool's lock, so
// a full pool rejects the completion instead of stranding an unusable payment.
func (app *Application) completePayment(ctx context.Context, payment *domain.Payment, txid string, articleID *int64) (*domain.Payment, error) {
	if payment.Status == domain.PaymentStatusCompleted {
		return nil, fmt.Errorf("%w: payment %s is already completed", domain.ErrPaymentStateConflict, payment.PaymentID)
	}

	article, err := app.resolveTargetArticle(ctx, payment, articleID)
	if err != nil {
		return nil, err
	}

	plan := payment.PlanType
	now := app.clock.Now()

	if plan.CapacityLimited() {
		unlock := app.slotLocks.lock(slotKey(plan, article.CategorySlug))
		defer unlock()

		// A renewal keeps the slot it already holds, so only first-time grants
		// count against capacity.
		if !article.HasActivePromotion(plan, now) {
			available, err := app.isSlotAvailable(ctx, plan, article.CategorySlug)
			if err != nil {
				return nil, err
			}
			if !available {
				return nil, fmt.Errorf("%w: plan %s has no free slots", domain.ErrNoSlotsAvailable, plan)
			}
		}
	}

	var expirationAt *time.Time
	if plan.CapacityLimited() {
		base := now
		prior, err := app.paymentRepo.GetLatestCompletedByArticle(ctx, article.ID, plan)
		if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
			return nil, err
		}
		if err == nil && prior.ExpirationAt != nil && prior.ExpirationAt.After(now) {
			base = *prior.ExpirationAt
		}
		exp := base.Add(renewalPeriod)
		expirationAt = &exp
	}

	promotion := &domain.Promotion{
		ArticleID:    article.ID,
		Type:         plan,
		ExpirationAt: expirationAt,
	}

	err = app.articleRepo.AddPromotion(ctx, promotion)
	if err != nil {
		return nil, err
	}

	payment.Status = domain.PaymentStatusCompleted
	payment.Txid = &txid
	payment.CompletedAt = &now
	payment.ArticleID = &article.ID
	payment.ExpirationAt = expirationAt

	err = app.paymentRepo.Update(ctx, payment)
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// resolveTargetArticle picks the article the payment funds: the one named in
// the request, the one already attached, or a fresh draft in the default
// category when the buyer paid before writing anything.
func (app *Application) resolveTargetArticle(ctx context.Context, payment *domain.Payment, articleID *int64) (*domain.Article, error) {
	if articleID == nil {
		articleID = payment.ArticleID
	}

	if articleID != nil {
		article, err := app.articleRepo.GetById(ctx, *articleID)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: article %d not found", domain.ErrRecordNotFound, *articleID)
			}
			return nil, err
		}
		return article, nil
	}

	category, err := app.categoryRepo.GetBySlug(ctx, domain.DefaultCategorySlug)
	if err != nil {
		return nil, err
	}

	article := &domain.Article{
		Title:      "Untitled",
		Content:    "",
		CategoryID: category.ID,
		Status:     domain.ArticleStatusDraft,
		CreatedBy:  payment.Username,
	}

	err = app.articleRepo.Create(ctx, article)
	if err != nil {
		return nil, err
	}

	article.CategoryName = category.Name
	article.CategorySlug = category.Slug

	return article, nil
}

func (app *Application) AttachArticleHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := app.readStringParam(r, "paymentId")

	var req api.AttachArticleRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	payment, ok := app.loadOwnedPayment(w, r, paymentID)
	if !ok {
		return
	}

	article, err := app.articleRepo.GetById(r.Context(), req.ArticleId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, fmt.Errorf("article %d not found", req.ArticleId))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	identity := app.contextGetIdentity(r)
	if article.CreatedBy != identity.Username && identity.Role != domain.RoleAdmin {
		app.forbiddenResponse(w, r)
		return
	}

	payment.ArticleID = &article.ID

	err = app.paymentRepo.Update(r.Context(), payment)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPaymentHandler(w http.ResponseWriter, r *http.Request) {
	paymentID := app.readStringParam(r, "paymentId")

	payment, ok := app.loadOwnedPayment(w, r, paymentID)
	if !ok {
		return
	}

	err := app.writeJSON(w, http.StatusOK, toPaymentResponse(payment), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPaymentByArticleHandler(w http.ResponseWriter, r *http.Request) {
	articleID, err := app.readIDParam(r, "articleId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	payments, err := app.paymentRepo.GetByArticleID(r.Context(), articleID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if len(payments) == 0 {
		app.notFoundResponse(w, r)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toPaymentResponse(payments[0]), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetActivePlanHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.contextGetIdentity(r)

	payment, err := app.paymentRepo.GetLatestCompletedByUser(r.Context(), identity.Username)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, errors.New("no active plan"))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	if payment.ExpirationAt != nil && !payment.ExpirationAt.After(app.clock.Now()) {
		app.notFoundResponseWithErr(w, r, errors.New("no active plan"))
		return
	}

	resp := api.ActivePlanResponse{
		PlanType:     string(payment.PlanType),
		ExpirationAt: payment.ExpirationAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// ActivatePlanHandler grants a plan to an article through the normal slot
// rules and records a synthetic completed payment so the grant shows up in the
// owner's plan history.
func (app *Application) ActivatePlanHandler(w http.ResponseWriter, r *http.Request) {
	app.activatePlan(w, r, true)
}

// ActivateWithoutPaymentHandler grants a promotion unconditionally, ignoring
// capacity and leaving no payment record. Meant for migrations and make-goods.
func (app *Application) ActivateWithoutPaymentHandler(w http.ResponseWriter, r *http.Request) {
	app.activatePlan(w, r, false)
}

func (app *Application) activatePlan(w http.ResponseWriter, r *http.Request, withPayment bool) {
	var req api.ActivatePlanRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	plan := domain.PlanType(req.PlanType)

	article, err := app.articleRepo.GetById(r.Context(), req.ArticleId)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, fmt.Errorf("article %d not found", req.ArticleId))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	// The slug is optional; when the caller names one it must match the
	// article, since the promotion always lands in the article's own pool.
	if req.CategorySlug != "" && req.CategorySlug != article.CategorySlug {
		app.badRequestResponse(w, r, fmt.Errorf("article %d belongs to category %q, not %q", article.ID, article.CategorySlug, req.CategorySlug))
		return
	}

	now := app.clock.Now()

	if plan.CapacityLimited() {
		unlock := app.slotLocks.lock(slotKey(plan, article.CategorySlug))
		defer unlock()

		if withPayment && !article.HasActivePromotion(plan, now) {
			available, err := app.isSlotAvailable(r.Context(), plan, article.CategorySlug)
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
			if !available {
				app.slotsExhaustedResponse(w, r, string(plan))
				return
			}
		}
	}

	var expirationAt *time.Time
	if plan.CapacityLimited() {
		exp := now.Add(renewalPeriod)
		expirationAt = &exp
	}

	promotion := &domain.Promotion{
		ArticleID:    article.ID,
		Type:         plan,
		ExpirationAt: expirationAt,
	}

	err = app.articleRepo.AddPromotion(r.Context(), promotion)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if withPayment {
		payment := &domain.Payment{
			PaymentID:    "manual-" + uuid.NewString(),
			Username:     article.CreatedBy,
			PlanType:     plan,
			Status:       domain.PaymentStatusCompleted,
			Sandbox:      app.config.Pi.Sandbox,
			ArticleID:    &article.ID,
			CreatedAt:    now,
			CompletedAt:  &now,
			ExpirationAt: expirationAt,
		}

		err = app.paymentRepo.Create(r.Context(), payment)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	resp := api.ActivatePlanResponse{
		Message:      fmt.Sprintf("Plan %s activated for article %d", plan, article.ID),
		ExpirationAt: expirationAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CancelSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	articleID, err := app.readIDParam(r, "articleId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var req api.CancelSubscriptionRequest

	err = app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	article, err := app.articleRepo.GetById(r.Context(), articleID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	identity := app.contextGetIdentity(r)
	if article.CreatedBy != identity.Username && identity.Role != domain.RoleAdmin {
		app.forbiddenResponse(w, r)
		return
	}

	plan := domain.PlanType(req.PlanType)

	cancelled, err := app.articleRepo.CancelPromotions(r.Context(), articleID, plan)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if cancelled == 0 {
		app.notFoundResponseWithErr(w, r, fmt.Errorf("article %d has no %s promotions", articleID, plan))
		return
	}

	resp := api.MessageResponse{
		Message: fmt.Sprintf("Cancelled %d %s promotion(s) for article %d", cancelled, plan, articleID),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// loadOwnedPayment fetches the payment and enforces that the caller owns it or
// is an admin, writing the error response itself when either fails.
func (app *Application) loadOwnedPayment(w http.ResponseWriter, r *http.Request, paymentID string) (*domain.Payment, bool) {
	payment, err := app.paymentRepo.GetByPaymentID(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, fmt.Errorf("payment %s not found", paymentID))
			return nil, false
		}
		app.serverErrorResponse(w, r, err)
		return nil, false
	}

	identity := app.contextGetIdentity(r)
	if payment.Username != identity.Username && identity.Role != domain.RoleAdmin {
		app.forbiddenResponse(w, r)
		return nil, false
	}

	return payment, true
}

func toPaymentResponse(payment *domain.Payment) api.PaymentResponse {
	return api.PaymentResponse{
		PaymentId:    payment.PaymentID,
		Username:     payment.Username,
		PlanType:     string(payment.PlanType),
		Status:       string(payment.Status),
		Txid:         payment.Txid,
		Sandbox:      payment.Sandbox,
		ArticleId:    payment.ArticleID,
		CreatedAt:    payment.CreatedAt,
		CompletedAt:  payment.CompletedAt,
		ExpirationAt: payment.ExpirationAt,
	}
}
