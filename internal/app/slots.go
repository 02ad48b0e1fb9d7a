package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
	"github.com/promopress/promopress/internal/pricing"
)

// Slot capacity is fixed per tier: MAIN_SLIDER is a global pool, every
// category gets its own CATEGORY_SLIDER pool, STANDARD is unlimited.
const (
	MainSliderCapacity     = 7
	CategorySliderCapacity = 7
)

// keyedMutex hands out one mutex per slot pool. Holding the pool's lock from
// the availability count through the promotion insert closes the
// check-then-act window between two concurrent completions.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: map[string]*sync.Mutex{},
	}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func slotKey(plan domain.PlanType, categorySlug string) string {
	if plan.RequiresCategory() {
		return fmt.Sprintf("%s|%s", plan, categorySlug)
	}
	return string(plan)
}

func planCapacity(plan domain.PlanType) int {
	switch plan {
	case domain.PlanMainSlider:
		return MainSliderCapacity
	case domain.PlanCategorySlider:
		return CategorySliderCapacity
	default:
		return 0
	}
}

// countUsedSlots counts PUBLISHED articles holding at least one active
// promotion of the plan, scoped to a category for CATEGORY_SLIDER.
func (app *Application) countUsedSlots(ctx context.Context, plan domain.PlanType, categorySlug string) (int, error) {
	var (
		articles []*domain.Article
		err      error
	)

	if plan.RequiresCategory() {
		articles, err = app.articleRepo.GetByCategoryAndStatus(ctx, categorySlug, domain.ArticleStatusPublished)
	} else {
		articles, err = app.articleRepo.GetByStatus(ctx, domain.ArticleStatusPublished)
	}
	if err != nil {
		return 0, err
	}

	now := app.clock.Now()
	used := 0

	for _, article := range articles {
		if article.HasActivePromotion(plan, now) {
			used++
		}
	}

	return used, nil
}

func (app *Application) isSlotAvailable(ctx context.Context, plan domain.PlanType, categorySlug string) (bool, error) {
	if !plan.CapacityLimited() {
		return true, nil
	}

	if plan.RequiresCategory() && categorySlug == "" {
		return false, fmt.Errorf("category slug is required for plan %s", plan)
	}

	used, err := app.countUsedSlots(ctx, plan, categorySlug)
	if err != nil {
		return false, err
	}

	return used < planCapacity(plan), nil
}

func (app *Application) GetSlotAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	plan := domain.PlanType(r.URL.Query().Get("planType"))
	if !plan.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("planType must be one of STANDARD, CATEGORY_SLIDER, MAIN_SLIDER"))
		return
	}

	categorySlug := r.URL.Query().Get("categorySlug")
	if plan.RequiresCategory() && categorySlug == "" {
		app.badRequestResponse(w, r, fmt.Errorf("categorySlug is required for plan %s", plan))
		return
	}

	rate, err := app.priceSource.CurrentPriceUSD(r.Context())
	if err != nil {
		app.priceUnavailableResponse(w, r, err)
		return
	}

	resp := api.SlotAvailabilityResponse{
		Price: pricing.PlanPricePi(plan, rate),
	}

	if !plan.CapacityLimited() {
		resp.Available = true
		resp.Unlimited = true

		err = app.writeJSON(w, http.StatusOK, resp, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	if plan.RequiresCategory() {
		category, err := app.categoryRepo.GetBySlug(r.Context(), categorySlug)
		if err != nil {
			if errors.Is(err, domain.ErrRecordNotFound) {
				app.notFoundResponseWithErr(w, r, fmt.Errorf("category %q not found", categorySlug))
				return
			}
			app.serverErrorResponse(w, r, err)
			return
		}
		resp.CategoryName = &category.Name
	}

	used, err := app.countUsedSlots(r.Context(), plan, categorySlug)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	total := planCapacity(plan)
	remaining := max(0, total-used)

	resp.UsedSlots = used
	resp.RemainingSlots = remaining
	resp.TotalSlots = total
	resp.Available = remaining > 0

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetPlanPricesHandler(w http.ResponseWriter, r *http.Request) {
	prices, err := pricing.PlanPricesPi(r.Context(), app.priceSource)
	if err != nil {
		app.priceUnavailableResponse(w, r, err)
		return
	}

	resp := api.PlanPricesResponse{
		PiPriceUsd:     prices.PiPriceUSD,
		Standard:       prices.Standard,
		CategorySlider: prices.CategorySlider,
		MainSlider:     prices.MainSlider,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
