package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
)

// rotateByDay rotates the slice left by dayOfYear modulo its length. Every
// article leads the slider on a predictable schedule without any stored state,
// and the order is stable for the whole day.
func rotateByDay(articles []*domain.Article, now time.Time) []*domain.Article {
	n := len(articles)
	if n < 2 {
		return articles
	}

	offset := now.YearDay() % n

	rotated := make([]*domain.Article, 0, n)
	rotated = append(rotated, articles[offset:]...)
	rotated = append(rotated, articles[:offset]...)

	return rotated
}

// promotedArticles filters PUBLISHED articles down to the ones holding an
// active promotion of the plan, preserving the repository's id order.
func promotedArticles(articles []*domain.Article, plan domain.PlanType, now time.Time) []*domain.Article {
	promoted := make([]*domain.Article, 0, len(articles))

	for _, article := range articles {
		if article.HasActivePromotion(plan, now) {
			promoted = append(promoted, article)
		}
	}

	return promoted
}

func (app *Application) sliderArticles(ctx context.Context, plan domain.PlanType, categorySlug string) ([]*domain.Article, error) {
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
		return nil, err
	}

	now := app.clock.Now()

	return rotateByDay(promotedArticles(articles, plan, now), now), nil
}

func (app *Application) GetMainSliderHandler(w http.ResponseWriter, r *http.Request) {
	articles, err := app.sliderArticles(r.Context(), domain.PlanMainSlider, "")
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeArticleList(w, r, articles, nil)
}

func (app *Application) GetCategorySliderHandler(w http.ResponseWriter, r *http.Request) {
	slug := app.readStringParam(r, "slug")

	_, err := app.categoryRepo.GetBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	articles, err := app.sliderArticles(r.Context(), domain.PlanCategorySlider, slug)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeArticleList(w, r, articles, nil)
}

// GetFeaturedArticlesHandler lists the articles holding an active slider-tier
// promotion, rotated on the same daily schedule as the sliders themselves.
func (app *Application) GetFeaturedArticlesHandler(w http.ResponseWriter, r *http.Request) {
	articles, err := app.articleRepo.GetByStatus(r.Context(), domain.ArticleStatusPublished)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	now := app.clock.Now()

	featured := make([]*domain.Article, 0, len(articles))
	for _, article := range articles {
		if article.HasActivePromotion(domain.PlanMainSlider, now) ||
			article.HasActivePromotion(domain.PlanCategorySlider, now) {
			featured = append(featured, article)
		}
	}

	app.writeArticleList(w, r, rotateByDay(featured, now), nil)
}

func (app *Application) writeArticleList(w http.ResponseWriter, r *http.Request, articles []*domain.Article, metadata *domain.Metadata) {
	resp := api.ArticleListResponse{
		Articles: make([]api.ArticleResponse, 0, len(articles)),
	}

	now := app.clock.Now()
	for _, article := range articles {
		resp.Articles = append(resp.Articles, app.toArticleResponse(article, now))
	}

	if metadata != nil {
		resp.Metadata = &api.Metadata{
			CurrentPage:  metadata.CurrentPage,
			FirstPage:    metadata.FirstPage,
			LastPage:     metadata.LastPage,
			PageSize:     metadata.PageSize,
			TotalRecords: metadata.TotalRecords,
		}
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
