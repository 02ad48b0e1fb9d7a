package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/domain"
)

// maxContentImages caps embedded images per article. Larger pages break the
// slider layout on low-end devices.
const maxContentImages = 5

func countContentImages(content string) int {
	return strings.Count(content, "<img") + strings.Count(content, "![")
}

func (app *Application) ListArticlesHandler(w http.ResponseWriter, r *http.Request) {
	filters := domain.ArticleFilters{
		Page:     readQueryInt(r, "page", 1),
		PageSize: readQueryInt(r, "pageSize", 20),
		Sort:     r.URL.Query().Get("sort"),
	}

	if filters.Page < 1 || filters.PageSize < 1 || filters.PageSize > 100 {
		app.badRequestResponse(w, r, errors.New("page must be >= 1 and pageSize between 1 and 100"))
		return
	}

	switch filters.SortColumn() {
	case "", "id", "title", "publish_date", "created_at":
	default:
		app.badRequestResponse(w, r, fmt.Errorf("unsupported sort key %q", filters.Sort))
		return
	}
	if filters.Sort == "" {
		filters.Sort = "-publish_date"
	}

	articles, metadata, err := app.articleRepo.GetAll(r.Context(), filters)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeArticleList(w, r, articles, metadata)
}

func (app *Application) GetArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "articleId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	article, err := app.articleRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	// Unpublished articles are visible to their author and admins only. The
	// route itself is public, so the token is parsed opportunistically.
	if article.Status != domain.ArticleStatusPublished {
		identity, ok := app.bearerIdentity(r)
		if !ok || (article.CreatedBy != identity.Username && identity.Role != domain.RoleAdmin) {
			app.notFoundResponse(w, r)
			return
		}
	}

	err = app.writeJSON(w, http.StatusOK, app.toArticleResponse(article, app.clock.Now()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateArticleHandler(w http.ResponseWriter, r *http.Request) {
	var req api.ArticleRequest

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

	if n := countContentImages(req.Content); n > maxContentImages {
		app.badRequestResponse(w, r, fmt.Errorf("content contains %d images, the maximum is %d", n, maxContentImages))
		return
	}

	identity := app.contextGetIdentity(r)

	category, err := app.resolveCategory(r, req.Category)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.badRequestResponse(w, r, fmt.Errorf("unknown category %q", req.Category.Name))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	article := &domain.Article{
		App:            req.App,
		Company:        req.Company,
		Title:          req.Title,
		Description:    req.Description,
		Content:        req.Content,
		HeaderImageURL: req.HeaderImage,
		PromoVideoURL:  req.PromoVideo,
		CategoryID:     category.ID,
		Status:         domain.ArticleStatusDraft,
		CreatedBy:      identity.Username,
	}

	err = app.articleRepo.Create(r.Context(), article)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	article.CategoryName = category.Name
	article.CategorySlug = category.Slug

	if req.PaymentId != nil {
		err = app.attachPaymentToArticle(r, *req.PaymentId, article.ID, identity)
		if err != nil {
			app.logError(r, err)
		}
	}

	err = app.writeJSON(w, http.StatusCreated, app.toArticleResponse(article, app.clock.Now()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) UpdateArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "articleId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var req api.ArticleRequest

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

	if n := countContentImages(req.Content); n > maxContentImages {
		app.badRequestResponse(w, r, fmt.Errorf("content contains %d images, the maximum is %d", n, maxContentImages))
		return
	}

	article, ok := app.loadOwnedArticle(w, r, id)
	if !ok {
		return
	}

	identity := app.contextGetIdentity(r)
	if identity.Role != domain.RoleAdmin &&
		article.Status != domain.ArticleStatusDraft && article.Status != domain.ArticleStatusRejected {
		app.editConflictResponseWithErr(w, r,
			fmt.Errorf("%w: article %d is %s and can no longer be edited", domain.ErrArticleStateConflict, id, article.Status))
		return
	}

	category, err := app.resolveCategory(r, req.Category)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.badRequestResponse(w, r, fmt.Errorf("unknown category %q", req.Category.Name))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	article.App = req.App
	article.Company = req.Company
	article.Title = req.Title
	article.Description = req.Description
	article.Content = req.Content
	article.HeaderImageURL = req.HeaderImage
	article.PromoVideoURL = req.PromoVideo
	article.CategoryID = category.ID
	article.CategoryName = category.Name
	article.CategorySlug = category.Slug

	err = app.articleRepo.Update(r.Context(), article)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			app.editConflictResponseWithErr(w, r, fmt.Errorf("article %d was modified concurrently", id))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.toArticleResponse(article, app.clock.Now()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DeleteArticleHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "articleId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	_, ok := app.loadOwnedArticle(w, r, id)
	if !ok {
		return
	}

	// Payments outlive the article: drop the reference, keep the record.
	err = app.paymentRepo.DetachArticle(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.articleRepo.Delete(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (app *Application) SubmitArticleForReviewHandler(w http.ResponseWriter, r *http.Request) {
	app.transitionArticle(w, r, "submitted for review",
		[]domain.ArticleStatus{domain.ArticleStatusDraft, domain.ArticleStatusRejected},
		func(article *domain.Article) {
			article.Status = domain.ArticleStatusPendingApproval
			article.RejectionReason = nil
		})
}

func (app *Application) ApproveArticleHandler(w http.ResponseWriter, r *http.Request) {
	app.transitionArticle(w, r, "approved",
		[]domain.ArticleStatus{domain.ArticleStatusPendingApproval},
		func(article *domain.Article) {
			now := app.clock.Now()
			article.Status = domain.ArticleStatusPublished
			article.PublishDate = &now
		})
}

func (app *Application) RejectArticleHandler(w http.ResponseWriter, r *http.Request) {
	var req api.RejectArticleRequest

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

	app.transitionArticle(w, r, "rejected",
		[]domain.ArticleStatus{domain.ArticleStatusPendingApproval},
		func(article *domain.Article) {
			article.Status = domain.ArticleStatusRejected
			article.RejectionReason = &req.Reason
		})
}

// transitionArticle applies a status transition after checking the article is
// in one of the allowed source states. Ownership is checked only for the
// submit path; approve and reject sit behind requireAdmin.
func (app *Application) transitionArticle(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	from []domain.ArticleStatus,
	apply func(*domain.Article)) {

	id, err := app.readIDParam(r, "articleId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	article, ok := app.loadOwnedArticle(w, r, id)
	if !ok {
		return
	}

	allowed := false
	for _, status := range from {
		if article.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		app.editConflictResponseWithErr(w, r,
			fmt.Errorf("%w: article %d is %s and cannot be %s", domain.ErrArticleStateConflict, id, article.Status, action))
		return
	}

	apply(article)

	err = app.articleRepo.Update(r.Context(), article)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) {
			app.editConflictResponseWithErr(w, r, fmt.Errorf("article %d was modified concurrently", id))
			return
		}
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, app.toArticleResponse(article, app.clock.Now()), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetMyArticlesHandler(w http.ResponseWriter, r *http.Request) {
	identity := app.contextGetIdentity(r)

	status := domain.ArticleStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ArticleStatusPublished
	}
	if !status.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("invalid status %q", status))
		return
	}

	articles, err := app.articleRepo.GetByStatusAndCreator(r.Context(), status, identity.Username)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeArticleList(w, r, articles, nil)
}

func (app *Application) ListArticlesByStatusHandler(w http.ResponseWriter, r *http.Request) {
	status := domain.ArticleStatus(r.URL.Query().Get("status"))
	if status == "" {
		status = domain.ArticleStatusPendingApproval
	}
	if !status.Valid() {
		app.badRequestResponse(w, r, fmt.Errorf("invalid status %q", status))
		return
	}

	articles, err := app.articleRepo.GetByStatus(r.Context(), status)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeArticleList(w, r, articles, nil)
}

// resolveCategory looks a category up by slug when given, by name otherwise.
func (app *Application) resolveCategory(r *http.Request, ref api.CategoryRef) (*domain.Category, error) {
	if ref.Slug != "" {
		return app.categoryRepo.GetBySlug(r.Context(), ref.Slug)
	}
	return app.categoryRepo.GetByName(r.Context(), ref.Name)
}

func (app *Application) attachPaymentToArticle(r *http.Request, paymentID string, articleID int64, identity Identity) error {
	payment, err := app.paymentRepo.GetByPaymentID(r.Context(), paymentID)
	if err != nil {
		return err
	}

	if payment.Username != identity.Username && identity.Role != domain.RoleAdmin {
		return fmt.Errorf("payment %s does not belong to %s", paymentID, identity.Username)
	}

	payment.ArticleID = &articleID

	return app.paymentRepo.Update(r.Context(), payment)
}

func (app *Application) loadOwnedArticle(w http.ResponseWriter, r *http.Request, id int64) (*domain.Article, bool) {
	article, err := app.articleRepo.GetById(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return nil, false
		}
		app.serverErrorResponse(w, r, err)
		return nil, false
	}

	identity := app.contextGetIdentity(r)
	if article.CreatedBy != identity.Username && identity.Role != domain.RoleAdmin {
		app.forbiddenResponse(w, r)
		return nil, false
	}

	return article, true
}

// bearerIdentity parses the Authorization header on routes that work both
// authenticated and anonymous. A missing or invalid token is not an error
// here, the caller just stays anonymous.
func (app *Application) bearerIdentity(r *http.Request) (Identity, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || token == "" {
		return Identity{}, false
	}

	identity, err := app.parsePlatformToken(token)
	if err != nil {
		return Identity{}, false
	}

	return identity, true
}

func (app *Application) toArticleResponse(article *domain.Article, now time.Time) api.ArticleResponse {
	resp := api.ArticleResponse{
		Id:          article.ID,
		App:         article.App,
		Company:     article.Company,
		Title:       article.Title,
		Description: article.Description,
		Content:     article.Content,
		HeaderImage: article.HeaderImageURL,
		PromoVideo:  article.PromoVideoURL,
		Category: api.CategoryRef{
			Name: article.CategoryName,
			Slug: article.CategorySlug,
		},
		Status:          string(article.Status),
		PublishDate:     article.PublishDate,
		CreatedBy:       article.CreatedBy,
		RejectionReason: article.RejectionReason,
		ActivePlans:     []api.ActivePlan{},
	}

	for _, p := range article.Promotions {
		if !p.ActiveAt(now) {
			continue
		}
		resp.ActivePlans = append(resp.ActivePlans, api.ActivePlan{
			PlanType:     string(p.Type),
			ExpirationAt: p.ExpirationAt,
		})
	}

	// PlanType and ExpirationAt summarize the highest active tier for clients
	// that only render a single badge.
	for _, tier := range []domain.PlanType{domain.PlanMainSlider, domain.PlanCategorySlider, domain.PlanStandard} {
		if article.HasActivePromotion(tier, now) {
			planType := string(tier)
			resp.PlanType = &planType
			for _, p := range article.Promotions {
				if p.Type == tier && p.ActiveAt(now) {
					resp.ExpirationAt = p.ExpirationAt
				}
			}
			break
		}
	}

	return resp
}

func readQueryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return n
}
