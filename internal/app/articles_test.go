package app

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/promopress/promopress/api"
	"github.com/promopress/promopress/internal/clock"
	"github.com/promopress/promopress/internal/domain"
	"github.com/promopress/promopress/internal/mocks"
)

func validArticleRequest() api.ArticleRequest {
	return api.ArticleRequest{
		Title:    "My App Launch",
		Content:  "A longer story about the launch.",
		Category: api.CategoryRef{Name: "Tech", Slug: "tech"},
	}
}

func techCategoryRepo() *mocks.MockCategoryRepo {
	return &mocks.MockCategoryRepo{
		GetBySlugFunc: func(ctx context.Context, slug string) (*domain.Category, error) {
			if slug == "tech" {
				return &domain.Category{ID: 1, Name: "Tech", Slug: "tech"}, nil
			}
			return nil, domain.ErrRecordNotFound
		},
		GetByNameFunc: func(ctx context.Context, name string) (*domain.Category, error) {
			if name == "Tech" {
				return &domain.Category{ID: 1, Name: "Tech", Slug: "tech"}, nil
			}
			return nil, domain.ErrRecordNotFound
		},
	}
}

func TestCreateArticle(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*api.ArticleRequest)
		wantStatus int
	}{
		{
			name:       "valid draft",
			mutate:     func(r *api.ArticleRequest) {},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing title",
			mutate:     func(r *api.ArticleRequest) { r.Title = "" },
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "unknown category",
			mutate:     func(r *api.ArticleRequest) { r.Category = api.CategoryRef{Name: "Nope", Slug: "nope"} },
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "too many images",
			mutate: func(r *api.ArticleRequest) {
				r.Content = strings.Repeat(`<img src="x.png">`, maxContentImages+1)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "image limit is inclusive",
			mutate: func(r *api.ArticleRequest) {
				r.Content = strings.Repeat(`![alt](x.png)`, maxContentImages)
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var created *domain.Article

			app := newTestApplication(func(app *Application) {
				app.categoryRepo = techCategoryRepo()
				app.articleRepo = &mocks.MockArticleRepo{
					CreateFunc: func(ctx context.Context, article *domain.Article) error {
						article.ID = 1
						created = article
						return nil
					},
				}
			})

			body := validArticleRequest()
			tt.mutate(&body)

			w, r := executeRequest(t, http.MethodPost, "/articles", body)
			r = asUser(r, "alice")

			app.CreateArticleHandler(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}

			if created.Status != domain.ArticleStatusDraft {
				t.Errorf("status = %s, want DRAFT", created.Status)
			}
			if created.CreatedBy != "alice" {
				t.Errorf("createdBy = %s, want alice", created.CreatedBy)
			}
		})
	}
}

func TestArticleStatusTransitions(t *testing.T) {
	tests := []struct {
		name        string
		handler     string
		fromStatus  domain.ArticleStatus
		actor       func(*http.Request) *http.Request
		wantStatus  int
		wantArticle domain.ArticleStatus
	}{
		{
			name:        "submit draft",
			handler:     "submit",
			fromStatus:  domain.ArticleStatusDraft,
			actor:       func(r *http.Request) *http.Request { return asUser(r, "alice") },
			wantStatus:  http.StatusOK,
			wantArticle: domain.ArticleStatusPendingApproval,
		},
		{
			name:        "resubmit rejected",
			handler:     "submit",
			fromStatus:  domain.ArticleStatusRejected,
			actor:       func(r *http.Request) *http.Request { return asUser(r, "alice") },
			wantStatus:  http.StatusOK,
			wantArticle: domain.ArticleStatusPendingApproval,
		},
		{
			name:       "submit published conflicts",
			handler:    "submit",
			fromStatus: domain.ArticleStatusPublished,
			actor:      func(r *http.Request) *http.Request { return asUser(r, "alice") },
			wantStatus: http.StatusConflict,
		},
		{
			name:        "approve pending",
			handler:     "approve",
			fromStatus:  domain.ArticleStatusPendingApproval,
			actor:       func(r *http.Request) *http.Request { return asAdmin(r, "root") },
			wantStatus:  http.StatusOK,
			wantArticle: domain.ArticleStatusPublished,
		},
		{
			name:       "approve draft conflicts",
			handler:    "approve",
			fromStatus: domain.ArticleStatusDraft,
			actor:      func(r *http.Request) *http.Request { return asAdmin(r, "root") },
			wantStatus: http.StatusConflict,
		},
		{
			name:        "reject pending",
			handler:     "reject",
			fromStatus:  domain.ArticleStatusPendingApproval,
			actor:       func(r *http.Request) *http.Request { return asAdmin(r, "root") },
			wantStatus:  http.StatusOK,
			wantArticle: domain.ArticleStatusRejected,
		},
		{
			name:       "submit someone else's article",
			handler:    "submit",
			fromStatus: domain.ArticleStatusDraft,
			actor:      func(r *http.Request) *http.Request { return asUser(r, "mallory") },
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var updated *domain.Article

			app := newTestApplication(func(app *Application) {
				app.categoryRepo = techCategoryRepo()
				app.articleRepo = &mocks.MockArticleRepo{
					GetByIdFunc: func(ctx context.Context, id int64) (*domain.Article, error) {
						return &domain.Article{
							ID: id, Title: "T", CategorySlug: "tech",
							Status: tt.fromStatus, CreatedBy: "alice",
						}, nil
					},
					UpdateFunc: func(ctx context.Context, article *domain.Article) error {
						updated = article
						return nil
					},
				}
			})

			var body any
			if tt.handler == "reject" {
				body = api.RejectArticleRequest{Reason: "needs work"}
			}

			w, r := executeRequest(t, http.MethodPost, "/articles/1/"+tt.handler, body)
			r = tt.actor(r)
			r = withURLParam(r, "articleId", "1")

			switch tt.handler {
			case "submit":
				app.SubmitArticleForReviewHandler(w, r)
			case "approve":
				app.ApproveArticleHandler(w, r)
			case "reject":
				app.RejectArticleHandler(w, r)
			}

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus != http.StatusOK {
				return
			}

			if updated.Status != tt.wantArticle {
				t.Errorf("article status = %s, want %s", updated.Status, tt.wantArticle)
			}

			if tt.handler == "approve" {
				if updated.PublishDate == nil || !updated.PublishDate.Equal(testNow) {
					t.Errorf("publishDate = %v, want %v", updated.PublishDate, testNow)
				}
			}
			if tt.handler == "reject" {
				if updated.RejectionReason == nil || *updated.RejectionReason != "needs work" {
					t.Errorf("rejectionReason = %v, want needs work", updated.RejectionReason)
				}
			}
		})
	}
}

func TestDeleteArticleDetachesPayments(t *testing.T) {
	var detached, deleted bool

	app := newTestApplication(func(app *Application) {
		app.articleRepo = &mocks.MockArticleRepo{
			GetByIdFunc: func(ctx context.Context, id int64) (*domain.Article, error) {
				return &domain.Article{ID: id, CreatedBy: "alice"}, nil
			},
			DeleteFunc: func(ctx context.Context, id int64) error {
				if !detached {
					t.Error("payments must be detached before the article is deleted")
				}
				deleted = true
				return nil
			},
		}
		app.paymentRepo = &mocks.MockPaymentRepo{
			DetachArticleFunc: func(ctx context.Context, articleID int64) error {
				detached = true
				return nil
			},
		}
	})

	w, r := executeRequest(t, http.MethodDelete, "/articles/1", nil)
	r = asUser(r, "alice")
	r = withURLParam(r, "articleId", "1")

	app.DeleteArticleHandler(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if !deleted {
		t.Error("expected article delete")
	}
}

func TestGetArticleVisibility(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.ArticleStatus
		token      string
		wantStatus int
	}{
		{name: "published is public", status: domain.ArticleStatusPublished, wantStatus: http.StatusOK},
		{name: "draft hidden from anonymous", status: domain.ArticleStatusDraft, wantStatus: http.StatusNotFound},
		{name: "draft visible to author", status: domain.ArticleStatusDraft, token: "alice", wantStatus: http.StatusOK},
		{name: "draft hidden from others", status: domain.ArticleStatusDraft, token: "mallory", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Token expiry is checked against wall time, so minting needs a
			// real clock.
			app := newTestApplication(func(app *Application) {
				app.clock = clock.NewSystem()
				app.articleRepo = &mocks.MockArticleRepo{
					GetByIdFunc: func(ctx context.Context, id int64) (*domain.Article, error) {
						return &domain.Article{ID: id, Title: "T", Status: tt.status, CreatedBy: "alice"}, nil
					},
				}
			})

			w, r := executeRequest(t, http.MethodGet, "/articles/1", nil)
			r = withURLParam(r, "articleId", "1")

			if tt.token != "" {
				token, err := app.issuePlatformToken(&domain.User{Username: tt.token, PiID: "pi-" + tt.token, Role: domain.RoleUser})
				if err != nil {
					t.Fatal(err)
				}
				r.Header.Set("Authorization", "Bearer "+token)
			}

			app.GetArticleHandler(w, r)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestArticleResponseSummarizesHighestTier(t *testing.T) {
	future := testNow.Add(time.Hour)

	article := &domain.Article{
		ID: 1, Status: domain.ArticleStatusPublished, CreatedBy: "alice",
		Promotions: []domain.Promotion{
			{Type: domain.PlanStandard},
			{Type: domain.PlanMainSlider, ExpirationAt: &future},
		},
	}

	app := newTestApplication()
	resp := app.toArticleResponse(article, testNow)

	if len(resp.ActivePlans) != 2 {
		t.Errorf("activePlans = %d, want 2", len(resp.ActivePlans))
	}
	if resp.PlanType == nil || *resp.PlanType != "MAIN_SLIDER" {
		t.Errorf("planType = %v, want MAIN_SLIDER", resp.PlanType)
	}
	if resp.ExpirationAt == nil || !resp.ExpirationAt.Equal(future) {
		t.Errorf("expirationAt = %v, want %v", resp.ExpirationAt, future)
	}
}
