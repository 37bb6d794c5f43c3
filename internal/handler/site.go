// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ocms-site/internal/content"
	"github.com/olegiv/ocms-site/internal/markup"
	"github.com/olegiv/ocms-site/internal/render"
	"github.com/olegiv/ocms-site/internal/richtext"
	"github.com/olegiv/ocms-site/internal/seo"
	"github.com/olegiv/ocms-site/internal/service"
	"github.com/olegiv/ocms-site/internal/util"
)

// Body class overrides per call site.
const (
	postBodyClasses    = "text-base text-gray-dark font-light leading-relaxed lg:text-lg"
	pageBodyClasses    = "text-sm text-gray-lighter font-helvetica font-extralight leading-loose lg:text-base"
	pageHeadingClasses = "text-gray font-medium mt-6"
	excerptClasses     = "text-sm text-gray-700 mb-2"
)

// SiteConfig holds site-wide settings for the page handlers.
type SiteConfig struct {
	SEO           seo.SiteConfig
	WhitepaperURL string
}

// IndexView is the blog index and tag archive.
type IndexView struct {
	Heading string
	Posts   []PostCard
	Tags    []string
}

// PostCard is a post in a listing with its rendered excerpt.
type PostCard struct {
	Post    content.Post
	Excerpt template.HTML
}

// PostView is a rendered post.
type PostView struct {
	Post content.Post
	Body template.HTML
}

// PageView is a rendered page.
type PageView struct {
	Page content.Page
	Body template.HTML
}

// FAQEntry is a question with its rendered answer.
type FAQEntry struct {
	Question string
	Answer   template.HTML
}

// FAQView is the FAQ page.
type FAQView struct {
	Items []FAQEntry
}

// WhitepaperView is the interstitial shown before the whitepaper.
type WhitepaperView struct {
	URL string
}

// SiteHandler serves the rendered pages.
type SiteHandler struct {
	content  Content
	renderer *render.Renderer
	markup   *markup.Renderer
	cfg      SiteConfig
	logger   *slog.Logger
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(c Content, renderer *render.Renderer, cfg SiteConfig, logger *slog.Logger) *SiteHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SiteHandler{
		content:  c,
		renderer: renderer,
		markup:   markup.New(),
		cfg:      cfg,
		logger:   logger,
	}
}

// Register mounts the page routes. RoutePage is a catch-all and must be
// registered after every other single-segment route.
func (h *SiteHandler) Register(r chi.Router) {
	r.Get(RouteHome, h.Home)
	r.Get(RouteBlog, h.Blog)
	r.Get(RouteBlogTag, h.Tag)
	r.Get(RouteBlogPost, h.Post)
	r.Get(RouteFAQ, h.FAQ)
	r.Get(RouteWhitepaper, h.Whitepaper)
	r.Get(RoutePage, h.Page)
	r.NotFound(h.NotFound)
}

// Home handles GET /.
func (h *SiteHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.blogIndex(w, r, "Blog", seo.BuildMeta(nil, &h.cfg.SEO))
}

// Blog handles GET /blog.
func (h *SiteHandler) Blog(w http.ResponseWriter, r *http.Request) {
	h.blogIndex(w, r, "Blog", seo.BuildMeta(&seo.PageData{Title: "Blog", Path: RouteBlog}, &h.cfg.SEO))
}

func (h *SiteHandler) blogIndex(w http.ResponseWriter, r *http.Request, heading string, meta *seo.Meta) {
	posts, err := h.content.FetchBlogEntries(r.Context(), service.DefaultQuantity)
	if err != nil {
		h.serverError(w, r, "failed to fetch blog entries", err)
		return
	}
	h.render(w, r, "index", render.TemplateData{
		Title: heading,
		Meta:  meta,
		Data: IndexView{
			Heading: heading,
			Posts:   h.postCards(r.Context(), posts.Entries),
			Tags:    distinctTags(posts.Entries),
		},
	})
}

// Tag handles GET /blog/tag/{tag}.
func (h *SiteHandler) Tag(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "tag")
	if !util.IsValidSlug(slug) {
		h.NotFound(w, r)
		return
	}

	tag, err := h.content.TagBySlug(r.Context(), slug)
	if err != nil {
		if isNotFound(err) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, "failed to resolve tag", err, "tag", slug)
		return
	}

	posts, err := h.content.FetchBlogEntriesByTag(r.Context(), tag, service.DefaultQuantity)
	if err != nil {
		h.serverError(w, r, "failed to fetch tagged posts", err, "tag", tag)
		return
	}

	heading := "Posts tagged " + tag
	h.render(w, r, "index", render.TemplateData{
		Title: heading,
		Meta: seo.BuildMeta(&seo.PageData{
			Title: heading,
			Path:  "/blog/tag/" + slug,
		}, &h.cfg.SEO),
		Data: IndexView{Heading: heading, Posts: h.postCards(r.Context(), posts.Entries)},
	})
}

// Post handles GET /blog/{slug}.
func (h *SiteHandler) Post(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.content.FetchBlogEntryBySlug(r.Context(), slug)
	if err != nil {
		if isNotFound(err) {
			h.NotFound(w, r)
			return
		}
		h.serverError(w, r, "failed to fetch post", err, "slug", slug)
		return
	}

	body := h.renderBody(r.Context(), post.Body, markup.Options{
		Profile: markup.ProfileFull,
		Classes: postBodyClasses,
	}, "slug", slug)

	h.render(w, r, "post", render.TemplateData{
		Title: post.Title,
		Meta:  seo.BuildMeta(postPageData(post), &h.cfg.SEO),
		Data:  PostView{Post: post, Body: body},
	})
}

// Page handles GET /{slug}. Slugs without a page fall back to the post of
// the same slug.
func (h *SiteHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !util.IsValidSlug(slug) {
		h.NotFound(w, r)
		return
	}

	page, err := h.content.FetchPageBySlug(r.Context(), slug)
	if isNotFound(err) {
		exists, postErr := h.content.PostExists(r.Context(), slug)
		if postErr != nil {
			h.serverError(w, r, "failed to look up post", postErr, "slug", slug)
			return
		}
		if exists {
			http.Redirect(w, r, service.GenerateRoute(slug), http.StatusMovedPermanently)
			return
		}
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.serverError(w, r, "failed to fetch page", err, "slug", slug)
		return
	}

	body := h.renderBody(r.Context(), page.Body, markup.Options{
		Profile:        markup.ProfileFull,
		Classes:        pageBodyClasses,
		HeadingClasses: pageHeadingClasses,
	}, "slug", slug)

	h.render(w, r, "page", render.TemplateData{
		Title: page.Title,
		Meta: seo.BuildMeta(&seo.PageData{
			Title:       page.Title,
			Description: deref(page.Headline),
			Path:        "/" + page.Slug,
		}, &h.cfg.SEO),
		Data: PageView{Page: page, Body: body},
	})
}

// FAQ handles GET /faq.
func (h *SiteHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	faq, err := h.content.FetchFAQItems(r.Context())
	if err != nil {
		h.serverError(w, r, "failed to fetch faq", err)
		return
	}

	items := make([]FAQEntry, 0, len(faq.Entries))
	for _, item := range faq.Entries {
		answer, err := markup.Markdown(deref(item.Answer))
		if err != nil {
			h.logger.WarnContext(r.Context(), "failed to render faq answer", "error", err)
			continue
		}
		items = append(items, FAQEntry{Question: deref(item.Question), Answer: answer})
	}

	h.render(w, r, "faq", render.TemplateData{
		Title: "FAQ",
		Meta: seo.BuildMeta(&seo.PageData{
			Title: "Frequently Asked Questions",
			Path:  RouteFAQ,
		}, &h.cfg.SEO),
		Data: FAQView{Items: items},
	})
}

// Whitepaper handles GET /whitepaper with an interstitial that links to
// the configured document.
func (h *SiteHandler) Whitepaper(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "whitepaper", render.TemplateData{
		Title: "Whitepaper",
		Meta: seo.BuildMeta(&seo.PageData{
			Title: "Whitepaper",
			Path:  RouteWhitepaper,
		}, &h.cfg.SEO),
		Data: WhitepaperView{URL: h.cfg.WhitepaperURL},
	})
}

// NotFound renders the 404 page.
func (h *SiteHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	err := h.renderer.RenderStatus(w, r, http.StatusNotFound, "404", render.TemplateData{
		Title: "Page Not Found",
		Meta:  seo.BuildMeta(&seo.PageData{Title: "Page Not Found", NoIndex: true}, &h.cfg.SEO),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render 404 page", "error", err)
		http.NotFound(w, r)
	}
}

// renderBody renders a rich-text body. Nodes that fail to render are left
// out and logged; the rest of the page is still served.
func (h *SiteHandler) renderBody(ctx context.Context, doc *richtext.Document, opts markup.Options, args ...any) template.HTML {
	body, err := h.markup.RenderHTML(doc, opts)
	if err != nil {
		h.logger.WarnContext(ctx, "elided rich-text nodes", append(args, "error", err)...)
	}
	return body
}

// postCards renders the first paragraph of each post body as its listing
// excerpt.
func (h *SiteHandler) postCards(ctx context.Context, posts []content.Post) []PostCard {
	cards := make([]PostCard, 0, len(posts))
	for _, post := range posts {
		card := PostCard{Post: post}
		if doc := excerpt(post.Body); doc != nil {
			card.Excerpt = h.renderBody(ctx, doc, markup.Options{
				Profile: markup.ProfileCompact,
				Classes: excerptClasses,
			}, "slug", post.Slug)
		}
		cards = append(cards, card)
	}
	return cards
}

// excerpt returns a document holding the first top-level paragraph of doc,
// or nil when there is none.
func excerpt(doc *richtext.Document) *richtext.Document {
	if doc == nil {
		return nil
	}
	for _, node := range doc.Content {
		if p, ok := node.(*richtext.Paragraph); ok {
			return &richtext.Document{Content: []richtext.Node{p}}
		}
	}
	return nil
}

func (h *SiteHandler) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	if err := h.renderer.Render(w, r, name, data); err != nil {
		h.serverError(w, r, "failed to render template", err, "template", name)
	}
}

// serverError logs err and renders the error page with a 500 status.
func (h *SiteHandler) serverError(w http.ResponseWriter, r *http.Request, msg string, err error, args ...any) {
	h.logger.ErrorContext(r.Context(), msg, append(args, "error", err, "path", r.URL.Path)...)
	w.Header().Set("Cache-Control", "no-store")
	if renderErr := h.renderer.RenderStatus(w, r, http.StatusInternalServerError, "error", render.TemplateData{
		Title: "Error",
	}); renderErr != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func postPageData(post content.Post) *seo.PageData {
	data := &seo.PageData{
		Title:       post.Title,
		Description: deref(post.Description),
		Path:        service.GenerateRoute(post.Slug),
		Tags:        post.Tags,
		PublishedAt: post.PublishedDateISO,
		Article:     true,
	}
	if data.Description == "" {
		data.Description = deref(post.Subtitle)
	}
	if post.FeatureImage != nil {
		data.Image = post.FeatureImage.ImageURL
	}
	if post.Author != nil {
		data.AuthorName = deref(post.Author.Name)
	}
	return data
}

// distinctTags returns the tags of posts in first-seen order.
func distinctTags(posts []content.Post) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, p := range posts {
		for _, tag := range p.Tags {
			if tag != "" && !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
