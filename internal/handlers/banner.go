package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"vendorpress/internal/imaging"
	"vendorpress/internal/models"
	"vendorpress/internal/storage"
	"vendorpress/internal/store"
)

// Banners groups the promotional banner handlers.
type Banners struct {
	banners       *store.BannerStore
	storageClient *storage.Client
}

// NewBanners creates the banner handler group. storageClient may be nil
// when S3 is not configured; thumbnails are skipped in that case.
func NewBanners(banners *store.BannerStore, storageClient *storage.Client) *Banners {
	return &Banners{banners: banners, storageClient: storageClient}
}

// List returns all banners, newest first.
func (b *Banners) List(w http.ResponseWriter, r *http.Request) {
	banners, err := b.banners.List()
	if err != nil {
		respondInternal(w, "list banners", err)
		return
	}
	respondData(w, http.StatusOK, banners)
}

type bannerRequest struct {
	Title     string     `json:"title" validate:"required,max=300"`
	ImageURL  string     `json:"image_url" validate:"required,url"`
	LinkURL   string     `json:"link_url" validate:"omitempty,url"`
	Placement string     `json:"placement" validate:"omitempty,oneof=home category sidebar"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	IsActive  *bool      `json:"is_active"`
}

func (req *bannerRequest) apply(banner *models.Banner) {
	banner.Title = req.Title
	banner.ImageURL = req.ImageURL
	banner.LinkURL = req.LinkURL
	banner.Placement = models.BannerPlacementHome
	if req.Placement != "" {
		banner.Placement = models.BannerPlacement(req.Placement)
	}
	banner.StartsAt = req.StartsAt
	banner.EndsAt = req.EndsAt
	banner.IsActive = true
	if req.IsActive != nil {
		banner.IsActive = *req.IsActive
	}
}

// Create stores a banner and generates its thumbnail from the uploaded
// image. A failed thumbnail never blocks the banner; the full image
// serves as fallback.
func (b *Banners) Create(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	banner := &models.Banner{}
	req.apply(banner)
	banner.ThumbURL = b.thumbnail(r, banner.ImageURL)

	created, err := b.banners.Create(banner)
	if err != nil {
		respondInternal(w, "create banner", err)
		return
	}
	respondData(w, http.StatusCreated, created)
}

// Update replaces a banner's fields, regenerating the thumbnail when
// the image changed.
func (b *Banners) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid banner id")
		return
	}
	banner, err := b.banners.FindByID(id)
	if err != nil {
		respondInternal(w, "find banner", err)
		return
	}
	if banner == nil {
		respondMessage(w, http.StatusNotFound, "banner not found")
		return
	}

	var req bannerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	previousImage := banner.ImageURL
	req.apply(banner)
	if banner.ImageURL != previousImage {
		banner.ThumbURL = b.thumbnail(r, banner.ImageURL)
	}

	if err := b.banners.Update(banner); err != nil {
		respondInternal(w, "update banner", err)
		return
	}
	respondData(w, http.StatusOK, banner)
}

// Delete removes a banner.
func (b *Banners) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid banner id")
		return
	}
	if err := b.banners.Delete(id); err != nil {
		respondInternal(w, "delete banner", err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": id.String()})
}

// thumbnail downloads the stored image, scales it down, and uploads the
// result next to the original. Returns the full image URL when the
// image lives outside our bucket or processing fails.
func (b *Banners) thumbnail(r *http.Request, imageURL string) string {
	if b.storageClient == nil {
		return imageURL
	}
	key, ok := b.storageClient.ExtractKey(imageURL)
	if !ok {
		return imageURL
	}

	original, err := b.storageClient.Download(r.Context(), key)
	if err != nil {
		return imageURL
	}
	thumb, err := imaging.Thumbnail(original)
	if err != nil {
		return imageURL
	}

	thumbKey := thumbKeyFor(key)
	if err := b.storageClient.Upload(r.Context(), thumbKey, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
		return imageURL
	}
	return b.storageClient.FileURL(thumbKey)
}

func thumbKeyFor(key string) string {
	if i := strings.LastIndexByte(key, '.'); i > strings.LastIndexByte(key, '/') {
		key = key[:i]
	}
	return key + "_thumb.jpg"
}
