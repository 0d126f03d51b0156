package http

import "github.com/nekogravitycat/item-sharing-backend/internal/photo"

type PhotoUploadResponse struct {
	PhotoID      string  `json:"photo_id"`
	URL          string  `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
}

func NewPhotoUploadResponse(p *photo.Photo) PhotoUploadResponse {
	resp := PhotoUploadResponse{
		PhotoID: p.ID,
		URL:     photo.URL(p.ID),
	}
	if p.ThumbnailPath != nil {
		t := photo.ThumbnailURL(p.ID)
		resp.ThumbnailURL = &t
	}
	return resp
}
