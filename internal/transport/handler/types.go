package handler

import "github.com/vinkla/retouch/internal/triggers"

type renderVariantParams struct {
	SubjectID int64  `validate:"required,gt=0"`
	SizeKey   string `validate:"required,max=64"`
	File      string `validate:"required"`
	Width     int    `validate:"gte=0"`
	Height    int    `validate:"gte=0"`
	IsIcon    bool
}

type srcsetRequest struct {
	Candidates []triggers.Descriptor `json:"candidates" validate:"required,dive"`
}

type srcsetResponse struct {
	Candidates []triggers.Descriptor `json:"candidates"`
}
