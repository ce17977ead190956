package handler

import (
	"amoura/backend/internal/chathub"
	"amoura/backend/internal/config"
	"amoura/backend/internal/report"
	"amoura/backend/internal/storage"
)

// Handler містить посилання на ChatHub, сховище та сервіс скарг
type Handler struct {
	Hub     *chathub.ManagerService
	Storage storage.Storage
	Reports *report.Service
	Cfg     *config.Config
}

func NewHandler(hub *chathub.ManagerService, s storage.Storage, reports *report.Service, cfg *config.Config) *Handler {
	return &Handler{Hub: hub, Storage: s, Reports: reports, Cfg: cfg}
}
