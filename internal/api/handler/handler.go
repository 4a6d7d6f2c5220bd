package handler

import (
	"actionflow/backend/internal/complaint"
	"actionflow/backend/internal/eventhub"
	"actionflow/backend/internal/filestore"
	"actionflow/backend/internal/storage"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handler serves the HTTP surface of the complaint core.
type Handler struct {
	Complaints *complaint.Service
	Storage    storage.Storage
	Files      filestore.Store
	Hub        *eventhub.ManagerService
	Logger     *zap.Logger
	Upgrader   websocket.Upgrader
}

func NewHandler(svc *complaint.Service, s storage.Storage, files filestore.Store, hub *eventhub.ManagerService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Complaints: svc, Storage: s, Files: files, Hub: hub, Logger: logger, Upgrader: newUpgrader()}
}
