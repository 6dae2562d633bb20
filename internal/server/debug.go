package server

import (
	"encoding/json"
	"net/http"
	"time"

	"roomsync/internal/catalog"
	"roomsync/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию движка
type DebugHandler struct {
	Service *engine.GameService
}

func NewDebugHandler(s *engine.GameService) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/rooms", h.handleListRooms)
	mux.HandleFunc("/debug/entities", h.handleDumpEntities)
	mux.HandleFunc("/debug/clients", h.handleListClients)
	mux.HandleFunc("/debug/catalog", h.handleCatalog)
}

type clientView struct {
	ID          string    `json:"id"`
	Room        string    `json:"room"`
	ConnectedAt time.Time `json:"connectedAt"`
	Subscribed  bool      `json:"subscribed"`
}

type typeView struct {
	Type       string         `json:"type"`
	Render     bool           `json:"render"`
	Physics    bool           `json:"physics"`
	Input      bool           `json:"input"`
	Controller string         `json:"controller,omitempty"`
	Defaults   map[string]any `json:"defaults,omitempty"`
}

// /debug/rooms - список комнат с числом участников, сущностей и длиной очереди удаления
func (h *DebugHandler) handleListRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Store.Info())
}

// /debug/entities?room=lobby - полный снимок комнаты без отметки очереди удаления
func (h *DebugHandler) handleDumpEntities(w http.ResponseWriter, r *http.Request) {
	room := r.URL.Query().Get("room")
	if room == "" {
		room = h.Service.Config.DefaultRoom
	}

	snap, ok := h.Service.Store.Snapshot(room, false)
	if !ok {
		http.Error(w, "Room not found", http.StatusNotFound)
		return
	}

	writeJSON(w, snap)
}

// /debug/clients - все подключения процесса и их комнаты
func (h *DebugHandler) handleListClients(w http.ResponseWriter, r *http.Request) {
	ids := h.Service.Registry.IDs()
	out := make([]clientView, 0, len(ids))
	for _, id := range ids {
		c, ok := h.Service.Registry.Get(id)
		if !ok {
			continue
		}
		out = append(out, clientView{
			ID:          c.ID,
			Room:        c.Room,
			ConnectedAt: c.ConnectedAt,
			Subscribed:  h.Service.Hub.HasSubscriber(id),
		})
	}
	writeJSON(w, out)
}

// /debug/catalog - зарегистрированные типы сущностей
func (h *DebugHandler) handleCatalog(w http.ResponseWriter, r *http.Request) {
	types := h.Service.Catalog.Types()
	out := make([]typeView, 0, len(types))
	for _, t := range types {
		d, err := h.Service.Catalog.Lookup(t)
		if err != nil {
			continue
		}
		out = append(out, typeView{
			Type:       d.Type,
			Render:     d.Caps.Has(catalog.CapRender),
			Physics:    d.Caps.Has(catalog.CapPhysics),
			Input:      d.Caps.Has(catalog.CapInput),
			Controller: d.Controller,
			Defaults:   d.Defaults,
		})
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локальных debug-страниц)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Если data == nil, возвращаем пустой массив [], а не null
	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
