package handlers

import (
	"roomsync/internal/domain"
	"roomsync/pkg/api"
)

// RoomStore описывает операции хранилища комнат, доступные хендлерам.
// engine.Store неявно реализует этот интерфейс.
type RoomStore interface {
	Join(connID, room string) error
	CreateEntity(room, typeTag, owner string, args domain.EntityPatch) domain.EntityState
	DestroyEntity(room, uniqueID string, authorize func(*domain.EntityState) bool) error
	MergeEntity(room, uniqueID string, patch domain.EntityPatch, who domain.Identity) error
}

// Context передает хендлеру все, что нужно для обработки одного запроса.
type Context struct {
	ConnID string
	// Room - текущая комната отправителя, пусто до входа в комнату.
	Room        string
	DefaultRoom string

	Store   RoomStore
	HasType func(typeTag string) bool
}

// Who - идентичность отправителя для правила владения.
func (c Context) Who() domain.Identity {
	return domain.ClientIdentity(c.ConnID)
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в сокеты напрямую, он возвращает данные.
type Result struct {
	Msg string // Текст для лога сервиса

	// Event - событие для всех участников комнаты Room (если задано).
	Event *api.Message
	Room  string
}

// HandlerFunc - это контракт для любого запроса (requestSpawn, tickResponse, etc).
type HandlerFunc func(ctx Context, in api.Inbound) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}

// RoomEvent - результат с событием для комнаты.
func RoomEvent(room string, msg api.Message, text string) Result {
	return Result{Msg: text, Event: &msg, Room: room}
}
