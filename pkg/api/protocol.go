package api

import (
	"roomsync/internal/domain"
	"roomsync/internal/version"
)

// ProtocolVersion меняется при любом несовместимом изменении событий или payload.
const ProtocolVersion = version.Protocol

// Event - имя события в конверте.
type Event = string

// --- КЛИЕНТ -> СЕРВЕР ---
const (
	EventReady           Event = "ready"
	EventRequestJoinRoom Event = "requestJoinRoom"
	EventRequestSpawn    Event = "requestSpawn"
	EventRequestDespawn  Event = "requestDespawn"
	EventTickResponse    Event = "tickResponse"
)

// --- СЕРВЕР -> КЛИЕНТ ---
const (
	EventWelcome            Event = "welcome"
	EventClientConnected    Event = "clientConnected"
	EventClientDisconnected Event = "clientDisconnected"
	EventClientJoinedRoom   Event = "clientJoinedRoom"
	EventClientLeftRoom     Event = "clientLeftRoom"
	EventServerTick         Event = "serverTick"
	EventServerSpawn        Event = "serverSpawn"
	EventServerDespawn      Event = "serverDespawn"
)

// Envelope - корневой объект любого сообщения в обе стороны.
type Envelope struct {
	// Event название события.
	Event string `json:"event"`

	// Payload данные события. Структура зависит от Event.
	Payload any `json:"payload,omitempty"`
}

// Message - исходящее сообщение.
type Message struct {
	Event   string
	Payload any

	// Volatile сообщение можно потерять: при переполненном буфере
	// получателя оно отбрасывается. Снимки тика всегда volatile.
	Volatile bool
}

// --- СЕРВЕР -> КЛИЕНТ ---

// WelcomePayload первое сообщение после подключения. Сообщает клиенту его ID.
type WelcomePayload struct {
	ID       string `json:"id"`
	Protocol int    `json:"protocol"`
	Build    string `json:"build,omitempty"`
}

// PresencePayload используется для clientConnected и clientDisconnected.
type PresencePayload struct {
	ID string `json:"id"`
	// Clients все подключения процесса (connected) или бывшей комнаты (disconnected).
	Clients []string `json:"clients"`
}

// MembershipPayload используется для clientJoinedRoom и clientLeftRoom.
type MembershipPayload struct {
	ID      string   `json:"id"`
	Room    string   `json:"room"`
	Clients []string `json:"clients"`
}

// ServerTickPayload полный снимок комнаты. Отправляется с частотой тика.
type ServerTickPayload struct {
	Room     string                        `json:"room"`
	Clients  []string                      `json:"clients"`
	Entities map[string]domain.EntityState `json:"entities"`

	// DestroyQueue uniqueID сущностей, удаленных с момента последней очистки.
	// Клиент удаляет их реплики при каждом получении (идемпотентно).
	DestroyQueue []string `json:"destroyQueue"`
}

// SpawnNotice рассылается комнате сразу после создания сущности.
type SpawnNotice struct {
	Entity domain.EntityState `json:"entity"`
}

// DespawnNotice рассылается комнате после удаления по запросу.
type DespawnNotice struct {
	UniqueID string `json:"uniqueID"`
}

// --- КЛИЕНТ -> СЕРВЕР: Payloads ---

// JoinRoomPayload используется для requestJoinRoom.
type JoinRoomPayload struct {
	Room string `json:"room"`
}

// SpawnPayload используется для requestSpawn.
type SpawnPayload struct {
	// ID ключ каталога сущностей (например "character").
	ID string `json:"id"`
	// Args начальные поля сущности. ownerID по умолчанию - отправитель.
	Args domain.EntityPatch `json:"args"`
}

// DespawnPayload используется для requestDespawn.
type DespawnPayload struct {
	UniqueID string `json:"uniqueID"`
}

// TickResponsePayload состояние сущностей, которыми владеет отправитель.
type TickResponsePayload struct {
	Entities map[string]domain.EntityPatch `json:"entities"`
}
