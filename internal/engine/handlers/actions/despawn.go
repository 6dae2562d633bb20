package actions

import (
	"fmt"

	"roomsync/internal/domain"
	"roomsync/internal/engine/handlers"
	"roomsync/pkg/api"
)

// HandleDespawn удаляет сущность. Удалить можно свою сущность
// или серверную (окружение комнаты).
func HandleDespawn(ctx handlers.Context, p api.DespawnPayload) (handlers.Result, error) {
	who := ctx.Who()
	err := ctx.Store.DestroyEntity(ctx.Room, p.UniqueID, func(e *domain.EntityState) bool {
		return e.OwnerID == domain.OwnerServer || domain.IsAuthoritative(e, who)
	})
	if err != nil {
		return handlers.Result{}, fmt.Errorf("%w: despawn: %w", domain.ErrProtocol, err)
	}

	return handlers.RoomEvent(ctx.Room, api.Message{
		Event:   api.EventServerDespawn,
		Payload: api.DespawnNotice{UniqueID: p.UniqueID},
	}, fmt.Sprintf("despawned %s", p.UniqueID)), nil
}
