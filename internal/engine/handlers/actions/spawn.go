package actions

import (
	"fmt"

	"roomsync/internal/domain"
	"roomsync/internal/engine/handlers"
	"roomsync/pkg/api"
)

// HandleSpawn создает сущность в комнате отправителя и рассылает serverSpawn.
//
// Владелец по умолчанию - отправитель. Назначить владельцем другого
// клиента или сервер нельзя.
func HandleSpawn(ctx handlers.Context, p api.SpawnPayload) (handlers.Result, error) {
	if !ctx.HasType(p.ID) {
		return handlers.Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownType, p.ID)
	}
	if p.Args.OwnerID != nil && *p.Args.OwnerID != "" && *p.Args.OwnerID != ctx.ConnID {
		return handlers.Result{}, fmt.Errorf("%w: cannot spawn for owner %q", domain.ErrProtocol, *p.Args.OwnerID)
	}

	e := ctx.Store.CreateEntity(ctx.Room, p.ID, ctx.ConnID, p.Args)

	return handlers.RoomEvent(ctx.Room, api.Message{
		Event:   api.EventServerSpawn,
		Payload: api.SpawnNotice{Entity: e},
	}, fmt.Sprintf("spawned %s", e)), nil
}
