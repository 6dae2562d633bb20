package actions

import (
	"fmt"

	"roomsync/internal/engine/handlers"
	"roomsync/pkg/api"
)

// HandleJoinRoom переводит отправителя в другую комнату.
// Повторный вход в текущую комнату тоже проходит через выход.
func HandleJoinRoom(ctx handlers.Context, p api.JoinRoomPayload) (handlers.Result, error) {
	if err := ctx.Store.Join(ctx.ConnID, p.Room); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Msg: fmt.Sprintf("joined %s", p.Room)}, nil
}
