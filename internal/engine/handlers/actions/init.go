package actions

import (
	"fmt"

	"roomsync/internal/engine/handlers"
)

// HandleReady - клиент загрузился и готов получать мир: входит в комнату по умолчанию.
func HandleReady(ctx handlers.Context) (handlers.Result, error) {
	if err := ctx.Store.Join(ctx.ConnID, ctx.DefaultRoom); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Msg: fmt.Sprintf("ready, joined %s", ctx.DefaultRoom)}, nil
}
