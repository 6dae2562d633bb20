package actions

import (
	"errors"
	"fmt"
	"sort"

	"roomsync/internal/domain"
	"roomsync/internal/engine/handlers"
	"roomsync/pkg/api"
)

// HandleTickResponse вливает состояние сущностей, которыми владеет отправитель.
//
// Каждая сущность обрабатывается отдельно: чужие и неизвестные пропускаются,
// остальные применяются. Ошибка возвращается, если пропущена хотя бы одна.
func HandleTickResponse(ctx handlers.Context, p api.TickResponsePayload) (handlers.Result, error) {
	ids := make([]string, 0, len(p.Entities))
	for id := range p.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	who := ctx.Who()
	merged := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Store.MergeEntity(ctx.Room, id, p.Entities[id], who); err != nil {
			errs = append(errs, err)
			continue
		}
		merged++
	}

	if len(errs) > 0 {
		return handlers.Result{}, fmt.Errorf("%w: tickResponse: merged %d of %d: %w",
			domain.ErrProtocol, merged, len(ids), errors.Join(errs...))
	}
	return handlers.EmptyResult(), nil
}
