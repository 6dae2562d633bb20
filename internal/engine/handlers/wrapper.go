package handlers

import (
	"fmt"

	"roomsync/internal/domain"
	"roomsync/pkg/api"
)

// TypedHandlerFunc - это "чистый" хендлер, который работает с готовой структурой T
type TypedHandlerFunc[T any] func(ctx Context, payload T) (Result, error)

// EmptyHandlerFunc - хендлер, которому НЕ нужны данные (ready)
type EmptyHandlerFunc func(ctx Context) (Result, error)

// WithPayload берет "чистый" хендлер и превращает его в стандартный HandlerFunc.
// Она берет на себя разбор payload (любым кодеком) и Validate.
func WithPayload[T any](handler TypedHandlerFunc[T]) HandlerFunc {
	return func(ctx Context, in api.Inbound) (Result, error) {
		var payload T

		// 1. Распаковка
		if err := in.Bind(&payload); err != nil {
			return Result{}, err
		}

		// 2. Автоматическая валидация
		// Проверяем, реализует ли структура T интерфейс Validator
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return Result{}, fmt.Errorf("%w: validation failed: %v", domain.ErrProtocol, err)
			}
		}

		// 3. Вызов чистой логики
		return handler(ctx, payload)
	}
}

// WithEmptyPayload - обертка для событий без данных (ready)
func WithEmptyPayload(handler EmptyHandlerFunc) HandlerFunc {
	return func(ctx Context, _ api.Inbound) (Result, error) {
		// Payload игнорируется, логике он не нужен.
		return handler(ctx)
	}
}

// InRoom - обертка для запросов, которые имеют смысл только внутри комнаты.
func InRoom(next HandlerFunc) HandlerFunc {
	return func(ctx Context, in api.Inbound) (Result, error) {
		if ctx.Room == "" {
			return Result{}, fmt.Errorf("%w: %s before joining a room", domain.ErrProtocol, in.Event)
		}
		return next(ctx, in)
	}
}
