package api

import (
	"errors"
	"fmt"
)

// MaxRoomNameLength ограничение на длину имени комнаты.
const MaxRoomNameLength = 64

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func (p JoinRoomPayload) Validate() error {
	if p.Room == "" {
		return errors.New("room is required")
	}
	if len(p.Room) > MaxRoomNameLength {
		return fmt.Errorf("room name longer than %d", MaxRoomNameLength)
	}
	return nil
}

func (p SpawnPayload) Validate() error {
	if p.ID == "" {
		return errors.New("id is required")
	}
	if p.Args.UniqueID != nil {
		return errors.New("uniqueID is assigned by the server")
	}
	if p.Args.Type != nil && *p.Args.Type != p.ID {
		return errors.New("args.id does not match id")
	}
	return nil
}

func (p DespawnPayload) Validate() error {
	if p.UniqueID == "" {
		return errors.New("uniqueID is required")
	}
	return nil
}

func (p TickResponsePayload) Validate() error {
	for id := range p.Entities {
		if id == "" {
			return errors.New("empty uniqueID in entities")
		}
	}
	return nil
}
