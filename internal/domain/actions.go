package domain

import "strings"

// ActionType - Внутренний числовой идентификатор запроса клиента
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionReady
	ActionJoinRoom
	ActionSpawn
	ActionDespawn
	ActionTickResponse
)

// Маппинг для конвертации имени события -> Domain.
// Ключи в нижнем регистре, сравнение нечувствительно к регистру.
var actionStringToCmd = map[string]ActionType{
	"ready":           ActionReady,
	"requestjoinroom": ActionJoinRoom,
	"requestspawn":    ActionSpawn,
	"requestdespawn":  ActionDespawn,
	"tickresponse":    ActionTickResponse,
}

// Маппинг для логов Domain -> String
var actionCmdToString = map[ActionType]string{
	ActionReady:        "ready",
	ActionJoinRoom:     "requestJoinRoom",
	ActionSpawn:        "requestSpawn",
	ActionDespawn:      "requestDespawn",
	ActionTickResponse: "tickResponse",
}

// ParseAction конвертирует имя события в ActionType
func ParseAction(s string) ActionType {
	if val, ok := actionStringToCmd[strings.ToLower(s)]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "unknown"
}
