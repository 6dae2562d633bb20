package domain

import "errors"

var (
	// ErrProtocol - сообщение не разбирается или нарушает протокол.
	// Такие сообщения отбрасываются без разрыва соединения.
	ErrProtocol = errors.New("protocol violation")
	// ErrUnknownType - тип сущности не зарегистрирован в каталоге.
	ErrUnknownType = errors.New("unknown entity type")
	// ErrUnknownEntity - в комнате нет сущности с таким uniqueID.
	ErrUnknownEntity = errors.New("unknown entity")
	// ErrNotAuthoritative - отправитель не владеет сущностью.
	ErrNotAuthoritative = errors.New("not authoritative")
)
