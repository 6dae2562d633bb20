package domain

// Identity - кто спрашивает о праве записи: сервер или клиент с данным ID.
type Identity struct {
	ID     string
	Server bool
}

// ServerIdentity - идентичность самого сервера.
var ServerIdentity = Identity{ID: OwnerServer, Server: true}

// ClientIdentity - идентичность подключенного клиента.
func ClientIdentity(id string) Identity {
	return Identity{ID: id}
}

// IsAuthoritative - единственное правило владения для обеих сторон.
//
// Клиент авторитетен для своих сущностей и для локальных.
// Сервер авторитетен только для сущностей с владельцем OwnerServer.
// Пустой ID (клиент еще не получил welcome) не владеет ничем.
func IsAuthoritative(e *EntityState, who Identity) bool {
	switch e.OwnerID {
	case OwnerServer:
		return who.Server
	case OwnerLocal:
		return !who.Server
	case "":
		return false
	}
	return !who.Server && who.ID != "" && e.OwnerID == who.ID
}
