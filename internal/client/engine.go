package client

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"roomsync/internal/catalog"
	"roomsync/internal/domain"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

// Transport - исходящая сторона соединения с сервером.
type Transport interface {
	Emit(msg api.Message) error
}

// Options - внешние коллабораторы движка. Пустые поля заменяются заглушками.
type Options struct {
	Scene   Scene
	Physics Physics
	Input   Input
	// OnJoinedRoom вызывается внутри кадра, когда сам клиент вошел в комнату.
	OnJoinedRoom func(room string)
}

// Engine - клиентская сторона репликации: кэш реплик, согласование
// со снимками сервера и ответы на тик. Все методы, кроме Queue().Push,
// вызываются из одного цикла кадров.
type Engine struct {
	cfg     Config
	catalog *catalog.Catalog
	out     Transport
	queue   *Queue
	cache   *Cache

	scene   Scene
	physics Physics
	input   Input

	onJoinedRoom func(room string)

	id      string
	room    string
	clients []string

	// snapshotFolded - с прошлого ответа на тик получен хотя бы один снимок.
	snapshotFolded bool

	log *logrus.Entry
}

func NewEngine(cfg Config, cat *catalog.Catalog, out Transport, opts Options) *Engine {
	e := &Engine{
		cfg:          cfg,
		catalog:      cat,
		out:          out,
		queue:        NewQueue(cfg.QueueSize),
		cache:        NewCache(),
		scene:        opts.Scene,
		physics:      opts.Physics,
		input:        opts.Input,
		onJoinedRoom: opts.OnJoinedRoom,
		log:          logger.Component("client"),
	}
	if e.scene == nil {
		e.scene = nopScene{}
	}
	if e.physics == nil {
		e.physics = nopPhysics{}
	}
	if e.input == nil {
		e.input = nopInput{}
	}
	if e.cfg.BlendDecay <= 0 {
		e.cfg.BlendDecay = DefaultBlendDecay
	}
	return e
}

// Queue - входящая очередь. Сетевая горутина кладет сюда сообщения.
func (e *Engine) Queue() *Queue { return e.queue }

// SetTransport задает исходящую сторону после Dial.
func (e *Engine) SetTransport(out Transport) { e.out = out }

func (e *Engine) ID() string        { return e.id }
func (e *Engine) Room() string      { return e.room }
func (e *Engine) Clients() []string { return append([]string(nil), e.clients...) }

// Replica возвращает реплику по uniqueID.
func (e *Engine) Replica(uniqueID string) (*Replica, bool) {
	return e.cache.Get(uniqueID)
}

// ReplicaIDs - uniqueID всех живых реплик.
func (e *Engine) ReplicaIDs() []string {
	return e.cache.IDs()
}

// --- Запросы к серверу ---

func (e *Engine) Ready() error {
	return e.emit(api.Message{Event: api.EventReady})
}

func (e *Engine) RequestJoinRoom(room string) error {
	return e.emit(api.Message{Event: api.EventRequestJoinRoom, Payload: api.JoinRoomPayload{Room: room}})
}

// RequestSpawn просит сервер создать сущность. Реплика появится
// по serverSpawn или со следующим снимком.
func (e *Engine) RequestSpawn(typeTag string, args domain.EntityPatch) error {
	if !e.catalog.Has(typeTag) {
		return fmt.Errorf("%w: %q", domain.ErrUnknownType, typeTag)
	}
	return e.emit(api.Message{Event: api.EventRequestSpawn, Payload: api.SpawnPayload{ID: typeTag, Args: args}})
}

func (e *Engine) RequestDespawn(uniqueID string) error {
	return e.emit(api.Message{Event: api.EventRequestDespawn, Payload: api.DespawnPayload{UniqueID: uniqueID}})
}

func (e *Engine) emit(msg api.Message) error {
	if e.out == nil {
		return fmt.Errorf("client: not connected")
	}
	return e.out.Emit(msg)
}

// SpawnLocal создает локальную сущность (владелец OwnerLocal).
// Она симулируется клиентом и никогда не уходит на сервер.
func (e *Engine) SpawnLocal(typeTag string, args domain.EntityPatch) (*Replica, error) {
	state := domain.NewEntityState("local-"+uuid.NewString(), typeTag, domain.OwnerLocal)
	args.UniqueID, args.Type, args.OwnerID = nil, nil, nil
	state.Apply(args)
	return e.spawn(state)
}

// --- Кадр ---

// Frame - один шаг клиента: входящие сообщения, физика, симуляция
// своих реплик и смешивание чужих, затем ответ на тик.
func (e *Engine) Frame(dt float64) {
	for _, msg := range e.queue.Drain() {
		e.Apply(msg)
	}

	e.physics.Step(dt)

	alpha := BlendAlpha(e.cfg.BlendDecay, dt)
	for _, id := range e.cache.IDs() {
		r, _ := e.cache.Get(id)
		if r.AuthoritativeFor(e.id) {
			e.simulate(r, dt)
			r.Visible = r.Target()
			continue
		}
		if r.Def.Caps.Has(catalog.CapPhysics) {
			e.physics.SetPose(id, bodyPose(&r.State))
		}
		r.Visible = Blend(r.Visible, r.Target(), alpha)
	}

	if e.snapshotFolded {
		e.snapshotFolded = false
		e.pushTickResponse()
	}
}

// simulate - своя реплика: контроллер ввода, затем чтение позы из физики.
func (e *Engine) simulate(r *Replica, dt float64) {
	if r.Def.Caps.Has(catalog.CapInput) {
		simulateController(r, e.input, e.physics, dt)
	}
	if !r.Def.Caps.Has(catalog.CapPhysics) {
		return
	}
	p, ok := e.physics.Pose(r.ID())
	if !ok {
		return
	}
	offset := toVec(r.State.Vector("offset", domain.Vec3{}))
	r.State.Position = fromVec(p.Position.Add(offset))
	if !r.State.Bool("ignoreRotation", false) {
		r.State.Rotation = quatToEuler(p.Rotation)
	}
}

// pushTickResponse отправляет состояние всех своих сетевых реплик одним сообщением.
func (e *Engine) pushTickResponse() {
	if e.id == "" || e.room == "" {
		return
	}
	entities := make(map[string]domain.EntityPatch)
	for _, id := range e.cache.Networked() {
		r, _ := e.cache.Get(id)
		if r.AuthoritativeFor(e.id) {
			entities[id] = domain.PatchFromState(r.State).WithoutIdentity()
		}
	}
	if len(entities) == 0 {
		return
	}
	err := e.emit(api.Message{
		Event:    api.EventTickResponse,
		Payload:  api.TickResponsePayload{Entities: entities},
		Volatile: true,
	})
	if err != nil {
		e.log.WithError(err).Debug("tick response not sent")
	}
}

// --- Входящие сообщения ---

// Apply применяет одно сообщение сервера. Вызывается из Frame.
func (e *Engine) Apply(msg Inbound) {
	switch p := msg.Payload.(type) {
	case api.WelcomePayload:
		e.id = p.ID
		e.log = logger.Component("client").WithField("conn_id", p.ID)
		e.log.WithField("protocol", p.Protocol).Info("Welcome received")
		if p.Protocol != api.ProtocolVersion {
			e.log.Warnf("server protocol %d, client protocol %d", p.Protocol, api.ProtocolVersion)
		}

	case api.PresencePayload:
		e.log.WithField("event", msg.Event).WithField("peer", p.ID).Debug("Presence changed")

	case api.MembershipPayload:
		e.applyMembership(msg.Event, p)

	case api.ServerTickPayload:
		e.ApplySnapshot(p)

	case api.SpawnNotice:
		if e.room != "" && !e.cache.Has(p.Entity.UniqueID) {
			if _, err := e.spawn(p.Entity); err != nil {
				e.log.WithError(err).WithField("unique_id", p.Entity.UniqueID).Warn("Spawn skipped")
			}
		}

	case api.DespawnNotice:
		e.Destroy(p.UniqueID)

	default:
		e.log.WithField("event", msg.Event).Warn("Unexpected message")
	}
}

func (e *Engine) applyMembership(event string, p api.MembershipPayload) {
	self := p.ID == e.id && e.id != ""
	switch event {
	case api.EventClientJoinedRoom:
		if self {
			e.room = p.Room
			e.log.WithField("room", p.Room).Info("Joined room")
		}
		if p.Room == e.room {
			e.clients = append([]string(nil), p.Clients...)
		}
		if self && e.onJoinedRoom != nil {
			e.onJoinedRoom(p.Room)
		}

	case api.EventClientLeftRoom:
		if self && p.Room == e.room {
			for _, id := range e.cache.Networked() {
				e.Destroy(id)
			}
			e.log.WithField("room", p.Room).Info("Left room")
			e.room = ""
			e.clients = nil
			return
		}
		if p.Room == e.room {
			e.clients = append([]string(nil), p.Clients...)
		}
	}
}

// ApplySnapshot сворачивает снимок комнаты в кэш реплик.
// Снимок чужой комнаты игнорируется. Возвращает false, если снимок не применен.
func (e *Engine) ApplySnapshot(tick api.ServerTickPayload) bool {
	if e.room == "" || tick.Room != e.room {
		return false
	}
	e.clients = append([]string(nil), tick.Clients...)

	destroyed := make(map[string]bool, len(tick.DestroyQueue))
	for _, id := range tick.DestroyQueue {
		destroyed[id] = true
		e.Destroy(id)
	}

	// сетевые реплики, которых больше нет в комнате
	for _, id := range e.cache.Networked() {
		if _, ok := tick.Entities[id]; !ok {
			e.Destroy(id)
		}
	}

	ids := make([]string, 0, len(tick.Entities))
	for id := range tick.Entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if destroyed[id] {
			continue
		}
		received := tick.Entities[id]
		received.UniqueID = id

		r, ok := e.cache.Get(id)
		if !ok {
			if _, err := e.spawn(received); err != nil {
				e.log.WithError(err).WithField("unique_id", id).Warn("Spawn skipped")
			}
			continue
		}
		if r.AuthoritativeFor(e.id) {
			continue
		}
		state, _, err := e.catalog.Build(received)
		if err != nil {
			e.log.WithError(err).WithField("unique_id", id).Warn("Update skipped")
			continue
		}
		r.State = state
	}

	e.snapshotFolded = true
	return true
}

// spawn создает реплику через каталог: умолчания типа, поверх полученные поля.
func (e *Engine) spawn(received domain.EntityState) (*Replica, error) {
	state, def, err := e.catalog.Build(received)
	if err != nil {
		return nil, err
	}
	r := newReplica(state, def)
	if !e.cache.Add(r) {
		return nil, fmt.Errorf("replica %s already exists", r.ID())
	}

	e.scene.Add(r.ID(), r)
	if def.Caps.Has(catalog.CapPhysics) {
		e.physics.CreateBody(r.ID(), BodySpecFrom(&r.State))
	}
	e.log.WithFields(logrus.Fields{
		"unique_id": r.ID(),
		"type":      state.Type,
		"owner":     state.OwnerID,
	}).Debug("Replica spawned")
	return r, nil
}

// Destroy удаляет реплику. Повторный вызов ничего не делает.
func (e *Engine) Destroy(uniqueID string) bool {
	r, ok := e.cache.Remove(uniqueID)
	if !ok {
		return false
	}
	e.scene.Remove(uniqueID)
	if r.Def.Caps.Has(catalog.CapPhysics) {
		e.physics.RemoveBody(uniqueID)
	}
	e.log.WithField("unique_id", uniqueID).Debug("Replica destroyed")
	return true
}
