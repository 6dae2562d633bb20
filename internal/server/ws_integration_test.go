package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"roomsync/internal/catalog"
	"roomsync/internal/domain"
	"roomsync/internal/engine"
	"roomsync/pkg/api"
	"roomsync/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

type wsPeer struct {
	t     *testing.T
	conn  *websocket.Conn
	codec api.Codec
	id    string
}

func newTestServer(t *testing.T) (*engine.GameService, *httptest.Server) {
	t.Helper()
	cfg := engine.NewConfig()
	cfg.Environment = []string{"world"}
	game := engine.NewService(cfg, catalog.Default())
	game.SeedEnvironment()

	srv := httptest.NewServer(New(game, cfg.Port).Handler())
	t.Cleanup(srv.Close)
	return game, srv
}

func dial(t *testing.T, srv *httptest.Server, codecName string) *wsPeer {
	t.Helper()
	codec, err := api.CodecByName(codecName)
	if err != nil {
		t.Fatal(err)
	}
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?codec=" + codecName
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	p := &wsPeer{t: t, conn: conn, codec: codec}
	var welcome api.WelcomePayload
	p.waitFor(api.EventWelcome, &welcome)
	p.id = welcome.ID
	return p
}

func (p *wsPeer) send(event string, payload any) {
	p.t.Helper()
	data, err := p.codec.Encode(api.Message{Event: event, Payload: payload})
	if err != nil {
		p.t.Fatalf("encode %s: %v", event, err)
	}
	frame := websocket.TextMessage
	if p.codec.Binary() {
		frame = websocket.BinaryMessage
	}
	if err := p.conn.WriteMessage(frame, data); err != nil {
		p.t.Fatalf("write %s: %v", event, err)
	}
}

// waitFor читает кадры, пока не встретит событие event, и разбирает его payload в out.
func (p *wsPeer) waitFor(event string, out any) {
	p.t.Helper()
	p.waitUntil(event, out, func() bool { return true })
}

func (p *wsPeer) waitUntil(event string, out any, done func() bool) {
	p.t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		if err := p.conn.SetReadDeadline(deadline); err != nil {
			p.t.Fatal(err)
		}
		_, data, err := p.conn.ReadMessage()
		if err != nil {
			p.t.Fatalf("waiting for %s: %v", event, err)
		}
		in, err := p.codec.Decode(data)
		if err != nil {
			p.t.Fatalf("decode: %v", err)
		}
		if in.Event != event {
			continue
		}
		if err := in.Bind(out); err != nil {
			p.t.Fatalf("bind %s: %v", event, err)
		}
		if done() {
			return
		}
	}
}

func TestWebSocket_JoinSpawnReplicate(t *testing.T) {
	game, srv := newTestServer(t)

	alice := dial(t, srv, api.CodecJSON)
	bob := dial(t, srv, api.CodecMsgpack)

	alice.send(api.EventReady, nil)
	var joined api.MembershipPayload
	alice.waitFor(api.EventClientJoinedRoom, &joined)
	if joined.Room != "lobby" || joined.ID != alice.id {
		t.Fatalf("joined = %+v", joined)
	}

	bob.send(api.EventReady, nil)
	bob.waitUntil(api.EventClientJoinedRoom, &joined, func() bool { return joined.ID == bob.id })
	if len(joined.Clients) != 2 {
		t.Fatalf("clients = %v", joined.Clients)
	}

	ownerIsPlayer := map[string]any{"propID": "player", "ownerIsPlayer": true}
	alice.send(api.EventRequestSpawn, api.SpawnPayload{
		ID:   catalog.TypeCharacter,
		Args: domain.EntityPatch{Position: &domain.Vec3{Y: 2}, Fields: ownerIsPlayer},
	})

	var spawned api.SpawnNotice
	bob.waitFor(api.EventServerSpawn, &spawned)
	if spawned.Entity.OwnerID != alice.id || spawned.Entity.Type != catalog.TypeCharacter {
		t.Fatalf("spawned = %s", spawned.Entity)
	}

	alice.send(api.EventTickResponse, api.TickResponsePayload{Entities: map[string]domain.EntityPatch{
		spawned.Entity.UniqueID: {Position: &domain.Vec3{X: 4, Y: 2}},
	}})

	// тик рассылается вручную, чтобы не зависеть от таймера
	var tick api.ServerTickPayload
	deadline := time.Now().Add(3 * time.Second)
	for {
		if e, ok := game.Store.Entity("lobby", spawned.Entity.UniqueID); ok && e.Position.X == 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("tick response never merged")
		}
		time.Sleep(5 * time.Millisecond)
	}
	game.Scheduler.BroadcastOnce()
	bob.waitFor(api.EventServerTick, &tick)

	got, ok := tick.Entities[spawned.Entity.UniqueID]
	if !ok || got.Position.X != 4 {
		t.Fatalf("tick entity = %+v", got)
	}
	if len(tick.Entities) != 2 {
		t.Errorf("tick entities = %d, want character and environment prop", len(tick.Entities))
	}
}

func TestWebSocket_DisconnectPurgesOwnedEntities(t *testing.T) {
	game, srv := newTestServer(t)

	alice := dial(t, srv, api.CodecJSON)
	bob := dial(t, srv, api.CodecJSON)
	alice.send(api.EventReady, nil)
	bob.send(api.EventReady, nil)
	var joined api.MembershipPayload
	bob.waitUntil(api.EventClientJoinedRoom, &joined, func() bool { return len(joined.Clients) == 2 })

	alice.send(api.EventRequestSpawn, api.SpawnPayload{ID: catalog.TypeProp})
	var spawned api.SpawnNotice
	bob.waitFor(api.EventServerSpawn, &spawned)

	alice.conn.Close()

	var gone api.PresencePayload
	bob.waitFor(api.EventClientDisconnected, &gone)
	if gone.ID != alice.id || len(gone.Clients) != 1 {
		t.Fatalf("clientDisconnected = %+v", gone)
	}
	if _, ok := game.Store.Entity("lobby", spawned.Entity.UniqueID); ok {
		t.Error("owned entity survived disconnect")
	}
}

func TestWebSocket_MalformedMessageKeepsConnection(t *testing.T) {
	_, srv := newTestServer(t)
	alice := dial(t, srv, api.CodecJSON)

	if err := alice.conn.WriteMessage(websocket.TextMessage, []byte(`{garbage`)); err != nil {
		t.Fatal(err)
	}
	alice.send("noSuchEvent", map[string]any{"x": 1})
	alice.send(api.EventReady, nil)

	var joined api.MembershipPayload
	alice.waitFor(api.EventClientJoinedRoom, &joined)
}

func TestHTTP_Endpoints(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
	}{
		{"/health", http.StatusOK},
		{"/version", http.StatusOK},
		{"/debug/rooms", http.StatusOK},
		{"/debug/entities?room=lobby", http.StatusOK},
		{"/debug/entities?room=nowhere", http.StatusNotFound},
		{"/debug/clients", http.StatusOK},
		{"/debug/catalog", http.StatusOK},
		{"/ws?codec=xml", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}

	resp, err := http.Get(srv.URL + "/debug/rooms")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var rooms []engine.RoomInfo
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatal(err)
	}
	if len(rooms) != 1 || rooms[0].Name != "lobby" || rooms[0].Entities != 1 {
		t.Errorf("rooms = %+v", rooms)
	}

	resp, err = http.Get(srv.URL + "/debug/catalog")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var types []struct {
		Type       string `json:"type"`
		Physics    bool   `json:"physics"`
		Controller string `json:"controller"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&types); err != nil {
		t.Fatal(err)
	}
	found := false
	for _, ty := range types {
		if ty.Type == catalog.TypeCharacter {
			found = ty.Physics && ty.Controller == catalog.ControllerCharacter
		}
	}
	if !found {
		t.Errorf("catalog = %+v", types)
	}
}
