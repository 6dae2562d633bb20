package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"roomsync/internal/domain"
)

func TestJournal_WriteRead(t *testing.T) {
	var buf bytes.Buffer
	started := time.Unix(1_800_000_000, 0)
	w, err := NewWriter(&buf, 1, started)
	if err != nil {
		t.Fatal(err)
	}

	records := []Record{
		{Offset: time.Millisecond, ConnID: "c1", Action: domain.ActionReady, Codec: "json"},
		{Offset: 2 * time.Second, ConnID: "c2", Action: domain.ActionSpawn, Codec: "msgpack", Payload: []byte{0x81, 0xa2, 'i', 'd'}},
		{Offset: 3 * time.Second, ConnID: "c1", Action: domain.ActionTickResponse, Codec: "json", Payload: []byte(`{"entities":{}}`)},
	}
	for _, r := range records {
		if err := w.Append(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	j, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if j.Protocol != 1 || !j.StartedAt.Equal(started) {
		t.Errorf("header = %d %v", j.Protocol, j.StartedAt)
	}
	if len(j.Records) != len(records) {
		t.Fatalf("records = %d", len(j.Records))
	}
	for i, want := range records {
		got := j.Records[i]
		if got.Offset != want.Offset || got.ConnID != want.ConnID || got.Action != want.Action ||
			got.Codec != want.Codec || !bytes.Equal(got.Payload, want.Payload) {
			t.Errorf("record %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestJournal_Errors(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("NOPE0000000000000000"))); err == nil {
		t.Error("bad magic accepted")
	}

	var buf bytes.Buffer
	w, _ := NewWriter(&buf, 1, time.Now())
	if err := w.Append(Record{ConnID: "c", Codec: "xml"}); err == nil {
		t.Error("unknown codec accepted")
	}
	_ = w.Append(Record{ConnID: "c", Codec: "json", Payload: []byte("{}")})
	_ = w.Flush()

	truncated := buf.Bytes()[:buf.Len()-1]
	if _, err := Read(bytes.NewReader(truncated)); err == nil {
		t.Error("truncated record accepted")
	}
}

func TestCreate_Load(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "journal")
	w, path, err := Create(dir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Record("c1", domain.ActionJoinRoom, "json", []byte(`{"room":"a"}`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	j, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(j.Records) != 1 || j.Records[0].Action != domain.ActionJoinRoom {
		t.Errorf("records = %+v", j.Records)
	}
}
