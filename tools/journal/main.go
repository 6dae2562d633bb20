package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"roomsync/internal/infrastructure/storage"
)

func main() {
	if len(os.Args) < 3 {
		printHelp()
		return
	}

	j, err := storage.Load(os.Args[2])
	if err != nil {
		fmt.Printf("Invalid journal: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "dump":
		dump(os.Stdout, j)
	case "stats":
		stats(os.Stdout, j)
	default:
		printHelp()
	}
}

// dump печатает записи по одной в строке, payload в виде JSON.
func dump(w io.Writer, j *storage.Journal) {
	fmt.Fprintf(w, "protocol %d, started %s, %d records\n",
		j.Protocol, j.StartedAt.Format(time.RFC3339), len(j.Records))
	for _, r := range j.Records {
		fmt.Fprintf(w, "+%-12s %-36s %-16s %s\n",
			r.Offset.Round(time.Millisecond), r.ConnID, r.Action, payloadText(r))
	}
}

// stats - число запросов по событиям и по подключениям.
func stats(w io.Writer, j *storage.Journal) {
	byEvent := make(map[string]int)
	byConn := make(map[string]int)
	for _, r := range j.Records {
		byEvent[r.Action.String()]++
		byConn[r.ConnID]++
	}

	var span time.Duration
	if n := len(j.Records); n > 0 {
		span = j.Records[n-1].Offset
	}
	fmt.Fprintf(w, "records: %d, connections: %d, span: %s\n", len(j.Records), len(byConn), span.Round(time.Millisecond))
	for _, k := range sortedKeys(byEvent) {
		fmt.Fprintf(w, "  %-16s %d\n", k, byEvent[k])
	}
}

func payloadText(r storage.Record) string {
	if len(r.Payload) == 0 {
		return "-"
	}
	if r.Codec != "msgpack" {
		return string(r.Payload)
	}

	var v any
	dec := msgpack.NewDecoder(bytes.NewReader(r.Payload))
	if err := dec.Decode(&v); err != nil {
		return fmt.Sprintf("<msgpack: %v>", err)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("<msgpack: %v>", err)
	}
	return string(data)
}

func sortedKeys(m map[string]int) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func printHelp() {
	fmt.Println(`Journal Utility - просмотр журнала запросов roomsync
Commands:
  dump <file>     - все записи: смещение, подключение, событие, payload
  stats <file>    - число запросов по событиям и подключениям`)
}
