package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"roomsync/internal/domain"
)

const (
	MagicHeader string = `RSJL` // 4 байта
	Version1    uint32 = 1
)

// Коды кодеков в записи.
const (
	codecJSON    uint8 = 0
	codecMsgpack uint8 = 1
)

// FileHeader - точное представление заголовка файла журнала.
// binary.Write пишет его целиком: только массивы и числа.
type FileHeader struct {
	Magic     [4]byte // 4 байта
	Version   uint32  // 4 байта
	Protocol  uint32  // 4 байта
	StartedAt int64   // 8 байт, unix nano
}

// RecordHeader - заголовок каждой записи запроса.
type RecordHeader struct {
	Offset     int64  // 8, наносекунды от StartedAt
	Action     uint8  // 1
	Codec      uint8  // 1
	ConnIDLen  uint8  // 1
	PayloadLen uint32 // 4
}

// Record - один принятый запрос клиента.
type Record struct {
	Offset  time.Duration
	ConnID  string
	Action  domain.ActionType
	Codec   string
	Payload []byte
}

// Journal - содержимое файла журнала.
type Journal struct {
	Protocol  int
	StartedAt time.Time
	Records   []Record
}

// Writer дописывает запросы в журнал. Безопасен для вызова
// из горутин чтения всех подключений.
type Writer struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closer  io.Closer
	started time.Time
}

// Create открывает новый файл журнала в dir.
func Create(dir string, protocol int) (*Writer, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", err
	}
	started := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("journal_%d.rsj", started.Unix()))

	f, err := os.Create(path)
	if err != nil {
		return nil, "", err
	}
	w, err := NewWriter(f, protocol, started)
	if err != nil {
		_ = f.Close()
		return nil, "", err
	}
	w.closer = f
	return w, path, nil
}

// NewWriter пишет заголовок в out и возвращает писателя.
func NewWriter(out io.Writer, protocol int, started time.Time) (*Writer, error) {
	header := FileHeader{
		Version:   Version1,
		Protocol:  uint32(protocol),
		StartedAt: started.UnixNano(),
	}
	copy(header.Magic[:], MagicHeader)

	bw := bufio.NewWriter(out)
	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return &Writer{w: bw, started: started}, nil
}

// Record дописывает запрос со смещением от начала журнала.
func (w *Writer) Record(connID string, action domain.ActionType, codec string, payload []byte) error {
	return w.Append(Record{
		Offset:  time.Since(w.started),
		ConnID:  connID,
		Action:  action,
		Codec:   codec,
		Payload: payload,
	})
}

// Append дописывает готовую запись.
func (w *Writer) Append(r Record) error {
	connBytes := []byte(r.ConnID)
	if len(connBytes) > math.MaxUint8 {
		return fmt.Errorf("conn id too long: %d", len(connBytes))
	}
	if uint64(len(r.Payload)) > math.MaxUint32 {
		return fmt.Errorf("payload too long: %d", len(r.Payload))
	}
	code, err := codecCode(r.Codec)
	if err != nil {
		return err
	}

	rh := RecordHeader{
		Offset:     int64(r.Offset),
		Action:     uint8(r.Action),
		Codec:      code,
		ConnIDLen:  uint8(len(connBytes)),
		PayloadLen: uint32(len(r.Payload)),
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	// Пишем заголовок записи одной командой
	if err := binary.Write(w.w, binary.LittleEndian, &rh); err != nil {
		return err
	}
	// Пишем динамические данные (тело)
	if _, err := w.w.Write(connBytes); err != nil {
		return err
	}
	if _, err := w.w.Write(r.Payload); err != nil {
		return err
	}
	return nil
}

// Flush сбрасывает буфер в файл.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Flush()
}

// Close сбрасывает буфер и закрывает файл, если журнал открыт через Create.
func (w *Writer) Close() error {
	err := w.Flush()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func codecCode(name string) (uint8, error) {
	switch name {
	case "", "json":
		return codecJSON, nil
	case "msgpack":
		return codecMsgpack, nil
	}
	return 0, fmt.Errorf("unknown codec %q", name)
}

func codecName(code uint8) (string, error) {
	switch code {
	case codecJSON:
		return "json", nil
	case codecMsgpack:
		return "msgpack", nil
	}
	return "", fmt.Errorf("unknown codec code %d", code)
}
