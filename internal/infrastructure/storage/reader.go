package storage

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"roomsync/internal/domain"
)

// Load читает журнал из файла.
func Load(path string) (*Journal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(bufio.NewReader(f))
}

// Read читает журнал до конца потока. Обрезанная последняя запись - ошибка.
func Read(r io.Reader) (*Journal, error) {
	// 1. Читаем заголовок целиком
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("invalid magic")
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}

	j := &Journal{
		Protocol:  int(header.Protocol),
		StartedAt: time.Unix(0, header.StartedAt),
	}

	// 2. Читаем записи
	for {
		var rh RecordHeader
		err := binary.Read(r, binary.LittleEndian, &rh)
		if errors.Is(err, io.EOF) {
			return j, nil
		}
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(j.Records), err)
		}

		codec, err := codecName(rh.Codec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(j.Records), err)
		}
		rec := Record{
			Offset: time.Duration(rh.Offset),
			Action: domain.ActionType(rh.Action),
			Codec:  codec,
		}

		connBuf := make([]byte, rh.ConnIDLen)
		if _, err := io.ReadFull(r, connBuf); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(j.Records), err)
		}
		rec.ConnID = string(connBuf)

		if rh.PayloadLen > 0 {
			rec.Payload = make([]byte, rh.PayloadLen)
			if _, err := io.ReadFull(r, rec.Payload); err != nil {
				return nil, fmt.Errorf("record %d: %w", len(j.Records), err)
			}
		}

		j.Records = append(j.Records, rec)
	}
}
