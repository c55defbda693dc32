package main

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAnswerWav_UsesSynthesisRate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "answer.wav")
	wav, err := createAnswerWav(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = wav.Write(make([]byte, 320)); err != nil {
		t.Fatal(err)
	}
	if err = wav.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < 44 {
		t.Fatalf("short wav file: %d bytes", len(data))
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 16000 {
		t.Errorf("expected 16000 Hz header, got %d", rate)
	}
	if byteRate := binary.LittleEndian.Uint32(data[28:32]); byteRate != 32000 {
		t.Errorf("expected byte rate 32000, got %d", byteRate)
	}
}
