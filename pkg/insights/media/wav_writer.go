package media

import (
	"encoding/binary"
	"io"
	"os"
	"sync"
)

const wavHeaderSize = 44

// WAVWriter wraps raw little endian 16 bit PCM into a WAV container.
type WAVWriter struct {
	writer      io.WriteSeeker
	sampleRate  uint32
	numChannels uint16

	mu       sync.Mutex
	numBytes uint32
}

type wavHeader struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// NewWAVWriter writes a header with placeholder sizes, which are fixed on Close.
func NewWAVWriter(out io.WriteSeeker, sampleRate uint32, numChannels uint16) (*WAVWriter, error) {
	w := &WAVWriter{
		writer:      out,
		sampleRate:  sampleRate,
		numChannels: numChannels,
	}

	if err := binary.Write(w.writer, binary.LittleEndian, w.header()); err != nil {
		return nil, err
	}
	return w, nil
}

// CreateWAVFile creates path and returns a writer for it. Closing the
// writer also closes the file.
func CreateWAVFile(path string, sampleRate uint32, numChannels uint16) (*WAVWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := NewWAVWriter(f, sampleRate, numChannels)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

// Write appends PCM bytes to the data chunk.
func (w *WAVWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err := w.writer.Write(p)
	w.numBytes += uint32(n)
	return n, err
}

// Close finalizes the WAV file by updating the header with the correct sizes.
func (w *WAVWriter) Close() error {
	if err := w.updateHeader(); err != nil {
		return err
	}
	if f, ok := w.writer.(*os.File); ok {
		return f.Close()
	}
	return nil
}

func (w *WAVWriter) SampleRate() int {
	return int(w.sampleRate)
}

// DataSize is the number of PCM bytes written so far.
func (w *WAVWriter) DataSize() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.numBytes
}

func (w *WAVWriter) header() wavHeader {
	return wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     w.numBytes + wavHeaderSize - 8,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   w.numChannels,
		SampleRate:    w.sampleRate,
		ByteRate:      w.sampleRate * uint32(w.numChannels) * 2,
		BlockAlign:    w.numChannels * 2,
		BitsPerSample: 16,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: w.numBytes,
	}
}

// updateHeader seeks back to the beginning and rewrites the header with the final sizes.
func (w *WAVWriter) updateHeader() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.writer.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Write(w.writer, binary.LittleEndian, w.header()); err != nil {
		return err
	}
	_, err := w.writer.Seek(0, io.SeekEnd)
	return err
}
