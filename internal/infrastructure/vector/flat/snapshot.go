package flat

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"math"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

var snapshotMagic = [8]byte{'A', 'D', 'G', 'M', 'I', 'D', 'X', '1'}

const (
	snapshotVersion  uint32 = 1
	maxSnapshotField        = 16 << 20
)

var ErrCorruptSnapshot = errors.New("corrupt index snapshot")

// Layout (little endian):
//
//	magic[8] version:u32 dim:u32 count:u32
//	count * { vector:f32[dim] text:str url:str source:str chunk_id:u32 }
//	crc32(all previous bytes):u32
//
// str is u32 length followed by UTF-8 bytes.
func (ix *Index) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(snapshotMagic[:])
	writeU32(&buf, snapshotVersion)
	writeU32(&buf, uint32(ix.dimension))
	writeU32(&buf, uint32(len(ix.chunks)))
	for _, chunk := range ix.chunks {
		for _, v := range chunk.Vector {
			writeU32(&buf, math.Float32bits(v))
		}
		writeString(&buf, chunk.Text)
		writeString(&buf, chunk.Metadata.URL)
		writeString(&buf, chunk.Metadata.Source)
		writeU32(&buf, uint32(chunk.Metadata.ChunkID))
	}
	writeU32(&buf, crc32.ChecksumIEEE(buf.Bytes()))
	return buf.Bytes(), nil
}

func (ix *Index) UnmarshalBinary(data []byte) error {
	if len(data) < len(snapshotMagic)+16 {
		return fmt.Errorf("%w: truncated header", ErrCorruptSnapshot)
	}
	body, trailer := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(trailer) {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptSnapshot)
	}
	if !bytes.Equal(body[:len(snapshotMagic)], snapshotMagic[:]) {
		return fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}

	r := bytes.NewReader(body[len(snapshotMagic):])
	var version, dim, count uint32
	for _, dst := range []*uint32{&version, &dim, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return fmt.Errorf("%w: header: %v", ErrCorruptSnapshot, err)
		}
	}
	if version != snapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrCorruptSnapshot, version)
	}
	if count > 0 && dim == 0 {
		return fmt.Errorf("%w: zero dimension", ErrCorruptSnapshot)
	}

	chunks := make([]domain.IndexChunk, 0, min(int(count), 1<<16))
	for i := uint32(0); i < count; i++ {
		vector := make([]float32, dim)
		for j := range vector {
			bits, err := readU32(r)
			if err != nil {
				return fmt.Errorf("%w: record %d vector: %v", ErrCorruptSnapshot, i, err)
			}
			vector[j] = math.Float32frombits(bits)
		}
		text, err := readString(r)
		if err != nil {
			return fmt.Errorf("%w: record %d text: %v", ErrCorruptSnapshot, i, err)
		}
		url, err := readString(r)
		if err != nil {
			return fmt.Errorf("%w: record %d url: %v", ErrCorruptSnapshot, i, err)
		}
		source, err := readString(r)
		if err != nil {
			return fmt.Errorf("%w: record %d source: %v", ErrCorruptSnapshot, i, err)
		}
		chunkID, err := readU32(r)
		if err != nil {
			return fmt.Errorf("%w: record %d chunk id: %v", ErrCorruptSnapshot, i, err)
		}
		chunks = append(chunks, domain.IndexChunk{
			Text: text,
			Metadata: domain.ChunkMetadata{
				Source:  source,
				URL:     url,
				ChunkID: int(chunkID),
			},
			Vector: vector,
		})
	}
	if r.Len() != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptSnapshot, r.Len())
	}

	ix.dimension = int(dim)
	ix.chunks = chunks
	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	if n > maxSnapshotField || int(n) > r.Len() {
		return "", fmt.Errorf("string length %d out of range", n)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
