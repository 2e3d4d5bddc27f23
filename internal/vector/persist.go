package vector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// vecMagic identifies the flat vector file format.
const vecMagic = uint32(0x4B424656) // "KBFV"

// Metadata is the positional metadata array persisted next to each flat
// vector file: entry i describes the entity behind vector i.
type Metadata []map[string]any

// Save writes the index as a flat little-endian float32 file with a small
// header (magic, dimensions, count) plus the positional metadata JSON.
func (idx *Index) Save(vecPath, metaPath string, meta Metadata) error {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(meta) != len(idx.vectors) {
		return fmt.Errorf("metadata length %d does not match vector count %d", len(meta), len(idx.vectors))
	}

	if err := os.MkdirAll(filepath.Dir(vecPath), 0o755); err != nil {
		return fmt.Errorf("failed to create vector directory: %w", err)
	}

	f, err := os.Create(vecPath)
	if err != nil {
		return fmt.Errorf("failed to create vector file: %w", err)
	}
	defer func() { _ = f.Close() }()

	w := bufio.NewWriter(f)
	header := []uint32{vecMagic, uint32(idx.dims), uint32(len(idx.vectors))}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return fmt.Errorf("failed to write vector header: %w", err)
		}
	}
	for _, vec := range idx.vectors {
		for _, val := range vec {
			if err := binary.Write(w, binary.LittleEndian, math.Float32bits(val)); err != nil {
				return fmt.Errorf("failed to write vector data: %w", err)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush vector file: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal vector metadata: %w", err)
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vector metadata: %w", err)
	}
	return nil
}

// Load rebuilds an index and its metadata from the flat file pair written
// by Save. The graph is reconstructed in positional order.
func Load(vecPath, metaPath string) (*Index, Metadata, error) {
	f, err := os.Open(vecPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open vector file: %w", err)
	}
	defer func() { _ = f.Close() }()

	r := bufio.NewReader(f)
	var magic, dims, count uint32
	for _, dst := range []*uint32{&magic, &dims, &count} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, nil, fmt.Errorf("failed to read vector header: %w", err)
		}
	}
	if magic != vecMagic {
		return nil, nil, fmt.Errorf("not a kbforge vector file: %s", vecPath)
	}

	vectors := make([][]float32, count)
	for i := range vectors {
		vec := make([]float32, dims)
		for j := range vec {
			var bits uint32
			if err := binary.Read(r, binary.LittleEndian, &bits); err != nil {
				return nil, nil, fmt.Errorf("failed to read vector %d: %w", i, err)
			}
			vec[j] = math.Float32frombits(bits)
		}
		vectors[i] = vec
	}

	idx := NewIndex(int(dims))
	if err := idx.Add(vectors); err != nil {
		return nil, nil, err
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read vector metadata: %w", err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, nil, fmt.Errorf("failed to parse vector metadata: %w", err)
	}
	if len(meta) != int(count) {
		return nil, nil, fmt.Errorf("vector metadata length %d does not match vector count %d", len(meta), count)
	}
	return idx, meta, nil
}
