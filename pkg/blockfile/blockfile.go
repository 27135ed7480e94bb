// Package blockfile implements the on-disk block file: a single file of
// fixed-size 512-byte blocks, with block 0 reserved for a small header
// carrying the format magic, the root block id, and the next block id to
// allocate.
package blockfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

const (
	// BlockSize is the fixed size, in bytes, of every block in the file
	// including the header block.
	BlockSize = 512

	// Magic identifies a valid index file. It occupies the first 8 bytes
	// of block 0.
	Magic = "4337PRJ3"

	offsetRootBlockID = 8
	offsetNextBlockID = 16
)

// Errors returned by Create and Open.
var (
	// ErrNotFound is returned by Open when the path does not exist.
	ErrNotFound = errors.New("blockfile: index file not found")

	// ErrBadMagic is returned by Open when the header's first 8 bytes do
	// not match Magic.
	ErrBadMagic = errors.New("blockfile: invalid index file format")

	// ErrExists is returned by Create when the path already exists and
	// the caller did not request an overwrite.
	ErrExists = errors.New("blockfile: index file already exists")
)

// File owns a single on-disk block file and provides block-granularity
// read/write access plus direct access to the two mutable header fields.
// It does not interpret block contents beyond the header; node encoding is
// the codec package's responsibility.
type File struct {
	f             *os.File
	rootBlockID   uint64
	nextBlockID   uint64
	closeUnlocker func() error
}

// Create creates a new index file at path. If the path already exists,
// Create fails with ErrExists unless overwrite is true, in which case the
// caller has already confirmed the intent to replace it (the engine never
// prompts; see pkg/cli for that concern). The new file's header is written
// with root_block_id = 0 (empty tree) and next_block_id = 1.
func Create(path string, overwrite bool) (*File, error) {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return nil, ErrExists
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("blockfile: stat %s: %w", path, err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("blockfile: create %s: %w", path, err)
	}

	unlock, err := lockExclusive(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockfile: lock %s: %w", path, err)
	}

	bf := &File{f: f, rootBlockID: 0, nextBlockID: 1, closeUnlocker: unlock}
	if err := bf.writeHeaderBlock(); err != nil {
		unlock()
		f.Close()
		return nil, err
	}

	return bf, nil
}

// Open opens an existing index file at path, reading and validating its
// header. It fails with ErrNotFound if the path is absent and ErrBadMagic
// if the header's magic does not match.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("blockfile: open %s: %w", path, err)
	}

	unlock, err := lockExclusive(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("blockfile: lock %s: %w", path, err)
	}

	var header [BlockSize]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		unlock()
		f.Close()
		return nil, fmt.Errorf("blockfile: read header of %s: %w", path, err)
	}

	if string(header[:len(Magic)]) != Magic {
		unlock()
		f.Close()
		return nil, ErrBadMagic
	}

	bf := &File{
		f:             f,
		rootBlockID:   binary.BigEndian.Uint64(header[offsetRootBlockID:]),
		nextBlockID:   binary.BigEndian.Uint64(header[offsetNextBlockID:]),
		closeUnlocker: unlock,
	}
	return bf, nil
}

func (bf *File) writeHeaderBlock() error {
	var header [BlockSize]byte
	copy(header[:], Magic)
	binary.BigEndian.PutUint64(header[offsetRootBlockID:], bf.rootBlockID)
	binary.BigEndian.PutUint64(header[offsetNextBlockID:], bf.nextBlockID)

	if _, err := bf.f.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("blockfile: write header: %w", err)
	}
	return nil
}

// ReadBlock reads the block with the given id. Block 0 is the header block
// and is never returned through this path as a node image by callers above
// this package. Reading past the end of the file is an I/O error.
func (bf *File) ReadBlock(id uint64) ([BlockSize]byte, error) {
	var block [BlockSize]byte
	n, err := bf.f.ReadAt(block[:], int64(id)*BlockSize)
	if err != nil || n != BlockSize {
		if err == nil {
			err = fmt.Errorf("short read of block %d: got %d bytes", id, n)
		}
		return block, fmt.Errorf("blockfile: read block %d: %w", id, err)
	}
	return block, nil
}

// WriteBlock writes data (which must be exactly BlockSize bytes) to the
// block with the given id. Blocks are always written in allocation order by
// callers; the OS extends the file with zeros as needed.
func (bf *File) WriteBlock(id uint64, data []byte) error {
	if len(data) != BlockSize {
		return fmt.Errorf("blockfile: write block %d: expected %d bytes, got %d", id, BlockSize, len(data))
	}
	if _, err := bf.f.WriteAt(data, int64(id)*BlockSize); err != nil {
		return fmt.Errorf("blockfile: write block %d: %w", id, err)
	}
	return nil
}

// RootBlockID returns the current root block id (0 means empty tree).
func (bf *File) RootBlockID() uint64 {
	return bf.rootBlockID
}

// NextBlockID returns the smallest unused block id.
func (bf *File) NextBlockID() uint64 {
	return bf.nextBlockID
}

// SetRootBlockID updates the header's root_block_id field in place,
// without rewriting the rest of the header block.
func (bf *File) SetRootBlockID(id uint64) error {
	bf.rootBlockID = id
	return bf.writeHeaderField(offsetRootBlockID, id)
}

// SetNextBlockID updates the header's next_block_id field in place,
// without rewriting the rest of the header block.
func (bf *File) SetNextBlockID(id uint64) error {
	bf.nextBlockID = id
	return bf.writeHeaderField(offsetNextBlockID, id)
}

// AllocateBlockID returns the next unused block id and persists the
// incremented counter to the header. Root splits need two ids allocated
// before any node is written, so this bumps and persists on every call
// rather than waiting for a subsequent WriteBlock.
func (bf *File) AllocateBlockID() (uint64, error) {
	id := bf.nextBlockID
	if err := bf.SetNextBlockID(id + 1); err != nil {
		return 0, err
	}
	return id, nil
}

func (bf *File) writeHeaderField(offset int, value uint64) error {
	var field [8]byte
	binary.BigEndian.PutUint64(field[:], value)
	if _, err := bf.f.WriteAt(field[:], int64(offset)); err != nil {
		return fmt.Errorf("blockfile: write header field at %d: %w", offset, err)
	}
	return nil
}

// Close releases the underlying file handle and any advisory lock held on
// it. The File must not be used afterward.
func (bf *File) Close() error {
	var unlockErr error
	if bf.closeUnlocker != nil {
		unlockErr = bf.closeUnlocker()
	}
	if err := bf.f.Close(); err != nil {
		return err
	}
	return unlockErr
}
