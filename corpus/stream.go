package corpus

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/DragonCP/buffalo/blobstore"
	"github.com/DragonCP/buffalo/resource"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Stream blob layout, little-endian:
//
//	magic   [4]byte "BW2V"
//	version uint32
//	items   uint32
//	rows    uint32
//	nnz     uint64
//	rows *  { count uint32, ids [count]uint32 }
//
// Blobs named *.zst or *.lz4 are compressed with the matching codec.
var streamMagic = [4]byte{'B', 'W', '2', 'V'}

const streamVersion = 1

// ErrBadStream indicates a corrupt or unsupported stream blob.
var ErrBadStream = errors.New("corpus: bad stream blob")

// StreamOptions configure a StreamSource.
type StreamOptions struct {
	// BatchSize is the number of rows per batch. Defaults to DefaultBatchSize.
	BatchSize int

	// Controller, if set, rate-limits blob reads.
	Controller *resource.Controller
}

// StreamSource reads a binary row stream from a blobstore blob.
type StreamSource struct {
	store blobstore.Store
	name  string
	opts  StreamOptions

	hdr  Header
	blob blobstore.Blob
	r    *bufio.Reader
	zr   *zstd.Decoder // non-nil while reading a .zst blob
	row  int
}

// Compile-time interface check
var _ BatchSource = (*StreamSource)(nil)

// OpenStream opens the named stream blob and parses its header.
func OpenStream(ctx context.Context, store blobstore.Store, name string, optFns ...func(*StreamOptions)) (*StreamSource, error) {
	opts := StreamOptions{BatchSize: DefaultBatchSize}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	s := &StreamSource{store: store, name: name, opts: opts}
	if err := s.open(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// WithBatchSize sets the number of rows per batch.
func WithBatchSize(n int) func(*StreamOptions) {
	return func(o *StreamOptions) {
		o.BatchSize = n
	}
}

// WithController sets the resource controller used to limit blob reads.
func WithController(c *resource.Controller) func(*StreamOptions) {
	return func(o *StreamOptions) {
		o.Controller = c
	}
}

func (s *StreamSource) open(ctx context.Context) error {
	blob, err := s.store.Open(ctx, s.name)
	if err != nil {
		return err
	}
	s.blob = blob

	var r io.Reader = blobstore.Reader(blob)
	if s.opts.Controller != nil {
		r = resource.NewRateLimitedReader(ctx, r, s.opts.Controller)
	}

	switch {
	case strings.HasSuffix(s.name, ".zst"):
		zr, err := zstd.NewReader(r)
		if err != nil {
			blob.Close()
			return fmt.Errorf("%w: %v", ErrBadStream, err)
		}
		s.zr = zr
		r = zr
	case strings.HasSuffix(s.name, ".lz4"):
		r = lz4.NewReader(r)
	}

	s.r = bufio.NewReaderSize(r, 1<<16)
	s.row = 0
	return s.readHeader()
}

func (s *StreamSource) readHeader() error {
	var magic [4]byte
	if _, err := io.ReadFull(s.r, magic[:]); err != nil {
		return fmt.Errorf("%w: short header: %v", ErrBadStream, err)
	}
	if magic != streamMagic {
		return fmt.Errorf("%w: bad magic %q", ErrBadStream, magic[:])
	}

	var version, items, rows uint32
	var nnz uint64
	for _, v := range []any{&version, &items, &rows, &nnz} {
		if err := binary.Read(s.r, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: short header: %v", ErrBadStream, err)
		}
	}
	if version != streamVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrBadStream, version)
	}

	s.hdr = Header{Items: int(items), Rows: int(rows), NNZ: int64(nnz)}
	return nil
}

// Header returns the corpus header.
func (s *StreamSource) Header() Header {
	return s.hdr
}

// Next fetches the next batch of rows.
func (s *StreamSource) Next(_ context.Context) (*Batch, error) {
	if s.row >= s.hdr.Rows {
		return nil, io.EOF
	}

	start := s.row
	end := start + s.opts.BatchSize
	if end > s.hdr.Rows {
		end = s.hdr.Rows
	}

	batch := &Batch{
		StartRow: start,
		NextRow:  end,
		Indptr:   make([]int64, 1, end-start+1),
	}
	for ; s.row < end; s.row++ {
		var count uint32
		if err := binary.Read(s.r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("%w: truncated at row %d: %v", ErrBadStream, s.row, err)
		}
		ids := make([]uint32, count)
		if err := binary.Read(s.r, binary.LittleEndian, ids); err != nil {
			return nil, fmt.Errorf("%w: truncated at row %d: %v", ErrBadStream, s.row, err)
		}
		for _, id := range ids {
			if int(id) >= s.hdr.Items {
				return nil, &ErrItemOutOfRange{ID: int32(id), Items: s.hdr.Items, Row: s.row}
			}
			batch.IDs = append(batch.IDs, int32(id))
		}
		batch.Indptr = append(batch.Indptr, int64(len(batch.IDs)))
	}
	return batch, nil
}

// Reset reopens the blob and restarts from the first row.
func (s *StreamSource) Reset(ctx context.Context) error {
	if err := s.Close(); err != nil {
		return err
	}
	return s.open(ctx)
}

// Close releases the underlying blob.
func (s *StreamSource) Close() error {
	if s.zr != nil {
		s.zr.Close()
		s.zr = nil
	}
	if s.blob != nil {
		err := s.blob.Close()
		s.blob = nil
		return err
	}
	return nil
}

// WriteStream writes rows as a stream blob. Compression is chosen by
// the blob name suffix (.zst, .lz4, otherwise raw).
func WriteStream(ctx context.Context, store blobstore.Store, name string, items int, rows [][]int32) error {
	blob, err := store.Create(ctx, name)
	if err != nil {
		return err
	}

	var w io.Writer = blob
	var finish func() error
	switch {
	case strings.HasSuffix(name, ".zst"):
		zw, err := zstd.NewWriter(blob)
		if err != nil {
			blob.Close()
			return err
		}
		w, finish = zw, zw.Close
	case strings.HasSuffix(name, ".lz4"):
		lw := lz4.NewWriter(blob)
		w, finish = lw, lw.Close
	}

	bw := bufio.NewWriterSize(w, 1<<16)
	if err := writeStreamTo(bw, items, rows); err != nil {
		blob.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		blob.Close()
		return err
	}
	if finish != nil {
		if err := finish(); err != nil {
			blob.Close()
			return err
		}
	}
	return blob.Close()
}

func writeStreamTo(w io.Writer, items int, rows [][]int32) error {
	var nnz uint64
	for _, row := range rows {
		nnz += uint64(len(row))
	}

	if _, err := w.Write(streamMagic[:]); err != nil {
		return err
	}
	for _, v := range []any{uint32(streamVersion), uint32(items), uint32(len(rows)), nnz} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	for _, row := range rows {
		if err := binary.Write(w, binary.LittleEndian, uint32(len(row))); err != nil {
			return err
		}
		ids := make([]uint32, len(row))
		for i, id := range row {
			ids[i] = uint32(id)
		}
		if err := binary.Write(w, binary.LittleEndian, ids); err != nil {
			return err
		}
	}
	return nil
}
