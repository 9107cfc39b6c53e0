// Package model persists trained embeddings in the classic word2vec
// interchange formats.
//
// Both formats start with an ASCII header line "count dim". The text
// format follows with one "word v0 v1 ..." line per entry; the binary
// format follows each word token with dim little-endian float32s.
package model

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"strconv"

	"github.com/DragonCP/buffalo/blobstore"
)

// Embeddings is a trained vocabulary of word vectors.
//
// Vectors is row-major: the vector of Words[i] is
// Vectors[i*Dim : (i+1)*Dim].
type Embeddings struct {
	Words   []string
	Vectors []float32
	Dim     int
}

// ErrShape indicates words/vectors/dim that do not agree.
type ErrShape struct {
	Words   int
	Vectors int
	Dim     int
}

func (e *ErrShape) Error() string {
	return fmt.Sprintf("model: %d vectors of dim %d cannot cover %d words", e.Vectors, e.Dim, e.Words)
}

// Vector returns the row for entry i.
func (e *Embeddings) Vector(i int) []float32 {
	return e.Vectors[i*e.Dim : (i+1)*e.Dim]
}

func (e *Embeddings) validate() error {
	if e.Dim <= 0 || len(e.Vectors) != len(e.Words)*e.Dim {
		return &ErrShape{Words: len(e.Words), Vectors: len(e.Vectors), Dim: e.Dim}
	}
	return nil
}

// SaveBinary writes the embeddings in word2vec binary format.
func (e *Embeddings) SaveBinary(w io.Writer) error {
	if err := e.validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(e.Words), e.Dim); err != nil {
		return err
	}
	for i, word := range e.Words {
		if _, err := fmt.Fprintf(bw, "%s ", word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, e.Vector(i)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveText writes the embeddings in word2vec text format.
func (e *Embeddings) SaveText(w io.Writer) error {
	if err := e.validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(e.Words), e.Dim); err != nil {
		return err
	}
	for i, word := range e.Words {
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		for _, v := range e.Vector(i) {
			if _, err := fmt.Fprintf(bw, " %g", v); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadBinary reads embeddings in word2vec binary format.
func LoadBinary(r io.Reader) (*Embeddings, error) {
	br := bufio.NewReader(r)

	var count, dim int
	if _, err := fmt.Fscanf(br, "%d %d\n", &count, &dim); err != nil {
		return nil, fmt.Errorf("model: bad header: %w", err)
	}
	if count < 0 || dim <= 0 {
		return nil, &ErrShape{Words: count, Dim: dim}
	}

	e := &Embeddings{
		Words:   make([]string, 0, count),
		Vectors: make([]float32, 0, count*dim),
		Dim:     dim,
	}
	vec := make([]float32, dim)
	for i := 0; i < count; i++ {
		word, err := br.ReadString(' ')
		if err != nil {
			return nil, fmt.Errorf("model: entry %d: %w", i, err)
		}
		word = word[:len(word)-1]
		if err := binary.Read(br, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("model: entry %d: %w", i, err)
		}
		if b, err := br.ReadByte(); err == nil && b != '\n' {
			// Some emitters omit the trailing newline separator.
			if err := br.UnreadByte(); err != nil {
				return nil, err
			}
		}
		e.Words = append(e.Words, word)
		e.Vectors = append(e.Vectors, vec...)
	}
	return e, nil
}

// SaveBinaryToStore writes the embeddings as a blob.
func (e *Embeddings) SaveBinaryToStore(ctx context.Context, store blobstore.Store, name string) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := e.SaveBinary(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

// LoadBinaryFromStore reads embeddings from a blob.
func LoadBinaryFromStore(ctx context.Context, store blobstore.Store, name string) (*Embeddings, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	return LoadBinary(blobstore.Reader(blob))
}

// ItemWords labels raw item ids numerically for corpora without a
// string vocabulary: retained raw item r becomes "item-r".
func ItemWords(inverse []int32) []string {
	words := make([]string, len(inverse))
	for dense, raw := range inverse {
		words[dense] = "item-" + strconv.Itoa(int(raw))
	}
	return words
}
