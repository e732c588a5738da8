// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Command riegeliwrite is a small demo CLI for the writer stack: it encodes
// a handful of synthetic records into a chunk, pushes the chunk payload
// through a configurable FDWriter -> [LimitingWriter] -> [compressor] stack,
// and (optionally) reads the file back, decodes the chunk, and prints how
// many records it holds.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/mingzhao-db/riegeli/base"
	"github.com/mingzhao-db/riegeli/bytes"
	"github.com/mingzhao-db/riegeli/chunkencoding"
	lz4framed "github.com/mingzhao-db/riegeli/lz4/framed"
	"github.com/mingzhao-db/riegeli/recordio"
	snappyframed "github.com/mingzhao-db/riegeli/snappy/framed"
)

// backend selects the compressor layered on top of the FDWriter, if any.
type backend int

const (
	backendNone backend = iota
	backendSnappy
	backendLZ4
)

var backendNames = map[backend]string{
	backendNone:   "none",
	backendSnappy: "snappy",
	backendLZ4:    "lz4",
}

var backendValues = map[string]backend{
	"none":   backendNone,
	"snappy": backendSnappy,
	"lz4":    backendLZ4,
}

// backendFlag is a pflag.Value implementation that stores a backend.
type backendFlag backend

var _ pflag.Value = (*backendFlag)(nil)

func (f *backendFlag) String() string { return backendNames[backend(*f)] }

func (f *backendFlag) Set(v string) error {
	bv, ok := backendValues[v]
	if !ok {
		return errors.Errorf("unknown backend %q: want one of none, snappy, lz4", v)
	}
	*f = backendFlag(bv)
	return nil
}

func (f *backendFlag) Type() string { return "backend" }

func main() {
	out := pflag.String("out", "records.rio", "Output file path.")
	records := pflag.Int("records", 100, "Number of synthetic records to write.")
	maxBytes := pflag.Int64("max-bytes", 0, "If > 0, cap the file at this many bytes via a LimitingWriter.")
	exact := pflag.Bool("exact", false, "Require the file to reach exactly --max-bytes on close.")
	verify := pflag.Bool("verify", true, "Read the file back and confirm the chunk decodes.")

	be := backendFlag(backendSnappy)
	pflag.Var(&be, "backend", "Compression backend: none, snappy, or lz4.")

	pflag.Parse()

	if err := write(*out, *records, int64(*maxBytes), *exact, backend(be)); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}

	if *verify {
		n, err := verifyFile(*out, backend(be))
		if err != nil {
			log.Fatalf("verify %s: %v", *out, err)
		}
		fmt.Printf("%s: decoded %d records\n", *out, n)
	}
}

func write(path string, numRecords int, maxBytes int64, exact bool, be backend) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}

	var w bytes.Writer = bytes.NewFDWriter(file, bytes.FDWriterOptions{})

	if maxBytes > 0 {
		w = bytes.NewOwningLimitingWriter(w, bytes.LimitingWriterOptions{
			MaxPos: base.Position(maxBytes),
			Exact:  exact,
		})
	}

	switch be {
	case backendSnappy:
		w = snappyframed.NewOwningWriter(w, snappyframed.Options{})
	case backendLZ4:
		w = lz4framed.NewOwningWriter(w, lz4framed.Options{})
	case backendNone:
		// No compressor layer; w writes straight to (the possibly limited) file.
	}

	var enc recordio.Encoder
	for i := 0; i < numRecords; i++ {
		enc.AddBytes([]byte(fmt.Sprintf("record-%d", i)))
	}
	chunk := enc.Chunk()

	if !w.WriteBytes(chunk.Payload) {
		status := w.Status()
		w.Close()
		return errors.Wrap(status, "writing chunk payload")
	}
	if !w.Close() {
		return errors.Wrap(w.Status(), "closing writer stack")
	}
	return nil
}

func verifyFile(path string, be backend) (uint64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "reading %s", path)
	}

	payload := raw
	switch be {
	case backendSnappy:
		if payload, err = snappyframed.Decode(raw); err != nil {
			return 0, errors.Wrap(err, "decoding framed snappy stream")
		}
	case backendLZ4:
		if payload, err = lz4framed.Decode(raw); err != nil {
			return 0, errors.Wrap(err, "decoding framed lz4 stream")
		}
	case backendNone:
		// payload is already raw.
	}

	dec := chunkencoding.NewChunkDecoder(chunkencoding.AllFields())
	if !dec.Reset(chunkencoding.Chunk{Type: chunkencoding.TypeData, Payload: payload}) {
		return 0, errors.Wrap(dec.Status(), "decoding chunk")
	}
	count := dec.NumRecords()
	for i := uint64(0); i < count; i++ {
		if _, ok := dec.ReadBytes(); !ok {
			return 0, errors.Wrap(dec.Status(), "reading record")
		}
	}
	return count, nil
}
