package sradownload

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"io"

	"github.com/krolaw/zipstream"
	"github.com/xi2/xz"
)

// ErrUnsupportedCompression is returned for Unix compress (.Z) input, which
// is recognized but cannot be decoded.
var ErrUnsupportedCompression = errors.New("unsupported compression: unix compress (.Z)")

type DataType byte

const (
	DataTypeInvalid DataType = iota
	DataTypeNoCompression
	DataTypeGzip
	DataTypeZip
	DataTypeXZ
	DataTypeZ
	DataTypeBZip2
)

var byteCodeSigs = map[DataType][]byte{
	DataTypeGzip:  {0x1f, 0x8b, 0x08},
	DataTypeZip:   {0x50, 0x4b, 0x03, 0x04},
	DataTypeXZ:    {0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00},
	DataTypeZ:     {0x1f, 0x9d},
	DataTypeBZip2: {0x42, 0x5a, 0x68},
}

// DetectDataType matches the leading bytes of a stream against known
// compression signatures. Byte code signatures from
// https://stackoverflow.com/a/19127748/199475
func DetectDataType(head []byte) DataType {
	for dt, sig := range byteCodeSigs {
		if bytes.HasPrefix(head, sig) {
			return dt
		}
	}

	return DataTypeNoCompression
}

// MaybeDecompressReadCloser wraps rc with a decompressor if its content looks
// compressed. Closing the result closes rc. Unlike a file, rc does not need to
// be seekable: the signature is peeked from a buffer.
func MaybeDecompressReadCloser(rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)

	// Short streams return fewer bytes along with io.EOF, which is fine.
	head, err := br.Peek(6)
	if err != nil && err != io.EOF {
		return nil, err
	}

	var r io.Reader
	switch DetectDataType(head) {
	case DataTypeGzip:
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		r = gz
	case DataTypeZip:
		zr := zipstream.NewReader(br)
		// Only the first member of an archive is read.
		if _, err := zr.Next(); err != nil {
			return nil, err
		}
		r = zr
	case DataTypeBZip2:
		r = bzip2.NewReader(br)
	case DataTypeXZ:
		x, err := xz.NewReader(br, 0)
		if err != nil {
			return nil, err
		}
		r = x
	case DataTypeZ:
		return nil, ErrUnsupportedCompression
	default:
		r = br
	}

	return &readCloser{Reader: r, close: rc.Close}, nil
}

// readCloser "upgrades" a reader by closing the underlying source.
type readCloser struct {
	io.Reader
	close func() error
}

func (c *readCloser) Close() error {
	return c.close()
}
