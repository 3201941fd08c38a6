package out

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"mailsort/internal/modules/ingest/domain"
	ingestout "mailsort/internal/modules/ingest/port/out"
)

const (
	compressionNone  = "none"
	compressionGzip  = "gzip"
	compressionBzip2 = "bzip2"
	compressionXZ    = "xz"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte{0x42, 0x5a, 0x68}
	xzMagic    = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}
)

type LocalTextReader struct{}

func NewLocalTextReader() ingestout.TextReader {
	return LocalTextReader{}
}

func (LocalTextReader) ReadText(ctx context.Context, path string) (domain.RawFile, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawFile{}, err
	}
	data, compression, err := readDecompressed(path)
	if err != nil {
		return domain.RawFile{}, err
	}
	return domain.RawFile{Path: path, Text: string(data), Compression: compression}, nil
}

// readDecompressed reads path fully, detecting gzip, bzip2 and xz by magic bytes.
func readDecompressed(path string) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}

	var (
		reader      io.Reader = br
		compression           = compressionNone
	)
	switch {
	case bytes.HasPrefix(header, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, "", fmt.Errorf("open gzip %s: %w", path, err)
		}
		defer gz.Close()
		reader, compression = gz, compressionGzip
	case bytes.HasPrefix(header, bzip2Magic):
		reader, compression = bzip2.NewReader(br), compressionBzip2
	case bytes.HasPrefix(header, xzMagic):
		xr, err := xz.NewReader(br)
		if err != nil {
			return nil, "", fmt.Errorf("open xz %s: %w", path, err)
		}
		reader, compression = xr, compressionXZ
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("decompress %s (%s): %w", path, compression, err)
	}
	return data, compression, nil
}
