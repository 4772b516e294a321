package load

import (
	"fmt"

	"github.com/golang/snappy"
)

// CompressBlock сжимает данные блочным форматом snappy
func CompressBlock(data []byte) []byte {
	return snappy.Encode(nil, data)
}

// DecompressBlock распаковывает блок snappy
func DecompressBlock(data []byte) ([]byte, error) {
	decompressed, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки snappy: %w", err)
	}
	return decompressed, nil
}
