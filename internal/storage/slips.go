package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// SlipStore принимает загруженный слип оплаты и возвращает стабильную
// строку-ссылку. Ядро хранит только ссылку.
type SlipStore interface {
	Save(name string, r io.Reader) (string, error)
}

// LocalSlipStore складывает слипы на диск под базовым каталогом.
type LocalSlipStore struct {
	dir string
}

func NewLocalSlipStore(dir string) (*LocalSlipStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create slip dir: %w", err)
	}
	return &LocalSlipStore{dir: dir}, nil
}

// Save сохраняет файл под уникальным именем; расширение оригинала
// сохраняется. Возвращаемая ссылка — имя файла относительно каталога.
func (s *LocalSlipStore) Save(name string, r io.Reader) (string, error) {
	ref := fmt.Sprintf("%s-%s%s",
		time.Now().UTC().Format("20060102"),
		uuid.NewString(),
		filepath.Ext(name),
	)

	f, err := os.Create(filepath.Join(s.dir, ref))
	if err != nil {
		return "", fmt.Errorf("create slip file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write slip file: %w", err)
	}
	return ref, nil
}
