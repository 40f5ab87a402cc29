package archive

import (
	"bytes"
	"fmt"
	"os"
	"syscall"
)

// MappedArchive is a read-only memory mapping of an archive file. Loaded is
// reconstructed directly from the mapped bytes, so the kernel page cache
// backs every block read instead of a copy through Go's file I/O path;
// Close must be called to unmap and release the file descriptor.
type MappedArchive struct {
	file *os.File
	data []byte
}

// Mmap opens path read-only, maps it into memory, and reconstructs its
// contents the same way Load does, decoding each block directly out of the
// mapped pages instead of through a read() syscall. The returned Loaded
// holds independently allocated copies of every array, so it remains valid
// after Close; only the mapping itself (and the page-cache borrowing that
// made decoding it cheap) is released.
func Mmap(path string) (*MappedArchive, *Loaded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("Mmap: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("Mmap: %w", err)
	}
	size := stat.Size()
	if size == 0 {
		f.Close()
		return nil, nil, fmt.Errorf("Mmap: cannot map empty file")
	}

	data, err := syscall.Mmap(int(f.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("Mmap: %w", err)
	}

	m := &MappedArchive{file: f, data: data}
	loaded, err := loadFrom(bytes.NewReader(data))
	if err != nil {
		m.Close()
		return nil, nil, err
	}
	return m, loaded, nil
}

// Close unmaps the file and closes its descriptor.
func (m *MappedArchive) Close() error {
	var err error
	if m.data != nil {
		if e := syscall.Munmap(m.data); e != nil {
			err = fmt.Errorf("Mmap.Close: %w", e)
		}
		m.data = nil
	}
	if m.file != nil {
		if e := m.file.Close(); e != nil && err == nil {
			err = fmt.Errorf("Mmap.Close: %w", e)
		}
		m.file = nil
	}
	return err
}
