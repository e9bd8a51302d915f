package io

import (
	"os"
)

// FileIO is an interface for file io operations
type FileIO interface {
	Stat(target string) (os.FileInfo, error)
	ReadDir(name string) ([]os.DirEntry, error)
	MkdirAll(name string, perm os.FileMode) error
	Move(source, target string, overwrite bool) error
	Rename(source, target string) error
	Copy(source, target string) (int64, error)
	Remove(name string) error
	IsSameFileSystem(source, target string) (bool, error)
}
