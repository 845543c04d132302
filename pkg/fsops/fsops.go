// Package fsops contains cross-platform implementations of the POSIX rm, mv and mkdir
// commands. Task commands use them instead of the system binaries so cleanup steps
// behave the same on Windows.
package fsops

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// Remove deletes every item. Directories need recursive. With force, missing items
// are ignored.
func Remove(items []string, recursive, force bool) error {
	for _, item := range items {
		info, err := os.Lstat(item)
		if err != nil {
			if force && eris.Is(err, os.ErrNotExist) {
				continue
			}
			return eris.Wrapf(err, "could not stat %s", item)
		}

		if info.IsDir() && !recursive {
			return eris.Errorf("%s is a directory but -r wasn't passed", item)
		}
	}

	for _, item := range items {
		err := os.RemoveAll(item)
		if err != nil && (!force || !eris.Is(err, os.ErrNotExist)) {
			return eris.Wrapf(err, "could not delete %s", item)
		}
	}

	return nil
}

// Move moves items into dest. With more than one item, dest has to be a directory.
func Move(items []string, dest string) error {
	if len(items) == 0 {
		return eris.New("not enough parameters")
	}

	dest = filepath.Clean(dest)
	destParent := filepath.Dir(dest)
	info, err := os.Stat(destParent)
	if err != nil {
		return eris.Wrapf(err, "could not find destination directory %s", destParent)
	}

	if !info.IsDir() {
		return eris.Errorf("%s is not a directory", destParent)
	}

	destIsDir := false
	info, err = os.Stat(dest)
	if err != nil && !eris.Is(err, os.ErrNotExist) {
		return eris.Wrapf(err, "failed to retrieve info about destination %s", dest)
	}
	if err == nil {
		destIsDir = info.IsDir()
	}

	if len(items) > 1 && !destIsDir {
		return eris.Errorf("can't move multiple items to %s because it is not a directory", dest)
	}

	for _, item := range items {
		itemDest := dest
		if destIsDir {
			itemDest = filepath.Join(dest, filepath.Base(item))
		}

		if err := os.Rename(item, itemDest); err != nil {
			return eris.Wrapf(err, "failed to move %s to %s", item, itemDest)
		}
	}

	return nil
}

// Mkdir creates every directory in items. With parents, missing parents are created
// and existing directories are not an error.
func Mkdir(items []string, parents bool) error {
	for _, item := range items {
		var err error
		if parents {
			err = os.MkdirAll(item, 0o770)
		} else {
			err = os.Mkdir(item, 0o770)
		}

		if err != nil {
			return eris.Wrapf(err, "failed to create %s", item)
		}
	}

	return nil
}
