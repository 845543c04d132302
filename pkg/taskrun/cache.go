package taskrun

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/rotisserie/eris"

	"github.com/mcmanager/devtask/pkg/buildinfo"
)

func init() {
	gob.Register(TaskList{})
	gob.Register(Task{})
	gob.Register(TaskCmdScript{})
	gob.Register(TaskCmdTaskRef{})
	gob.Register(TaskCmdUsage{})
}

// cacheKey identifies the script evaluation a cached task list came from.
type cacheKey struct {
	Script  string
	ModTime time.Time
	Options map[string]string
	Version string
}

type cacheEntry struct {
	Tasks       TaskList
	UseDefaults bool
}

func newCacheKey(script string, options map[string]string) (cacheKey, error) {
	info, err := os.Stat(script)
	if err != nil {
		return cacheKey{}, eris.Wrapf(err, "failed to check %s", script)
	}

	if options == nil {
		options = map[string]string{}
	}

	return cacheKey{
		Script:  script,
		ModTime: info.ModTime().UTC(),
		Options: options,
		Version: buildinfo.Version,
	}, nil
}

func (k cacheKey) equal(other cacheKey) bool {
	return k.Script == other.Script && k.ModTime.Equal(other.ModTime) &&
		k.Version == other.Version && reflect.DeepEqual(k.Options, other.Options)
}

// writeCache stores the evaluated task list of a script.
func writeCache(file string, key cacheKey, entry cacheEntry) error {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return eris.Wrapf(err, "failed to create cache directory for %s", file)
	}

	handle, err := os.Create(file)
	if err != nil {
		return err
	}
	defer handle.Close()

	encoder := gob.NewEncoder(handle)
	err = encoder.Encode(key)
	if err != nil {
		return err
	}

	return encoder.Encode(entry)
}

// readCache returns the cached task list if it was produced for key.
func readCache(file string, key cacheKey) (cacheEntry, bool, error) {
	handle, err := os.Open(file)
	if err != nil {
		if eris.Is(err, os.ErrNotExist) {
			return cacheEntry{}, false, nil
		}
		return cacheEntry{}, false, err
	}
	defer handle.Close()

	decoder := gob.NewDecoder(handle)

	var stored cacheKey
	err = decoder.Decode(&stored)
	if err != nil {
		return cacheEntry{}, false, err
	}

	if !stored.equal(key) {
		return cacheEntry{}, false, nil
	}

	var entry cacheEntry
	err = decoder.Decode(&entry)
	if err != nil {
		return cacheEntry{}, false, err
	}

	return entry, true, nil
}
