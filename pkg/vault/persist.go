// pkg/vault/persist.go

package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/serentry/dbvault/pkg/dberr"
)

const filePerm = 0o600

// load reads and parses the vault file. A missing file and a malformed
// one are distinct errors so the CLI can offer first-run creation only
// for the former.
func load(path string) (file, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return file{}, fmt.Errorf("%w: %s", dberr.ErrVaultNotFound, path)
		}
		return file{}, cerr.Wrapf(err, "reading vault file %s", path)
	}

	var data file
	if err := json.Unmarshal(raw, &data); err != nil {
		return file{}, cerr.Mark(cerr.Wrapf(err, "parsing vault file %s", path), dberr.ErrSerializationFailed)
	}
	if data.Databases == nil {
		data.Databases = make(map[string]Record)
	}
	return data, nil
}

// persist serializes the whole vault and replaces the file atomically:
// write to a uniquely named temp file in the same directory, fsync, then
// rename over the target. A crash mid-write never leaves a truncated
// vault behind.
func (v *Vault) persist() error {
	raw, err := json.MarshalIndent(v.data, "", "  ")
	if err != nil {
		return cerr.Mark(cerr.Wrap(err, "serializing vault"), dberr.ErrSerializationFailed)
	}

	dir := filepath.Dir(v.path)
	tmp := filepath.Join(dir, fmt.Sprintf(".vault-%s.tmp", uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if err != nil {
		return cerr.Wrapf(err, "creating temp vault file in %s", dir)
	}

	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return cerr.Wrap(err, "writing temp vault file")
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return cerr.Wrap(err, "syncing temp vault file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return cerr.Wrap(err, "closing temp vault file")
	}

	if err := os.Rename(tmp, v.path); err != nil {
		_ = os.Remove(tmp)
		return cerr.Wrapf(err, "replacing vault file %s", v.path)
	}
	return nil
}
