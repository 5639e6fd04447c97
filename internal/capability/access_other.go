//go:build !unix

package capability

import "os"

// checkAccess opens the file, which is the only portable way to learn
// whether it is accessible.
func checkAccess(path string, write bool) error {
	flag := os.O_RDONLY
	if write {
		flag = os.O_RDWR
	}
	f, err := os.OpenFile(path, flag, 0) //nolint:gosec // path is the configured scan target
	if err != nil {
		return err
	}
	return f.Close()
}
