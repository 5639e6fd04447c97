//go:build unix

package capability

import "golang.org/x/sys/unix"

// checkAccess uses access(2) so that group membership and device ACLs are
// honoured the same way the kernel will honour them when zbar opens the file.
func checkAccess(path string, write bool) error {
	mode := uint32(unix.R_OK)
	if write {
		mode |= unix.W_OK
	}
	return unix.Access(path, mode)
}
