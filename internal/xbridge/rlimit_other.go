//go:build !linux

package xbridge

// rlimitNoFile is unused on non-Linux builds: internal/procsup.setChildRlimit
// already errors out there, so ServerConfig.MaxOpenFiles is silently
// ineffective rather than failing the whole launch.
const rlimitNoFile = 0
